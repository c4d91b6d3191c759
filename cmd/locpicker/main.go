package main

import (
	"os"

	"github.com/couchcryptid/location-picker/cmd/locpicker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package commands defines the locpicker CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - serve      Run the web picker, JSON proxy, health and metrics endpoints
//   - browse     Run the interactive terminal picker
//   - snapshot   Write the states (and optionally cities) of a country as JSON
//
// All commands read their settings from the environment; CSC_API_KEY is
// required.
package commands

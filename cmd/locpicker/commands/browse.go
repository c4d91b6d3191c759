package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/location-picker/internal/observability"
	"github.com/couchcryptid/location-picker/internal/tui"
)

func browseCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Run the interactive terminal picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			logger := observability.NewLoggerTo(w, cfg)
			metrics := observability.NewMetrics()

			dir := newDirectory(metrics, logger)
			sink, closeSink := newSink(metrics, logger)
			defer closeSink()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			model := tui.New(ctx, dir, sink, logger, metrics)
			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}

			if m, ok := final.(tui.Model); ok {
				if sel := m.Selection(); sel.Complete() {
					fmt.Printf("%s %s %d\n", sel.Country, sel.State, sel.CityID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file (default: discard)")
	return cmd
}

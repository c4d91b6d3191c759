package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/location-picker/internal/cascade"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

type snapshotDoc struct {
	Country     domain.Country `json:"country"`
	States      []stateDoc     `json:"states"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type stateDoc struct {
	domain.State
	Cities []domain.City `json:"cities,omitempty"`
}

func snapshotCmd() *cobra.Command {
	var country, state, out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the states (and optionally cities) of a country as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.NewLoggerTo(os.Stderr, cfg)
			metrics := observability.NewMetrics()
			dir := newDirectory(metrics, logger)

			doc, err := buildSnapshot(cmd.Context(), dir, country, state, logger, metrics)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			logger.Info("snapshot written", "country", doc.Country.Code, "states", len(doc.States))
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO2 country code (required)")
	cmd.Flags().StringVar(&state, "state", "", "ISO2 state code; includes that state's cities")
	cmd.Flags().StringVar(&out, "out", "", "output path (default: stdout)")
	_ = cmd.MarkFlagRequired("country")
	return cmd
}

// buildSnapshot walks the cascade the way a user would, so unknown codes are
// rejected against the fetched lists.
func buildSnapshot(ctx context.Context, dir domain.Directory, country, state string, logger *slog.Logger, metrics *observability.Metrics) (snapshotDoc, error) {
	sel := cascade.NewSelector(dir, nil, "", logger, metrics)
	defer sel.Wait()

	sel.Initialize(ctx)
	snap, err := settle(ctx, sel, cascade.Countries)
	if err != nil {
		return snapshotDoc{}, err
	}

	if _, ok := domain.FindCountry(snap.Countries, country); !ok {
		return snapshotDoc{}, fmt.Errorf("unknown country %q", country)
	}
	sel.SelectCountry(ctx, country)
	if snap, err = settle(ctx, sel, cascade.States); err != nil {
		return snapshotDoc{}, err
	}

	c, _ := snap.SelectedCountry()
	doc := snapshotDoc{Country: c, GeneratedAt: time.Now().UTC()}

	if state == "" {
		doc.States = make([]stateDoc, 0, len(snap.States))
		for _, st := range snap.States {
			doc.States = append(doc.States, stateDoc{State: st})
		}
		return doc, nil
	}

	if _, ok := domain.FindState(snap.States, state); !ok {
		return snapshotDoc{}, fmt.Errorf("unknown state %q in %s", state, country)
	}
	if err := sel.SelectState(ctx, state); err != nil {
		return snapshotDoc{}, err
	}
	if snap, err = settle(ctx, sel, cascade.Cities); err != nil {
		return snapshotDoc{}, err
	}

	st, _ := snap.SelectedState()
	doc.States = []stateDoc{{State: st, Cities: snap.Cities}}
	return doc, nil
}

// settle waits on the selector's updates until l stops loading. A failed
// list is an error; the cause has already been logged.
func settle(ctx context.Context, sel *cascade.Selector, l cascade.List) (cascade.Snapshot, error) {
	for {
		snap := sel.Snapshot()
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		if !snap.Loading(l) {
			if snap.Status(l) == cascade.StatusFailed {
				return snap, fmt.Errorf("fetch %s failed", l)
			}
			return snap, nil
		}
		select {
		case <-sel.Updates():
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Selection sources.
const (
	SourceWeb = "web"
	SourceTUI = "tui"
)

// Selection is the user's current choice at each level. Empty codes are
// unset; CityID is meaningful only when HasCity is true.
type Selection struct {
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	CityID  int    `json:"city_id"`
	HasCity bool   `json:"has_city"`
}

// Complete reports whether every level has been chosen.
func (s Selection) Complete() bool {
	return s.Country != "" && s.State != "" && s.HasCity
}

// SelectionEvent records a completed country/state/city selection.
type SelectionEvent struct {
	ID          string    `json:"id"`
	Country     string    `json:"country"`
	CountryName string    `json:"country_name,omitempty"`
	State       string    `json:"state"`
	StateName   string    `json:"state_name,omitempty"`
	CityID      int       `json:"city_id"`
	CityName    string    `json:"city_name"`
	Source      string    `json:"source"`
	SelectedAt  time.Time `json:"selected_at"`
}

// NewSelectionEvent stamps a completed selection with a fresh ID and the
// current time.
func NewSelectionEvent(country Country, state State, city City, source string) SelectionEvent {
	return SelectionEvent{
		ID:          uuid.NewString(),
		Country:     country.Code,
		CountryName: country.Name,
		State:       state.Code,
		StateName:   state.Name,
		CityID:      city.ID,
		CityName:    city.Name,
		Source:      source,
		SelectedAt:  clock.Now().UTC(),
	}
}

// SelectionSink receives completed selections.
type SelectionSink interface {
	Publish(ctx context.Context, event SelectionEvent) error
}

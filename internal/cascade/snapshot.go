package cascade

import "github.com/couchcryptid/location-picker/internal/domain"

// Snapshot is an immutable view of a State.
type Snapshot struct {
	Countries []domain.Country
	States    []domain.State
	Cities    []domain.City
	Selection domain.Selection
	status    [3]Status
}

// Status returns the lifecycle position of l.
func (s Snapshot) Status(l List) Status { return s.status[l] }

// Loading reports whether a fetch for l is in flight.
func (s Snapshot) Loading(l List) bool { return s.status[l] == StatusLoading }

// Enabled reports whether the control for l should accept input: its parent
// is chosen and it is not loading.
func (s Snapshot) Enabled(l List) bool {
	if s.Loading(l) {
		return false
	}
	switch l {
	case States:
		return s.Selection.Country != ""
	case Cities:
		return s.Selection.State != ""
	default:
		return true
	}
}

// Len returns the number of options in l.
func (s Snapshot) Len(l List) int {
	switch l {
	case Countries:
		return len(s.Countries)
	case States:
		return len(s.States)
	case Cities:
		return len(s.Cities)
	default:
		return 0
	}
}

// Placeholder is the text shown in an unselected control.
func (s Snapshot) Placeholder(l List) string {
	if s.Loading(l) {
		switch l {
		case Countries:
			return "Loading countries..."
		case States:
			return "Loading states..."
		default:
			return "Loading cities..."
		}
	}
	switch l {
	case Countries:
		return "-- Choose a Country --"
	case States:
		return "-- Choose a State --"
	default:
		return "-- Choose a City --"
	}
}

// SelectedCountry returns the chosen country if it is in the list.
func (s Snapshot) SelectedCountry() (domain.Country, bool) {
	if s.Selection.Country == "" {
		return domain.Country{}, false
	}
	return domain.FindCountry(s.Countries, s.Selection.Country)
}

// SelectedState returns the chosen state if it is in the list.
func (s Snapshot) SelectedState() (domain.State, bool) {
	if s.Selection.State == "" {
		return domain.State{}, false
	}
	return domain.FindState(s.States, s.Selection.State)
}

// SelectedCity returns the chosen city if it is in the list.
func (s Snapshot) SelectedCity() (domain.City, bool) {
	if !s.Selection.HasCity {
		return domain.City{}, false
	}
	return domain.FindCity(s.Cities, s.Selection.CityID)
}

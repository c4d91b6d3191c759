package domain

import "context"

// Country is a top-level entry keyed by its ISO2 code.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// State is a subdivision of a country. Code is unique only within its country.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// City belongs to a state. ID is unique only within its state.
type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Directory looks up the country → state → city hierarchy.
type Directory interface {
	ListCountries(ctx context.Context) ([]Country, error)
	ListStates(ctx context.Context, country string) ([]State, error)
	ListCities(ctx context.Context, country, state string) ([]City, error)
}

// FindCountry returns the country with the given code.
func FindCountry(countries []Country, code string) (Country, bool) {
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// FindState returns the state with the given code.
func FindState(states []State, code string) (State, bool) {
	for _, s := range states {
		if s.Code == code {
			return s, true
		}
	}
	return State{}, false
}

// FindCity returns the city with the given id.
func FindCity(cities []City, id int) (City, bool) {
	for _, c := range cities {
		if c.ID == id {
			return c, true
		}
	}
	return City{}, false
}

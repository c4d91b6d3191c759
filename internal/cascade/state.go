package cascade

import (
	"context"
	"errors"

	"github.com/couchcryptid/location-picker/internal/domain"
)

// List identifies one of the three option lists.
type List int

const (
	Countries List = iota
	States
	Cities
)

func (l List) String() string {
	switch l {
	case Countries:
		return "countries"
	case States:
		return "states"
	case Cities:
		return "cities"
	default:
		return "unknown"
	}
}

// Status is the lifecycle position of a single list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPopulated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPopulated:
		return "populated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNoCountry   = errors.New("no country selected")
	ErrNoState     = errors.New("no state selected")
	ErrUnknownCity = errors.New("city is not in the current list")
)

// Request describes one fetch. Country and State are the parent keys the
// fetch is scoped to.
type Request struct {
	List    List
	Token   uint64
	Country string
	State   string
}

// Result is the outcome of a Request. Exactly one of the list fields is
// meaningful, matching Request.List.
type Result struct {
	Request   Request
	Countries []domain.Country
	States    []domain.State
	Cities    []domain.City
	Err       error
}

// Fetch runs req against dir. Errors are carried in the Result.
func Fetch(ctx context.Context, dir domain.Directory, req Request) Result {
	res := Result{Request: req}
	switch req.List {
	case Countries:
		res.Countries, res.Err = dir.ListCountries(ctx)
	case States:
		res.States, res.Err = dir.ListStates(ctx, req.Country)
	case Cities:
		res.Cities, res.Err = dir.ListCities(ctx, req.Country, req.State)
	default:
		res.Err = errors.New("unknown list")
	}
	return res
}

// State holds the three lists, the current selection, and per-list status.
// The zero value is ready to use. State is not safe for concurrent use.
type State struct {
	countries []domain.Country
	states    []domain.State
	cities    []domain.City
	selection domain.Selection
	status    [3]Status
	tokens    [3]uint64
}

// Initialize resets everything and starts loading the country list.
func (s *State) Initialize() Request {
	s.selection = domain.Selection{}
	s.reset(States)
	s.reset(Cities)
	s.countries = nil
	return s.begin(Countries, Request{})
}

// SelectCountry records code, clears states and cities, and starts loading
// the states of code.
func (s *State) SelectCountry(code string) Request {
	s.selection = domain.Selection{Country: code}
	s.reset(Cities)
	s.states = nil
	return s.begin(States, Request{Country: code})
}

// SelectState records code under the remembered country, clears cities, and
// starts loading the cities of country+code.
func (s *State) SelectState(code string) (Request, error) {
	if s.selection.Country == "" {
		return Request{}, ErrNoCountry
	}
	s.selection.State = code
	s.selection.CityID = 0
	s.selection.HasCity = false
	s.cities = nil
	return s.begin(Cities, Request{Country: s.selection.Country, State: code}), nil
}

// SelectCity records id. It triggers no fetch.
func (s *State) SelectCity(id int) (domain.City, error) {
	if s.selection.State == "" {
		return domain.City{}, ErrNoState
	}
	city, ok := domain.FindCity(s.cities, id)
	if !ok {
		return domain.City{}, ErrUnknownCity
	}
	s.selection.CityID = id
	s.selection.HasCity = true
	return city, nil
}

// Complete applies res if it answers the latest request for its list and
// reports whether it did. A failed result leaves the list empty. Either way
// the list stops loading.
func (s *State) Complete(res Result) bool {
	l := res.Request.List
	if l < Countries || l > Cities || res.Request.Token != s.tokens[l] || s.status[l] != StatusLoading {
		return false
	}

	if res.Err != nil {
		s.setList(l, Result{})
		s.status[l] = StatusFailed
		return true
	}
	s.setList(l, res)
	s.status[l] = StatusPopulated
	return true
}

// Selection returns the current selection.
func (s *State) Selection() domain.Selection { return s.selection }

// SelectionEvent builds an event for the current selection. It reports false
// until a city has been chosen.
func (s *State) SelectionEvent(source string) (domain.SelectionEvent, bool) {
	if !s.selection.Complete() {
		return domain.SelectionEvent{}, false
	}
	country, _ := domain.FindCountry(s.countries, s.selection.Country)
	if country.Code == "" {
		country.Code = s.selection.Country
	}
	state, _ := domain.FindState(s.states, s.selection.State)
	if state.Code == "" {
		state.Code = s.selection.State
	}
	city, _ := domain.FindCity(s.cities, s.selection.CityID)
	return domain.NewSelectionEvent(country, state, city, source), true
}

// Snapshot returns a read-only view for rendering. List slices are shared
// with the State and must not be modified.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Countries: s.countries,
		States:    s.states,
		Cities:    s.cities,
		Selection: s.selection,
		status:    s.status,
	}
}

func (s *State) begin(l List, req Request) Request {
	s.tokens[l]++
	s.status[l] = StatusLoading
	req.List = l
	req.Token = s.tokens[l]
	return req
}

// reset empties l and invalidates any fetch in flight for it.
func (s *State) reset(l List) {
	s.tokens[l]++
	s.status[l] = StatusIdle
	s.setList(l, Result{})
}

func (s *State) setList(l List, res Result) {
	switch l {
	case Countries:
		s.countries = res.Countries
	case States:
		s.states = res.States
	case Cities:
		s.cities = res.Cities
	}
}

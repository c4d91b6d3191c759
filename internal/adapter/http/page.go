package http

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/location-picker/internal/cascade"
	"github.com/couchcryptid/location-picker/internal/domain"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type option struct {
	Value    string
	Label    string
	Selected bool
}

type selectView struct {
	Name        string
	Label       string
	Placeholder string
	Disabled    bool
	Failed      bool
	Chosen      bool
	Options     []option
}

type pageView struct {
	Selects []selectView
	Summary string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	st := s.resolve(r.Context(), r.URL.Query())
	snap := st.Snapshot()

	if r.URL.Query().Get("changed") == "city" {
		if event, ok := st.SelectionEvent(domain.SourceWeb); ok {
			s.publishAsync(r.Context(), event)
		}
	}

	s.metrics.PageRenders.Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, buildPageView(snap)); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// resolve replays the query parameters through the cascade. Each parameter
// must be a member of the list fetched for its parent; one that is not is
// dropped along with everything below it.
func (s *Server) resolve(ctx context.Context, q url.Values) *cascade.State {
	var st cascade.State
	s.apply(ctx, &st, st.Initialize())

	country := q.Get("country")
	if _, ok := domain.FindCountry(st.Snapshot().Countries, country); !ok {
		return &st
	}
	s.apply(ctx, &st, st.SelectCountry(country))

	state := q.Get("state")
	if _, ok := domain.FindState(st.Snapshot().States, state); !ok {
		return &st
	}
	req, err := st.SelectState(state)
	if err != nil {
		return &st
	}
	s.apply(ctx, &st, req)

	if id, err := strconv.Atoi(q.Get("city")); err == nil {
		if _, err := st.SelectCity(id); err != nil {
			s.logger.Debug("dropping city parameter", "city", id, "error", err)
		}
	}
	return &st
}

func (s *Server) apply(ctx context.Context, st *cascade.State, req cascade.Request) {
	res := cascade.Fetch(ctx, s.dir, req)
	cascade.Report(s.logger, s.metrics, res, st.Complete(res))
}

func buildPageView(snap cascade.Snapshot) pageView {
	countries := make([]option, len(snap.Countries))
	for i, c := range snap.Countries {
		countries[i] = option{Value: c.Code, Label: c.Name, Selected: c.Code == snap.Selection.Country}
	}
	states := make([]option, len(snap.States))
	for i, st := range snap.States {
		states[i] = option{Value: st.Code, Label: st.Name, Selected: st.Code == snap.Selection.State}
	}
	cities := make([]option, len(snap.Cities))
	for i, c := range snap.Cities {
		cities[i] = option{Value: strconv.Itoa(c.ID), Label: c.Name, Selected: snap.Selection.HasCity && c.ID == snap.Selection.CityID}
	}

	view := pageView{
		Selects: []selectView{
			newSelectView(snap, cascade.Countries, "country", "Select Country", countries),
			newSelectView(snap, cascade.States, "state", "Select State", states),
			newSelectView(snap, cascade.Cities, "city", "Select City", cities),
		},
	}

	if city, ok := snap.SelectedCity(); ok {
		state, _ := snap.SelectedState()
		country, _ := snap.SelectedCountry()
		view.Summary = city.Name + ", " + state.Name + ", " + country.Name
	}
	return view
}

func newSelectView(snap cascade.Snapshot, l cascade.List, name, label string, opts []option) selectView {
	chosen := false
	for _, o := range opts {
		chosen = chosen || o.Selected
	}
	return selectView{
		Chosen:      chosen,
		Name:        name,
		Label:       label,
		Placeholder: snap.Placeholder(l),
		Disabled:    !snap.Enabled(l),
		Failed:      snap.Status(l) == cascade.StatusFailed,
		Options:     opts,
	}
}

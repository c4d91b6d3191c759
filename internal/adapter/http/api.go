package http

import (
	"net/http"
)

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.dir.ListCountries(r.Context())
	if err != nil {
		s.upstreamError(w, "countries", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(countries))
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	country := r.PathValue("country")
	states, err := s.dir.ListStates(r.Context(), country)
	if err != nil {
		s.upstreamError(w, "states", err, "country", country)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(states))
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	country, state := r.PathValue("country"), r.PathValue("state")
	cities, err := s.dir.ListCities(r.Context(), country, state)
	if err != nil {
		s.upstreamError(w, "cities", err, "country", country, "state", state)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cities))
}

func (s *Server) upstreamError(w http.ResponseWriter, list string, err error, attrs ...any) {
	s.logger.Warn("fetch "+list+" failed", append(attrs, "error", err)...)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "fetch " + list + " failed"})
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

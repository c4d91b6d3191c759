// Package domain models the geographic hierarchy served by the
// countrystatecity.in lookup API and the selections users make over it.
//
// # Data Source
//
// Countries, states, and cities come from https://api.countrystatecity.in/v1.
// Every request carries the account key in the X-CSCAPI-KEY header. The three
// endpoints are strictly hierarchical:
//
//	GET /countries                                     → [{iso2, name, ...}]
//	GET /countries/{country}/states                    → [{iso2, name, ...}]
//	GET /countries/{country}/states/{state}/cities     → [{id, name, ...}]
//
// Only the key and the display name are consumed. Everything else in the
// payload (phone codes, currencies, coordinates) is ignored.
//
// # Keys
//
// Countries are keyed by their ISO 3166-1 alpha-2 code ("US"). States are keyed
// by the API's iso2 field, which is only unique within the parent country
// ("CA" is California under US and also a province code elsewhere). Cities are
// keyed by a numeric id that is unique within the parent state.
//
// # Ordering
//
// Lists are kept in the order the API returns them. The API sorts by name,
// but nothing here depends on that.
//
// # Selections
//
// A [Selection] is complete once a city has been chosen. Completed selections
// are emitted as [SelectionEvent] values to a [SelectionSink], when one is
// configured. Event IDs are random UUIDs and timestamps come from the package
// clock so tests can freeze time via [SetClock].
package domain

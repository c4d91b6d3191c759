// Package cascade implements the country → state → city cascading selector.
//
// Each of the three option lists moves through
//
//	idle → loading → populated
//	idle → loading → failed (empty)
//
// and is reset to idle whenever its parent selection changes. Choosing a
// country clears the states and cities. Choosing a state clears the cities.
//
// # Request tokens
//
// Every fetch is started from a [Request] that carries the list's current
// token. Tokens increase monotonically per list and are bumped both when a new
// fetch starts and when the list is cleared by a parent change. [State.Complete]
// applies a [Result] only when its token is still the latest, so a slow
// response for a previously selected parent can never overwrite the list the
// user is looking at.
//
// # Drivers
//
// [State] is a plain single-threaded state machine. Front ends with their own
// event loop (the terminal picker, the per-request web renderer) drive it
// directly and run [Fetch] however they like. [Selector] wraps a State for
// callers that want fetches to run on background goroutines; it serializes
// access with a mutex and publishes snapshots on a channel.
package cascade

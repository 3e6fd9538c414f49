// Package store holds the client-side state: normalized entity caches keyed
// by id, the session (token plus current user), and presentation state.
// Stores call the api package, commit results under a mutex, and expose
// read accessors for the CLI. A cancelled request never surfaces as a
// failure; the affected cache simply returns to idle.
package store

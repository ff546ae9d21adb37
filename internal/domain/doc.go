// Package domain contains the vocabulary entities shared by the store, the
// drill engine and the API: word entries, session state, tier progress and
// seed records.
package domain

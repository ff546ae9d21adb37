// Package store defines interfaces for data persistence operations.
// These interfaces keep the drill engine independent of the database
// that holds word entries and session fields. Implementations live under
// internal/platform.
package store

// Package config loads and validates the server, database and engine
// settings from an optional config.yaml, a local .env file and DRILL_
// environment variables.
package config

// Package postgres connects the word store to PostgreSQL through the pgx
// database/sql driver and maps PostgreSQL errors onto store errors.
package postgres

package sqlstore

import (
	"regexp"
	"strconv"
)

// Dialect captures what differs between the supported databases.
type Dialect interface {
	// Name identifies the dialect in logs, e.g. "sqlite" or "postgres".
	Name() string

	// GooseDialect is the dialect name passed to goose.SetDialect.
	GooseDialect() string

	// RewriteQuery converts ? placeholders if the driver needs another syntax.
	RewriteQuery(query string) string

	// MapError translates driver errors into store sentinel errors.
	// Errors without a mapping are returned unchanged.
	MapError(err error) error
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// NumberedPlaceholders converts ? placeholders to $1, $2, ...
// Queries must not contain a literal question mark.
func NumberedPlaceholders(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

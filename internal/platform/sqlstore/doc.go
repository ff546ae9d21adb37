// Package sqlstore implements the store interfaces on top of database/sql.
// The same queries serve every supported database; a Dialect supplies the
// placeholder syntax, the goose dialect name and driver error mapping.
package sqlstore

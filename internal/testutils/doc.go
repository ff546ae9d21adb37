// Package testutils provides helpers shared by tests: a migrated SQLite
// database in a temporary directory, word fixtures and a log-capturing
// slog handler.
//
//	stores := testutils.NewSQLiteStores(t)
//	testutils.MustInsertWords(t, stores.Words,
//	    testutils.Word(t, "der", "Hund", "dog", "A1"),
//	    testutils.Word(t, "", "gehen", "to go", "A1"),
//	)
package testutils

// Package main is the vocab-drill server: it serves the drill engine over
// HTTP and carries the maintenance commands for its word store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package service groups the application's use cases. Each subpackage owns
// one area; drill holds the vocabulary drill engine.
package service

// Package task runs drill requests on a small worker pool so that callers
// with their own event loop never block on the store. Each request is
// delivered back on a result channel that resolves exactly once.
package task

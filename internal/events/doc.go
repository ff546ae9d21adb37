// Package events provides the notifications the drill engine pushes to its
// observers: error count changes, progress changes and the end of an
// error-correction run.
//
// Engine components depend only on EventEmitter. InMemoryEventEmitter fans
// events out to registered handlers; ChannelHandler turns that into a
// channel subscription for a presentation layer.
package events

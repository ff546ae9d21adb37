// Package api exposes the drill engine over JSON HTTP for a presentation
// layer. Handlers decode and validate requests, run drill operations on the
// task dispatcher and translate engine errors into status codes.
package api

// Package web serves the simulation to browsers. One goroutine owns the
// engine; HTTP handlers and websocket readers queue commands to it, and
// every frame is pushed to connected clients as a JSON state message.
package web

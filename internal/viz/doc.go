// Package viz is the terminal front end.
//
// The ball is drawn on a braille [Canvas] (2x4 dots per cell) through a
// [Surface] that scales world pixels to dots. [Model] drives the engine
// from bubbletea ticks and forwards mouse events, so the ball can be
// dragged with the mouse.
//
// # Key Bindings
//
//	Space - Start/stop simulation
//	R     - Reset
//	Tab   - Select parameter, Up/Down to tune it
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// Recordings are encoded off the UI goroutine and saved, together with the
// per-frame samples, to the configured data directory.
package viz

// Package dynamo provides the core value types shared by every ringball package.
//
//   - [Vec2]: 2D point/displacement in canvas pixels
//   - [Ball], [Boundary]: the moving body and the static circle containing it
//   - [Params]: immutable tuning scalars, replaced wholesale on change
//   - [Collision], [CollisionNotifier]: impact events and their listener
//   - [TextOverlay]: caller-owned text drawn every frame
//   - [RecordingSink], [ColorSource]: collaborator capabilities
//
// # Thread Safety
//
// Values here are plain data. The engine that mutates them is owned by a
// single goroutine.
package dynamo

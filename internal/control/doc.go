// Package control turns pointer input into ball manipulation.
//
// A [Drag] grabs the ball when the pointer goes down inside it, pausing the
// scheduler, pins the ball to the pointer while it moves and hands control
// back to the physics when the pointer is released:
//
//	d := control.NewDrag(world, sched, redraw)
//	d.Down(dynamo.V(x, y)) // true if the ball was grabbed
//	d.Move(dynamo.V(x, y))
//	d.Up()
package control

package web

import (
	"encoding/json"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/palette"
)

// Message is the envelope for every websocket frame, in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types
const (
	TypeState     = "state"
	TypeCollision = "collision"
	TypeRecording = "recording"
	TypeError     = "error"

	TypeMouseDown = "mouse_down"
	TypeMouseMove = "mouse_move"
	TypeMouseUp   = "mouse_up"
	TypeStart     = "start"
	TypeStop      = "stop"
	TypeReset     = "reset"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v dynamo.Vec2) Point { return Point{v.X, v.Y} }

type BallState struct {
	Center   Point   `json:"center"`
	Velocity Point   `json:"velocity"`
	Radius   float64 `json:"radius"`
}

type BoundaryState struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Params is the parameter set in setter units: velocity_increase and
// growth_rate are the amounts added to 1.
type Params struct {
	Gravity          float64 `json:"gravity"`
	VelocityIncrease float64 `json:"velocity_increase"`
	VelocityDecay    float64 `json:"velocity_decay"`
	GrowthRate       float64 `json:"growth_rate"`
}

func paramsOf(p dynamo.Params) Params {
	return Params{
		Gravity:          p.Gravity,
		VelocityIncrease: p.VelocityIncrease - 1,
		VelocityDecay:    p.VelocityDecay,
		GrowthRate:       p.GrowthRate - 1,
	}
}

// State is everything a browser needs to draw one frame.
type State struct {
	Frame      int                  `json:"frame"`
	Elapsed    float64              `json:"elapsed"`
	State      string               `json:"state"`
	Running    bool                 `json:"running"`
	Dragging   bool                 `json:"dragging"`
	Recording  bool                 `json:"recording"`
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Ball       BallState            `json:"ball"`
	Boundary   BoundaryState        `json:"boundary"`
	Trail      []Point              `json:"trail"`
	Markers    []Point              `json:"markers"`
	Collisions int                  `json:"collisions"`
	Color      string               `json:"color"`
	Params     Params               `json:"params"`
	Overlays   []dynamo.TextOverlay `json:"overlays"`
	Error      string               `json:"error,omitempty"`
}

// stateOf reads the engine. Owner goroutine only.
func stateOf(e *engine.Engine) State {
	w := e.World()
	snap := e.Snapshot()
	ball := w.Ball()
	bound := w.Boundary()
	width, height := e.Surface().Size()

	st := State{
		Frame:      snap.Frame,
		Elapsed:    snap.Elapsed.Seconds(),
		State:      e.State().String(),
		Running:    e.IsRunning(),
		Dragging:   e.Dragging(),
		Recording:  e.Recording(),
		Width:      width,
		Height:     height,
		Ball:       BallState{pointOf(ball.Center), pointOf(ball.Velocity), ball.Radius},
		Boundary:   BoundaryState{pointOf(bound.Center), bound.Radius},
		Trail:      make([]Point, 0, w.Trail().Len()),
		Markers:    make([]Point, 0, w.Markers().Len()),
		Collisions: snap.Collisions,
		Color:      palette.Hex(snap.Color),
		Params:     paramsOf(snap.Params),
		Overlays:   e.TextElements(),
	}
	if snap.Err != nil {
		st.Error = snap.Err.Error()
	}
	w.Trail().Each(func(_ int, p dynamo.Vec2) { st.Trail = append(st.Trail, pointOf(p)) })
	w.Markers().Each(func(_ int, m dynamo.Marker) { st.Markers = append(st.Markers, pointOf(m.Point)) })
	return st
}

// CollisionEvent is pushed to every client on a wall hit.
type CollisionEvent struct {
	Index  int     `json:"index"`
	Point  Point   `json:"point"`
	Angle  float64 `json:"angle"`
	Speed  float64 `json:"speed"`
	Radius float64 `json:"radius"`
}

func collisionOf(c dynamo.Collision) CollisionEvent {
	return CollisionEvent{c.Index, pointOf(c.Point), c.Angle, c.Speed, c.Radius}
}

// RecordingEvent reports a finished recording.
type RecordingEvent struct {
	ID    string `json:"id,omitempty"`
	Bytes int    `json:"bytes"`
	Error string `json:"error,omitempty"`
}

func encode(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Data: data})
}

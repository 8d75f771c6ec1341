package render

import (
	"fmt"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/sim"
)

type op struct {
	kind   string
	at     dynamo.Vec2
	radius float64
	text   string
	color  color.Color
}

type recordingCanvas struct {
	ops []op
}

func (r *recordingCanvas) Fill(c color.Color) { r.ops = append(r.ops, op{kind: "fill", color: c}) }
func (r *recordingCanvas) StrokeCircle(center dynamo.Vec2, radius, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "ring", at: center, radius: radius, color: c})
}
func (r *recordingCanvas) FillCircle(center dynamo.Vec2, radius float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "disc", at: center, radius: radius, color: c})
}
func (r *recordingCanvas) Line(from, to dynamo.Vec2, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "line", at: from, color: c})
}
func (r *recordingCanvas) Text(s string, at dynamo.Vec2, style TextStyle) {
	r.ops = append(r.ops, op{kind: "text", at: at, text: s, color: style.Color})
}

func (r *recordingCanvas) kinds() string {
	k := make([]string, len(r.ops))
	for i, o := range r.ops {
		k[i] = o.kind
	}
	return strings.Join(k, ",")
}

type fixedColor color.RGBA

func (f fixedColor) Next() color.RGBA { return color.RGBA(f) }

func smallWorld(t *testing.T) *sim.World {
	t.Helper()
	layout := sim.Layout{
		Width:          400,
		Height:         400,
		BoundaryRadius: 100,
		Margin:         4,
		InitialRadius:  5,
		TrailLength:    5,
		MarkerCap:      8,
	}
	return sim.NewWorld(layout, fixedColor{R: 200, G: 10, B: 10, A: 255}, time.Unix(0, 0))
}

func TestRenderer_DrawOrder(t *testing.T) {
	w := smallWorld(t)
	hits := 0
	for i := 0; i < 2000 && hits < 2; i++ {
		if _, ok := w.Step(); ok {
			hits++
		}
	}
	if hits < 2 {
		t.Fatalf("expected two collisions, got %d", hits)
	}

	rc := &recordingCanvas{}
	r := NewRenderer(rc, DefaultStyle())
	r.SetOverlays([]dynamo.TextOverlay{
		{Text: "hello", X: 10, Y: 20, Size: 12, Color: "#00ff00"},
	})
	r.Draw(w)

	want := []string{"fill", "ring"}
	for i := 0; i < w.Markers().Len(); i++ {
		want = append(want, "line")
	}
	want = append(want, "text", "text")
	for i := 0; i < w.Trail().Len(); i++ {
		want = append(want, "disc")
	}
	want = append(want, "disc")

	if got := rc.kinds(); got != strings.Join(want, ",") {
		t.Fatalf("draw order\n got %s\nwant %s", got, strings.Join(want, ","))
	}

	ring := rc.ops[1]
	if ring.radius != 100+DefaultStyle().RingWidth/2 {
		t.Errorf("ring radius = %v, want %v", ring.radius, 100+DefaultStyle().RingWidth/2)
	}

	overlay := rc.ops[2+w.Markers().Len()]
	if overlay.text != "hello" || overlay.color != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("overlay = %+v", overlay)
	}

	last := rc.ops[len(rc.ops)-1]
	if last.at != w.Ball().Center || last.radius != w.Ball().Radius {
		t.Errorf("ball disc = %+v, want %v r=%v", last, w.Ball().Center, w.Ball().Radius)
	}
}

func TestRenderer_TrailAlpha(t *testing.T) {
	w := smallWorld(t)
	for i := 0; i < 5; i++ {
		w.Step()
	}
	rc := &recordingCanvas{}
	NewRenderer(rc, DefaultStyle()).Draw(w)

	var alphas []uint8
	for _, o := range rc.ops {
		if o.kind != "disc" {
			continue
		}
		if c, ok := o.color.(color.NRGBA); ok {
			alphas = append(alphas, c.A)
		}
	}
	want := []uint8{51, 102, 153, 204, 255}
	if fmt.Sprint(alphas) != fmt.Sprint(want) {
		t.Errorf("trail alphas = %v, want %v", alphas, want)
	}
}

func TestRenderer_ElapsedLabel(t *testing.T) {
	w := smallWorld(t)
	w.Clock().Resume(time.Unix(0, 0))
	w.Clock().Tick(time.Unix(3, 250_000_000))

	rc := &recordingCanvas{}
	NewRenderer(rc, DefaultStyle()).Draw(w)

	var label op
	for _, o := range rc.ops {
		if o.kind == "text" {
			label = o
		}
	}
	if label.text != "3.25" {
		t.Errorf("label = %q, want 3.25", label.text)
	}
	wantY := 200 + 100 + DefaultStyle().RingWidth + DefaultStyle().ClockOffset
	if label.at != dynamo.V(200, wantY) {
		t.Errorf("label at %v, want (200, %v)", label.at, wantY)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.00"},
		{1500 * time.Millisecond, "1.50"},
		{61*time.Second + 4*time.Millisecond, "61.00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderer_FullMarkerFrameCost(t *testing.T) {
	if testing.Short() {
		t.Skip("timing")
	}
	layout := sim.DefaultLayout(1080, 1920)
	w := sim.NewWorld(layout, fixedColor{R: 200, G: 10, B: 10, A: 255}, time.Unix(0, 0))
	bound := w.Boundary()
	for i := 0; i < layout.MarkerCap; i++ {
		w.Markers().Push(dynamo.Marker{Point: bound.Center.Add(dynamo.Polar(bound.Radius, float64(i)*0.37))})
	}
	for i := 0; i < 5; i++ {
		w.Step()
	}

	r := NewRenderer(NewRaster(1080, 1920), DefaultStyle())
	r.Draw(w)

	const frames = 5
	start := time.Now()
	for i := 0; i < frames; i++ {
		r.Draw(w)
	}
	// a full-canvas pass per shape costs seconds here
	if per := time.Since(start) / frames; per > 250*time.Millisecond {
		t.Errorf("one frame with %d markers took %v", layout.MarkerCap, per)
	}
}

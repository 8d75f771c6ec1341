// Package audio plays a short plucked tone for every wall collision.
package audio

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/ringball/internal/dynamo"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

// Pluck is a CollisionNotifier backed by a portaudio output stream.
// OnCollision never blocks; when the trigger queue is full the hit is
// silently dropped.
type Pluck struct {
	stream   *portaudio.Stream
	triggers chan Note
	synth    *Synth

	mu     sync.Mutex
	active bool
}

func NewPluck() *Pluck {
	return &Pluck{
		triggers: make(chan Note, 32),
		synth:    NewSynth(SampleRate),
	}
}

func (p *Pluck) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, p.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}
	log.Printf("[AUDIO] output stream started at %d Hz", SampleRate)

	p.mu.Lock()
	p.stream = stream
	p.active = true
	p.mu.Unlock()
	return nil
}

func (p *Pluck) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	p.stream.Stop()
	p.stream.Close()
	portaudio.Terminate()
	p.active = false
}

func (p *Pluck) OnCollision(c dynamo.Collision) {
	select {
	case p.triggers <- NoteFor(c):
	default:
	}
}

func (p *Pluck) process(out [][]float32) {
	for {
		select {
		case n := <-p.triggers:
			p.synth.Trigger(n)
			continue
		default:
		}
		break
	}
	p.synth.Render(out)
}

// Note is one pluck.
type Note struct {
	Freq float64
	Amp  float64
}

// pentatonic scale rooted on A3
var scale = []float64{220.00, 261.63, 293.66, 329.63, 392.00, 440.00, 523.25, 587.33, 659.25, 783.99}

// NoteFor maps a collision to a note: the wall angle picks the pitch and
// the impact speed the loudness.
// Non-finite input falls back to the root note at the quietest level.
func NoteFor(c dynamo.Collision) Note {
	a := math.Mod(c.Angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	i := 0
	if !math.IsNaN(a) {
		i = int(a/(2*math.Pi)*float64(len(scale))) % len(scale)
	}
	amp := 0.15
	if s := c.Speed; !math.IsNaN(s) && !math.IsInf(s, 0) && s > 0 {
		amp = math.Min(0.15+s/40, 1)
	}
	return Note{Freq: scale[i], Amp: amp}
}

type voice struct {
	freq, amp, phase, env float64
}

// Synth mixes decaying triangle voices through a one-pole low pass and a
// short stereo delay.
type Synth struct {
	rate      float64
	voices    []voice
	filter    [2]float64
	delay     [2][]float64
	delayHead int
	Cutoff    float64
	Decay     float64
	Volume    float64
}

func NewSynth(rate float64) *Synth {
	n := int(rate * 0.25)
	return &Synth{
		rate:   rate,
		delay:  [2][]float64{make([]float64, n), make([]float64, n+n/7)},
		Cutoff: 2400,
		Decay:  0.99985,
		Volume: 0.3,
	}
}

const maxVoices = 8

func (s *Synth) Trigger(n Note) {
	if len(s.voices) == maxVoices {
		s.voices = s.voices[1:]
	}
	s.voices = append(s.voices, voice{freq: n.Freq, amp: n.Amp, env: 1})
}

func (s *Synth) Voices() int { return len(s.voices) }

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Render fills a stereo buffer.
func (s *Synth) Render(out [][]float32) {
	if len(out) < 2 {
		return
	}
	dt := 1 / s.rate
	for i := range out[0] {
		var sample float64
		for j := range s.voices {
			v := &s.voices[j]
			sample += triangle(v.phase) * v.amp * v.env
			v.phase += v.freq * dt
			v.env *= s.Decay
		}
		s.filter[0] = lpf(sample, s.Cutoff, dt, s.filter[0])
		s.filter[1] = lpf(sample, s.Cutoff*0.9, dt, s.filter[1])

		h := s.delayHead
		dl := s.delay[0][h%len(s.delay[0])]
		dr := s.delay[1][h%len(s.delay[1])]
		l := s.filter[0] + dr*0.25
		r := s.filter[1] + dl*0.25
		s.delay[0][h%len(s.delay[0])] = l * 0.5
		s.delay[1][h%len(s.delay[1])] = r * 0.5
		s.delayHead++

		out[0][i] = float32(l * s.Volume)
		out[1][i] = float32(r * s.Volume)
	}
	s.reap()
}

// drop voices that have decayed below hearing
func (s *Synth) reap() {
	live := s.voices[:0]
	for _, v := range s.voices {
		if v.env*v.amp > 1e-4 {
			live = append(live, v)
		}
	}
	s.voices = live
}

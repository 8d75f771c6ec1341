package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/metrics"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/storage"
)

// ErrClosed is returned for commands sent after the server stopped.
var ErrClosed = errors.New("web: server closed")

type command struct {
	fn    func(e *engine.Engine) any
	reply chan any
}

type recordingResult struct {
	blob []byte
	err  error
}

// Server runs one engine on its own goroutine and exposes it over HTTP and
// a websocket. Handlers never touch the engine directly: they queue a
// command and wait for the owner goroutine to run it.
type Server struct {
	cfg       *config.Config
	preset    string
	store     *storage.Store
	eng       *engine.Engine
	surface   *render.RasterSurface
	hub       *Hub
	stats     metrics.Set
	collector *storage.Collector
	cmds      chan command
	recDone   chan recordingResult
	done      chan struct{}
	interval  time.Duration
	started   time.Time
	router    *gin.Engine
}

// NewServer builds the engine on an offscreen raster the size of the
// configured canvas. The engine is stopped until a client starts it.
func NewServer(cfg *config.Config, preset string, store *storage.Store, opts ...engine.Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		preset:    preset,
		store:     store,
		surface:   render.NewRasterSurface(cfg.Canvas.Width, cfg.Canvas.Height),
		stats:     metrics.Standard(cfg.Layout()),
		collector: storage.NewCollector(1),
		cmds:      make(chan command),
		recDone:   make(chan recordingResult, 1),
		done:      make(chan struct{}),
		interval:  time.Second / time.Duration(max(cfg.FPS, 1)),
		started:   time.Now(),
	}
	s.hub = NewHub(s.handleInput)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	base := []engine.Option{
		engine.WithLayout(cfg.Layout()),
		engine.WithParams(cfg.Params()),
		engine.WithStyle(cfg.Style()),
		engine.WithColors(palette.NewRandomSource(seed)),
		engine.WithNotifier(dynamo.CollisionFunc(func(c dynamo.Collision) {
			s.hub.Publish(TypeCollision, collisionOf(c))
		})),
	}
	eng, err := engine.New(s.surface, cfg.Overlays, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	eng.AddObserver(s.stats)
	eng.AddObserver(s.collector)
	s.eng = eng
	s.router = s.routes()
	return s, nil
}

// Handler is the HTTP handler serving the page, the API and the websocket.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Hub() *Hub { return s.hub }

// Run owns the engine until ctx is done: it advances frames on a ticker,
// runs queued commands and saves finished recordings.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run()
	defer s.hub.Close()
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.eng.Recording() {
				s.eng.StopRecording()
			}
			s.eng.Stop()
			return
		case now := <-ticker.C:
			if s.eng.Advance(now) > 0 {
				s.broadcastState()
			}
		case cmd := <-s.cmds:
			cmd.reply <- cmd.fn(s.eng)
			s.broadcastState()
		case r := <-s.recDone:
			s.saveRecording(r)
		}
	}
}

func (s *Server) broadcastState() {
	if s.hub.Len() == 0 {
		return
	}
	s.hub.Publish(TypeState, stateOf(s.eng))
}

// do runs fn on the owner goroutine and returns its result.
func (s *Server) do(ctx context.Context, fn func(e *engine.Engine) any) (any, error) {
	cmd := command{fn: fn, reply: make(chan any, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case v := <-cmd.reply:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ListenAndServe runs the owner goroutine and an HTTP server on addr until
// ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.Run(runCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[WEB] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleInput runs on a client's read goroutine.
func (s *Server) handleInput(c *Client, m Message) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var p Point
	switch m.Type {
	case TypeMouseDown, TypeMouseMove:
		if err := decodeData(m, &p); err != nil {
			c.sendError("invalid pointer position")
			return
		}
	}

	_, err := s.do(ctx, func(e *engine.Engine) any {
		switch m.Type {
		case TypeMouseDown:
			return e.HandleMouseDown(p.X, p.Y)
		case TypeMouseMove:
			return e.HandleMouseMove(p.X, p.Y)
		case TypeMouseUp:
			return e.HandleMouseUp()
		case TypeStart:
			e.Start()
		case TypeStop:
			e.Stop()
		case TypeReset:
			e.Reset()
			s.stats.Reset()
		default:
			c.sendError("unknown message type: " + m.Type)
		}
		return nil
	})
	if err != nil {
		c.sendError(err.Error())
	}
}

// startRecording runs on the owner goroutine.
func (s *Server) startRecording(e *engine.Engine) error {
	ch := s.recDone
	sink := dynamo.RecordingFunc(func(blob []byte, err error) { ch <- recordingResult{blob, err} })
	return e.StartRecording(sink, nil)
}

// saveRecording runs on the owner goroutine.
func (s *Server) saveRecording(r recordingResult) {
	ev := RecordingEvent{Bytes: len(r.blob)}
	switch {
	case r.err != nil:
		ev.Error = r.err.Error()
	case s.store != nil:
		snap := s.eng.Snapshot()
		id, err := s.store.Save(storage.RunMetadata{
			Seed:    s.cfg.Seed,
			Preset:  s.preset,
			Frames:  snap.Frame,
			Elapsed: snap.Elapsed.Seconds(),
			Params:  snap.Params,
			Layout:  s.cfg.Layout(),
			Metrics: s.stats.Values(),
		}, s.collector.Samples(), r.blob)
		if err != nil {
			log.Printf("[REC] save failed: %v", err)
			ev.Error = err.Error()
		}
		ev.ID = id
	}
	s.hub.Publish(TypeRecording, ev)
}

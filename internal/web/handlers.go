package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/export"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/storage"
)

const version = "1.0.0"

func decodeData(m Message, v any) error {
	if len(m.Data) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(m.Data, v)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
	})
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.GET("/state", s.state)
		api.GET("/stats", s.statsHandler)
		api.GET("/params", s.params)
		api.PUT("/params/:name", s.setParam)
		api.PUT("/preset/:name", s.applyPreset)
		api.GET("/presets", presets)
		api.POST("/start", s.control(func(e *engine.Engine) { e.Start() }))
		api.POST("/stop", s.control(func(e *engine.Engine) { e.Stop() }))
		api.POST("/reset", s.control(func(e *engine.Engine) { e.Reset(); s.stats.Reset() }))
		api.PUT("/overlays", s.setOverlays)
		api.GET("/frame.png", s.framePNG)
		api.GET("/frame.svg", s.frameSVG)
		api.POST("/recording/start", s.recordingStart)
		api.POST("/recording/stop", s.recordingStop)
		api.GET("/runs", s.listRuns)
		api.GET("/runs/:id", s.getRun)
		api.GET("/runs/:id/recording.gif", s.getRecording)
	}
	return r
}

// fail maps a command error to a JSON error response.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, dynamo.ErrUnknownParam), errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, dynamo.ErrRecording), errors.Is(err, dynamo.ErrNotRecording):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrNoRecording):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	if err := s.hub.Serve(c.Writer, c.Request); err != nil {
		// the upgrader has already written the response
		return
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ringball",
		"version": version,
		"uptime":  time.Since(s.started).String(),
		"clients": s.hub.Len(),
	})
}

func (s *Server) state(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any { return stateOf(e) })
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) statsHandler(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(*engine.Engine) any { return s.stats.Values() })
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) params(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any { return paramsOf(e.Params()) })
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) setParam(c *gin.Context) {
	var req struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	name := c.Param("name")
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
		if err := e.SetParam(name, *req.Value); err != nil {
			return err
		}
		return paramsOf(e.Params())
	})
	if err == nil {
		err, _ = v.(error)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func presets(c *gin.Context) {
	out := make(map[string]config.PhysicsConfig, len(config.Presets))
	for _, name := range config.ListPresets() {
		out[name] = config.Presets[name]
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) applyPreset(c *gin.Context) {
	p, ok := config.Presets[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown preset"})
		return
	}
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
		e.SetGravity(p.Gravity)
		e.SetVelocityIncrease(p.VelocityIncrease)
		e.SetVelocityDecay(p.VelocityDecay)
		e.SetBallGrowthRate(p.GrowthRate)
		return paramsOf(e.Params())
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) control(fn func(e *engine.Engine)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
			fn(e)
			return stateOf(e)
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func (s *Server) setOverlays(c *gin.Context) {
	var overlays []dynamo.TextOverlay
	if err := c.ShouldBindJSON(&overlays); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
		e.UpdateTextElements(overlays)
		return e.TextElements()
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) framePNG(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
		img := s.surface.Image()
		if img == nil {
			return nil
		}
		frame := image.NewRGBA(img.Bounds())
		draw.Draw(frame, frame.Bounds(), img, img.Bounds().Min, draw.Src)
		return frame
	})
	if err != nil {
		fail(c, err)
		return
	}
	frame, ok := v.(*image.RGBA)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame yet"})
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) frameSVG(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
		w, h := e.Surface().Size()
		svg := export.NewSVG(w, h)
		canvas, err := svg.Context()
		if err != nil {
			return err
		}
		r := render.NewRenderer(canvas, s.cfg.Style())
		r.SetOverlays(e.TextElements())
		r.Draw(e.World())
		return svg.Bytes()
	})
	if err == nil {
		err, _ = v.(error)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", v.([]byte))
}

func (s *Server) recordingStart(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any { return s.startRecording(e) })
	if err == nil {
		err, _ = v.(error)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recording": true})
}

func (s *Server) recordingStop(c *gin.Context) {
	v, err := s.do(c.Request.Context(), func(e *engine.Engine) any {
		if !e.Recording() {
			return dynamo.ErrNotRecording
		}
		return e.StopRecording()
	})
	if err == nil {
		err, _ = v.(error)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"recording": false})
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data directory configured"})
		return false
	}
	id := c.Param("id")
	if id != "" && (!strings.HasPrefix(id, "run_") || strings.Contains(id, "..")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return false
	}
	return true
}

func (s *Server) listRuns(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	runs, err := s.store.List()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	meta, err := s.store.Load(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) getRecording(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	blob, err := s.store.LoadRecording(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/gif", blob)
}

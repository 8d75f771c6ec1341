package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/sim"
)

const (
	DefaultWidth            = 1080
	DefaultHeight           = 1920
	DefaultBoundaryRadius   = 432.0
	DefaultMargin           = 4.0
	DefaultStroke           = 8.0
	DefaultInitialRadius    = 20.0
	DefaultGravity          = 0.2
	DefaultVelocityIncrease = 0.02
	DefaultVelocityDecay    = 0.999
	DefaultGrowthRate       = 0.015
	DefaultFPS              = 60
	DefaultDataDir          = "data"
	DefaultListen           = ":8080"
)

type Config struct {
	Canvas    CanvasConfig         `yaml:"canvas"`
	Boundary  BoundaryConfig       `yaml:"boundary"`
	Ball      BallConfig           `yaml:"ball"`
	MarkerCap int                  `yaml:"marker_cap"`
	Physics   PhysicsConfig        `yaml:"physics"`
	FPS       int                  `yaml:"fps"`
	Seed      int64                `yaml:"seed"`
	Overlays  []dynamo.TextOverlay `yaml:"overlays"`
	DataDir   string               `yaml:"data_dir"`
	Listen    string               `yaml:"listen"`
	Audio     bool                 `yaml:"audio"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type BoundaryConfig struct {
	Radius float64 `yaml:"radius"`
	Margin float64 `yaml:"margin"`
	Stroke float64 `yaml:"stroke"`
}

type BallConfig struct {
	InitialRadius float64 `yaml:"initial_radius"`
	TrailLength   int     `yaml:"trail_length"`
}

// PhysicsConfig holds the values as the engine setters take them:
// velocity_increase and growth_rate are the excess over 1.
type PhysicsConfig struct {
	Gravity          float64 `yaml:"gravity"`
	VelocityIncrease float64 `yaml:"velocity_increase"`
	VelocityDecay    float64 `yaml:"velocity_decay"`
	GrowthRate       float64 `yaml:"growth_rate"`
}

func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{Width: DefaultWidth, Height: DefaultHeight},
		Boundary: BoundaryConfig{
			Radius: DefaultBoundaryRadius,
			Margin: DefaultMargin,
			Stroke: DefaultStroke,
		},
		Ball: BallConfig{
			InitialRadius: DefaultInitialRadius,
			TrailLength:   sim.DefaultTrailLength,
		},
		MarkerCap: sim.DefaultMarkerCap,
		Physics:   DefaultPhysics(),
		FPS:       DefaultFPS,
		Overlays: []dynamo.TextOverlay{
			{Text: "ringball", X: DefaultWidth / 2, Y: 220, Size: 64, Font: "sans-serif", Color: "#ffffff"},
		},
		DataDir: DefaultDataDir,
		Listen:  DefaultListen,
	}
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:          DefaultGravity,
		VelocityIncrease: DefaultVelocityIncrease,
		VelocityDecay:    DefaultVelocityDecay,
		GrowthRate:       DefaultGrowthRate,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the geometry. Physics values are deliberately unchecked.
func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("config: canvas %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	case c.Boundary.Radius <= 0:
		return fmt.Errorf("config: boundary radius %.1f must be positive", c.Boundary.Radius)
	case c.Ball.InitialRadius <= 0:
		return fmt.Errorf("config: initial ball radius %.1f must be positive", c.Ball.InitialRadius)
	case c.Ball.InitialRadius > c.Boundary.Radius-c.Boundary.Margin:
		return fmt.Errorf("config: initial ball radius %.1f exceeds boundary radius minus margin", c.Ball.InitialRadius)
	case c.FPS <= 0:
		return fmt.Errorf("config: fps %d must be positive", c.FPS)
	}
	return nil
}

func (c *Config) Layout() sim.Layout {
	return sim.Layout{
		Width:          float64(c.Canvas.Width),
		Height:         float64(c.Canvas.Height),
		BoundaryRadius: c.Boundary.Radius,
		Margin:         c.Boundary.Margin,
		InitialRadius:  c.Ball.InitialRadius,
		TrailLength:    c.Ball.TrailLength,
		MarkerCap:      c.MarkerCap,
	}
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Gravity:          c.Physics.Gravity,
		VelocityIncrease: 1 + c.Physics.VelocityIncrease,
		VelocityDecay:    c.Physics.VelocityDecay,
		GrowthRate:       1 + c.Physics.GrowthRate,
	}
}

func (c *Config) Style() render.Style {
	st := render.DefaultStyle()
	if c.Boundary.Stroke > 0 {
		st.RingWidth = c.Boundary.Stroke
	}
	return st
}

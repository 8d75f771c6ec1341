package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ApplyEnv loads a .env file if present and overlays RINGBALL_* variables
// onto cfg.
func ApplyEnv(cfg *Config) {
	godotenv.Load()

	cfg.Canvas.Width = getEnvInt("RINGBALL_WIDTH", cfg.Canvas.Width)
	cfg.Canvas.Height = getEnvInt("RINGBALL_HEIGHT", cfg.Canvas.Height)
	cfg.Boundary.Radius = getEnvFloat("RINGBALL_BOUNDARY_RADIUS", cfg.Boundary.Radius)
	cfg.Ball.InitialRadius = getEnvFloat("RINGBALL_BALL_RADIUS", cfg.Ball.InitialRadius)
	cfg.MarkerCap = getEnvInt("RINGBALL_MARKER_CAP", cfg.MarkerCap)

	cfg.Physics.Gravity = getEnvFloat("RINGBALL_GRAVITY", cfg.Physics.Gravity)
	cfg.Physics.VelocityIncrease = getEnvFloat("RINGBALL_VELOCITY_INCREASE", cfg.Physics.VelocityIncrease)
	cfg.Physics.VelocityDecay = getEnvFloat("RINGBALL_VELOCITY_DECAY", cfg.Physics.VelocityDecay)
	cfg.Physics.GrowthRate = getEnvFloat("RINGBALL_GROWTH_RATE", cfg.Physics.GrowthRate)

	cfg.FPS = getEnvInt("RINGBALL_FPS", cfg.FPS)
	cfg.Seed = int64(getEnvInt("RINGBALL_SEED", int(cfg.Seed)))
	cfg.DataDir = getEnv("RINGBALL_DATA_DIR", cfg.DataDir)
	cfg.Listen = getEnv("RINGBALL_LISTEN", cfg.Listen)
	cfg.Audio = getEnvBool("RINGBALL_AUDIO", cfg.Audio)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

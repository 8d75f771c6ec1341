package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	samplesFile   = "samples.csv"
	recordingFile = "recording.gif"
)

// ErrNoRecording is returned by LoadRecording for runs saved without one.
var ErrNoRecording = errors.New("storage: run has no recording")

// Store keeps each run in its own directory under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Preset       string             `json:"preset,omitempty"`
	Frames       int                `json:"frames"`
	Elapsed      float64            `json:"elapsed"`
	Params       dynamo.Params      `json:"params"`
	Layout       sim.Layout         `json:"layout"`
	Metrics      map[string]float64 `json:"metrics"`
	HasRecording bool               `json:"has_recording"`
}

// Sample is one frame of a run as written to samples.csv.
type Sample struct {
	Frame      int
	Time       float64
	X, Y       float64
	VX, VY     float64
	Radius     float64
	Collisions int
}

func SampleOf(s sim.Snapshot) Sample {
	return Sample{
		Frame:      s.Frame,
		Time:       s.Elapsed.Seconds(),
		X:          s.Ball.Center.X,
		Y:          s.Ball.Center.Y,
		VX:         s.Ball.Velocity.X,
		VY:         s.Ball.Velocity.Y,
		Radius:     s.Ball.Radius,
		Collisions: s.Collisions,
	}
}

func (s Sample) Speed() float64 { return dynamo.V(s.VX, s.VY).Len() }

var sampleHeader = []string{"frame", "time", "x", "y", "vx", "vy", "radius", "collisions"}

// Save writes metadata, samples and an optional GIF recording and returns
// the run id. An empty meta.ID is filled from the timestamp.
func (s *Store) Save(meta RunMetadata, samples []Sample, recording []byte) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("run_%d", meta.Timestamp.UnixNano())
	}
	meta.HasRecording = len(recording) > 0

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), samples); err != nil {
		return "", err
	}
	if meta.HasRecording {
		if err := os.WriteFile(filepath.Join(runDir, recordingFile), recording, 0644); err != nil {
			return "", err
		}
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sampleHeader); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Frame),
			ff(smp.Time),
			ff(smp.X), ff(smp.Y),
			ff(smp.VX), ff(smp.VY),
			ff(smp.Radius),
			strconv.Itoa(smp.Collisions),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads samples.csv back. Malformed rows are skipped.
func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(sampleHeader) {
			continue
		}
		smp, ok := parseSample(rec)
		if !ok {
			continue
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseSample(rec []string) (Sample, bool) {
	var vals [6]float64
	for i := range vals {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return Sample{}, false
		}
		vals[i] = v
	}
	frame, err := strconv.Atoi(rec[0])
	if err != nil {
		return Sample{}, false
	}
	hits, err := strconv.Atoi(rec[7])
	if err != nil {
		return Sample{}, false
	}
	return Sample{
		Frame: frame, Time: vals[0],
		X: vals[1], Y: vals[2], VX: vals[3], VY: vals[4],
		Radius: vals[5], Collisions: hits,
	}, true
}

func (s *Store) LoadRecording(runID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, recordingFile))
	if os.IsNotExist(err) {
		return nil, ErrNoRecording
	}
	return data, err
}

// RecordingPath is where a run's GIF lives, whether or not it exists.
func (s *Store) RecordingPath(runID string) string {
	return filepath.Join(s.baseDir, runID, recordingFile)
}

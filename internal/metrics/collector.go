// Package metrics provides performance metrics collection and reporting.
package metrics

import (
	"crypto/rand"
	"encoding/hex"
	"runtime"
	"time"
)

// Stage names used by the CLI.
const (
	StageLoad          = "load"
	StageTransliterate = "transliterate"
)

// Counter names used by the CLI.
const (
	CounterLines  = "lines"
	CounterTokens = "tokens"
	CounterFailed = "failed"
	CounterRules  = "rules"
	CounterLabels = "labels"
)

// StageMetrics holds metrics for a single processing stage.
type StageMetrics struct {
	Name       string           `json:"name"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
	DurationMs int64            `json:"duration_ms"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

// RunMetrics holds all metrics for a complete run.
type RunMetrics struct {
	RunID       string                   `json:"run_id"`
	Timestamp   time.Time                `json:"timestamp"`
	Config      map[string]interface{}   `json:"config"`
	Stages      map[string]*StageMetrics `json:"stages"`
	Totals      *TotalMetrics            `json:"totals"`
	Environment *EnvironmentInfo         `json:"environment"`
}

// TotalMetrics holds aggregate metrics.
type TotalMetrics struct {
	DurationMs     int64   `json:"duration_ms"`
	PeakMemoryMB   float64 `json:"peak_memory_mb"`
	LinesProcessed int64   `json:"lines_processed"`
	LinesFailed    int64   `json:"lines_failed"`
	Throughput     float64 `json:"throughput_lines_per_sec"`
}

// EnvironmentInfo holds system environment details.
type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	NumCPU    int    `json:"num_cpu"`
	MaxProcs  int    `json:"max_procs"`
}

// Collector collects metrics during a run. It is not safe for concurrent
// use; batch callbacks run on the caller's goroutine.
type Collector struct {
	runID       string
	startTime   time.Time
	config      map[string]interface{}
	stages      map[string]*StageMetrics
	activeStage string
	peakMemory  uint64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		runID:     generateRunID(),
		startTime: time.Now(),
		config:    make(map[string]interface{}),
		stages:    make(map[string]*StageMetrics),
	}
}

func generateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return timestamp + "-" + hex.EncodeToString(bytes)
}

// SetConfig stores configuration for the run.
func (c *Collector) SetConfig(key string, value interface{}) {
	c.config[key] = value
}

// SetConfigMap stores multiple configuration values.
func (c *Collector) SetConfigMap(config map[string]interface{}) {
	for k, v := range config {
		c.config[k] = v
	}
}

// StartStage begins timing a new processing stage.
func (c *Collector) StartStage(name string) {
	c.activeStage = name
	c.stages[name] = &StageMetrics{
		Name:      name,
		StartTime: time.Now(),
		Counters:  make(map[string]int64),
	}
	c.updatePeakMemory()
}

// EndStage completes timing for the named stage.
func (c *Collector) EndStage(name string) {
	if stage, ok := c.stages[name]; ok {
		stage.EndTime = time.Now()
		stage.DurationMs = stage.EndTime.Sub(stage.StartTime).Milliseconds()
	}
	if c.activeStage == name {
		c.activeStage = ""
	}
	c.updatePeakMemory()
}

// IncrementCounter increments a counter for the active stage.
func (c *Collector) IncrementCounter(name string, delta int64) {
	if stage := c.active(); stage != nil {
		stage.Counters[name] += delta
	}
}

// SetCounter sets a counter value for the active stage.
func (c *Collector) SetCounter(name string, value int64) {
	if stage := c.active(); stage != nil {
		stage.Counters[name] = value
	}
}

// StageCounter returns a counter of a specific stage.
func (c *Collector) StageCounter(stage, name string) int64 {
	if s, ok := c.stages[stage]; ok {
		return s.Counters[name]
	}
	return 0
}

func (c *Collector) active() *StageMetrics {
	if c.activeStage == "" {
		return nil
	}
	return c.stages[c.activeStage]
}

func (c *Collector) updatePeakMemory() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Alloc > c.peakMemory {
		c.peakMemory = m.Alloc
	}
}

// Finalize creates the final RunMetrics report.
func (c *Collector) Finalize(lines, failed int64) *RunMetrics {
	c.updatePeakMemory()
	totalDuration := time.Since(c.startTime)

	throughput := float64(0)
	if totalDuration.Seconds() > 0 {
		throughput = float64(lines) / totalDuration.Seconds()
	}

	return &RunMetrics{
		RunID:     c.runID,
		Timestamp: c.startTime,
		Config:    c.config,
		Stages:    c.stages,
		Totals: &TotalMetrics{
			DurationMs:     totalDuration.Milliseconds(),
			PeakMemoryMB:   float64(c.peakMemory) / 1024 / 1024,
			LinesProcessed: lines,
			LinesFailed:    failed,
			Throughput:     throughput,
		},
		Environment: &EnvironmentInfo{
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			NumCPU:    runtime.NumCPU(),
			MaxProcs:  runtime.GOMAXPROCS(0),
		},
	}
}

// GetStageDuration returns the duration of a completed stage.
func (c *Collector) GetStageDuration(name string) time.Duration {
	if stage, ok := c.stages[name]; ok && !stage.EndTime.IsZero() {
		return stage.EndTime.Sub(stage.StartTime)
	}
	return 0
}

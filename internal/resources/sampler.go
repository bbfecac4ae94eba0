// Package resources samples the dispatchd process's own CPU and memory
// usage for the detailed status endpoint, adapted from the teacher's
// gopsutil-based system metrics manager.
package resources

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time resource sample.
type Snapshot struct {
	CPUPercent    float64 `json:"cpu_percent"`
	RSSBytes      uint64  `json:"rss_bytes"`
	NumGoroutines int     `json:"-"`
}

// Sampler reads process metrics via gopsutil, caching the *process.Process
// handle for the current PID.
type Sampler struct {
	proc *process.Process
}

// NewSampler creates a Sampler for the current process.
func NewSampler() (*Sampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Sampler{proc: p}, nil
}

// Sample takes a CPU/memory reading. CPUPercent blocks for up to the given
// interval to measure a delta; callers on a hot path should keep interval
// small (sub-second) since this is invoked from an HTTP handler.
func (s *Sampler) Sample(interval time.Duration) Snapshot {
	var snap Snapshot

	if pct, err := s.proc.Percent(interval); err == nil {
		snap.CPUPercent = pct
	}
	if mem, err := s.proc.MemoryInfo(); err == nil && mem != nil {
		snap.RSSBytes = mem.RSS
	}

	return snap
}

// Package profiler periodically logs tick rate, heap statistics and caller-supplied gauges.
package profiler

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"
)

// Gauge is a named integer sampled each time the profiler reports.
type Gauge struct {
	Name   string
	Sample func() int
}

// Profiler tracks tick rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	gauges         []Gauge
	lastReport     string
	now            func() time.Time
}

// NewProfiler creates a new Profiler. The report interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per engine tick.
// Logs statistics when the update interval has elapsed: TPS, heap usage, allocation rate,
// GC count and pause times, then every registered gauge.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.tickCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	tps := float64(p.tickCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "TPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs)",
		tps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs)
	for _, g := range p.gauges {
		fmt.Fprintf(&sb, " | %s: %d", g.Name, g.Sample())
	}
	p.lastReport = sb.String()
	log.Printf("[Profiler] %s", p.lastReport)

	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// LastReport returns the most recently logged report line without the log prefix.
//
// Returns:
//   - string: the last report, or "" if nothing was reported yet
func (p *Profiler) LastReport() string {
	return p.lastReport
}

package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/wisp-go/common"
)

// Profiler tracks frame timing and memory statistics for performance
// monitoring. Stats are written through the configured logger at a fixed
// interval: FPS, min/avg/max frame time over the interval, heap usage,
// allocation rate, and GC pause times.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	lastFrame      time.Time
	updateInterval time.Duration

	minFrame time.Duration
	maxFrame time.Duration

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	logger common.Logger
}

// ProfilerBuilderOption is a function that configures a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval is an option builder that sets how often stats are logged.
//
// Parameters:
//   - interval: the logging interval (values <= 0 keep the 1s default)
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a profiler
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger is an option builder that sets the logger stats are written to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the logger option to a profiler
func WithLogger(logger common.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProfiler creates a new Profiler with all specified options applied.
// The update interval defaults to 1 second.
//
// Parameters:
//   - options: optional ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	now := time.Now()
	p := &Profiler{
		lastTime:       now,
		lastFrame:      now,
		updateInterval: time.Second,
		logger:         common.NewLogger("profiler"),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing. Logs performance
// statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := time.Now()
	frame := now.Sub(p.lastFrame)
	p.lastFrame = now

	p.frameCount++
	if p.minFrame == 0 || frame < p.minFrame {
		p.minFrame = frame
	}
	if frame > p.maxFrame {
		p.maxFrame = frame
	}

	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgMs := elapsed.Seconds() * 1000 / float64(p.frameCount)

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc is cumulative churn; Sys is the process
	// footprint obtained from the OS.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Infof("FPS: %.2f | Frame: %.2f ms (min %.2f, max %.2f) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, avgMs, float64(p.minFrame.Microseconds())/1000, float64(p.maxFrame.Microseconds())/1000,
		allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.minFrame = 0
	p.maxFrame = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

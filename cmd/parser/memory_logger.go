package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bageshwar/rankforge-sub000/internal/ipc"
)

// MemoryLogger reports memory usage periodically. Whole log files stay
// resident for the rewind scans, so the supervising process wants to
// see heap growth on large inputs.
type MemoryLogger struct {
	output       *ipc.Output
	lastLog      time.Time
	interval     time.Duration
	lastLine     int
	lineInterval int
}

// NewMemoryLogger creates a memory logger that reports every
// intervalSeconds, and additionally every lineInterval lines scanned.
func NewMemoryLogger(output *ipc.Output, intervalSeconds, lineInterval int) *MemoryLogger {
	return &MemoryLogger{
		output:       output,
		interval:     time.Duration(intervalSeconds) * time.Second,
		lastLog:      time.Now(),
		lineInterval: lineInterval,
	}
}

// LogIfNeeded logs memory stats if the time or line interval passed.
func (ml *MemoryLogger) LogIfNeeded(line int) {
	now := time.Now()
	shouldLog := false

	if now.Sub(ml.lastLog) >= ml.interval {
		shouldLog = true
		ml.lastLog = now
	}
	if ml.lineInterval > 0 && line > 0 && (line-ml.lastLine) >= ml.lineInterval {
		shouldLog = true
		ml.lastLine = line
	}
	if !shouldLog {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	heapAllocMB := float64(m.HeapAlloc) / (1024 * 1024)
	heapInuseMB := float64(m.HeapInuse) / (1024 * 1024)
	heapSysMB := float64(m.HeapSys) / (1024 * 1024)

	ml.output.Log("info", fmt.Sprintf("Memory: HeapAlloc=%.1fMB, HeapInuse=%.1fMB, HeapSys=%.1fMB, NumGC=%d, Line=%d",
		heapAllocMB, heapInuseMB, heapSysMB, m.NumGC, line))
}

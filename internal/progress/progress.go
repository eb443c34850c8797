package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/stellar-clean/pkg/utils"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseCleaning Phase = "cleaning"
	PhaseVacuum   Phase = "vacuum"
	PhaseComplete Phase = "complete"
)

// ScanProgress is published once per measured path
type ScanProgress struct {
	Phase      Phase
	Target     string
	Path       string
	PathsDone  int
	PathsTotal int
	TotalSize  int64
	StartTime  time.Time
}

// CleanProgress is published once per processed path
type CleanProgress struct {
	Phase      Phase
	Target     string
	Path       string
	PathsDone  int
	PathsTotal int
	Failed     int
	StartTime  time.Time
}

// ProgressReporter fans progress updates out to subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the update.
type ProgressReporter struct {
	scanProgress  *ScanProgress
	cleanProgress *CleanProgress
	mu            sync.RWMutex
	listeners     []chan interface{}
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		listeners: make([]chan interface{}, 0),
	}
}

// Subscribe returns a channel that receives *ScanProgress and
// *CleanProgress updates
func (pr *ProgressReporter) Subscribe() <-chan interface{} {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan interface{}, 64)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan interface{}) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScanProgress updates scan progress and notifies listeners
func (pr *ProgressReporter) UpdateScanProgress(update *ScanProgress) {
	pr.mu.Lock()
	pr.scanProgress = update
	pr.mu.Unlock()
	pr.publish(update)
}

// UpdateCleanProgress updates clean progress and notifies listeners
func (pr *ProgressReporter) UpdateCleanProgress(update *CleanProgress) {
	pr.mu.Lock()
	pr.cleanProgress = update
	pr.mu.Unlock()
	pr.publish(update)
}

func (pr *ProgressReporter) publish(update interface{}) {
	// Hold the read lock while sending so Unsubscribe cannot close a
	// channel underneath us.
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	for _, listener := range pr.listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// GetScanProgress returns the latest scan progress
func (pr *ProgressReporter) GetScanProgress() *ScanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.scanProgress
}

// GetCleanProgress returns the latest clean progress
func (pr *ProgressReporter) GetCleanProgress() *CleanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.cleanProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Measuring %s [%d/%d] %s (%s so far)",
			p.Target,
			p.PathsDone,
			p.PathsTotal,
			p.Path,
			utils.HumanSize(p.TotalSize))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d paths (%s) in %s",
			p.PathsDone,
			utils.HumanSize(p.TotalSize),
			FormatDuration(elapsed))
	default:
		return "Scanning..."
	}
}

// FormatCleanProgress returns a human-readable clean progress string
func FormatCleanProgress(p *CleanProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseCleaning:
		percentage := 0
		if p.PathsTotal > 0 {
			percentage = (p.PathsDone * 100) / p.PathsTotal
		}
		return fmt.Sprintf("Cleaning %s [%d/%d] (%d%%) %s",
			p.Target,
			p.PathsDone,
			p.PathsTotal,
			percentage,
			p.Path)
	case PhaseVacuum:
		return "Vacuuming system journal..."
	case PhaseComplete:
		return fmt.Sprintf("Cleanup complete: %d paths, %d failed, in %s",
			p.PathsDone,
			p.Failed,
			FormatDuration(elapsed))
	default:
		return "Preparing cleanup..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/fenilsonani/stellar-clean/internal/progress"
	"github.com/fenilsonani/stellar-clean/internal/ui/styles"
)

// LiveProgress redraws a single status line as progress updates arrive
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	theme      styles.Theme
	termWidth  int
	lastUpdate time.Time
	throttle   time.Duration
	drawn      bool
}

// NewLiveProgress creates a live progress line on out. The width comes from
// the terminal when out is one, 80 columns otherwise.
func NewLiveProgress(out io.Writer) *LiveProgress {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &LiveProgress{
		out:       out,
		theme:     styles.NewTheme(out),
		termWidth: width,
		throttle:  100 * time.Millisecond,
	}
}

// Watch renders updates from ch until it is closed. Run it in its own
// goroutine and call Finish after the channel closes.
func (lp *LiveProgress) Watch(ch <-chan interface{}) {
	for update := range ch {
		switch p := update.(type) {
		case *progress.ScanProgress:
			lp.Update(p.Phase == progress.PhaseComplete, p.PathsDone, p.PathsTotal, progress.FormatScanProgress(p))
		case *progress.CleanProgress:
			lp.Update(p.Phase == progress.PhaseComplete, p.PathsDone, p.PathsTotal, progress.FormatCleanProgress(p))
		}
	}
}

// Update redraws the line. Redraws are throttled to ten per second except
// for the final one.
func (lp *LiveProgress) Update(final bool, done, total int, status string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	if !final && now.Sub(lp.lastUpdate) < lp.throttle {
		return
	}
	lp.lastUpdate = now

	const barWidth = 20
	bar := lp.theme.ProgressBar(done, total, barWidth)
	width := lp.termWidth - barWidth - 3

	fmt.Fprintf(lp.out, "\r\033[K%s %s", bar, truncate(status, width))
	lp.drawn = true
}

// Finish ends the status line
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.drawn {
		fmt.Fprint(lp.out, "\n")
		lp.drawn = false
	}
}

// truncate shortens s to width runes, keeping the tail where paths end
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		if width > 0 && len(r) > width {
			return string(r[:width])
		}
		return s
	}
	return "..." + string(r[len(r)-(width-3):])
}

package board

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Scroll pacing constants. These are part of the board's behavioral
// contract and must not drift.
const (
	scrollStep      = 1
	bottomThreshold = 50

	// DefaultViewportRows is how many table rows the TV layout shows at once.
	DefaultViewportRows = 10
)

// ScrollController paces an auto-advancing viewport over the order table
// and notifies its owner exactly once per cycle when the bottom is reached.
//
// Cycle: reset puts the offset back at the top and re-arms the bottom
// callback; each frame advances the offset by scrollStep until the offset
// crosses maxScroll minus bottomThreshold, at which point the controller
// stops, raises the bottom indicator and fires the callback. With empty
// content nothing moves and nothing fires.
type ScrollController struct {
	clock         clockz.Clock
	frameInterval time.Duration
	onBottom      func()

	mu           sync.Mutex
	contentUnits int
	viewportRows int
	offset       int
	atBottom     bool
	shouldScroll bool
}

// NewScrollController builds a stopped controller. onBottom may be nil.
func NewScrollController(frameInterval time.Duration, viewportRows int, onBottom func()) *ScrollController {
	if viewportRows <= 0 {
		viewportRows = DefaultViewportRows
	}
	return &ScrollController{
		clock:         clockz.RealClock,
		frameInterval: frameInterval,
		viewportRows:  viewportRows,
		onBottom:      onBottom,
	}
}

// WithClock sets a custom clock for testing.
func (c *ScrollController) WithClock(clock clockz.Clock) *ScrollController {
	c.clock = clock
	return c
}

// Start runs the frame loop until ctx is cancelled. One loop serves every
// cycle; Reset re-arms it in place, so two loops never run concurrently.
func (c *ScrollController) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.clock.After(c.frameInterval):
				c.step()
			}
		}
	}()
}

// Reset starts a new scroll cycle over contentUnits rows. Called whenever
// the order list or refresh key changes.
func (c *ScrollController) Reset(contentUnits int) {
	c.mu.Lock()
	c.contentUnits = contentUnits
	c.offset = 0
	c.atBottom = false
	c.shouldScroll = contentUnits > 0
	c.mu.Unlock()
}

// step advances one frame. The bottom callback is invoked outside the lock
// because it re-enters the controller via Reset.
func (c *ScrollController) step() {
	c.mu.Lock()
	if !c.shouldScroll || c.atBottom {
		c.mu.Unlock()
		return
	}
	if c.bottomReachedLocked() {
		cb := c.markBottomLocked()
		c.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}
	c.offset += scrollStep
	c.mu.Unlock()
}

// ReportOffset records a manual scroll position. Reaching the threshold by
// hand behaves exactly like the automatic loop and cannot double-fire.
func (c *ScrollController) ReportOffset(offset int) {
	c.mu.Lock()
	if offset < 0 {
		offset = 0
	}
	c.offset = offset
	if !c.shouldScroll || c.atBottom || !c.bottomReachedLocked() {
		c.mu.Unlock()
		return
	}
	cb := c.markBottomLocked()
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (c *ScrollController) bottomReachedLocked() bool {
	return c.offset >= c.maxScrollLocked()-bottomThreshold
}

func (c *ScrollController) markBottomLocked() func() {
	c.atBottom = true
	c.shouldScroll = false
	return c.onBottom
}

func (c *ScrollController) maxScrollLocked() int {
	max := c.contentUnits - c.viewportRows
	if max < 0 {
		return 0
	}
	return max
}

// Offset returns the current scroll position in row units.
func (c *ScrollController) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// AtBottom reports whether the current cycle has reached the end marker.
func (c *ScrollController) AtBottom() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.atBottom
}

// Window returns the visible slice bounds [start, end) over n rows for the
// current offset.
func (c *ScrollController) Window(n int) (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.offset
	if start > n {
		start = n
	}
	end := start + c.viewportRows
	if end > n {
		end = n
	}
	return start, end
}

package board

import (
	"testing"
	"time"
)

func newTestScroll(onBottom func()) *ScrollController {
	return NewScrollController(time.Millisecond, DefaultViewportRows, onBottom)
}

func TestScrollAdvancesOneUnitPerFrame(t *testing.T) {
	c := newTestScroll(nil)
	c.Reset(200)

	for i := 0; i < 5; i++ {
		c.step()
	}
	if got := c.Offset(); got != 5 {
		t.Fatalf("expected offset 5 after 5 frames, got %d", got)
	}
	if c.AtBottom() {
		t.Fatalf("must not be at bottom mid-scroll")
	}
}

func TestScrollBottomFiresExactlyOncePerCycle(t *testing.T) {
	fired := 0
	c := newTestScroll(func() { fired++ })
	// 100 rows, viewport 10: maxScroll 90, bottom zone starts at 40.
	c.Reset(100)

	for i := 0; i < 40; i++ {
		c.step()
	}
	if c.AtBottom() || fired != 0 {
		t.Fatalf("bottom fired early: offset=%d fired=%d", c.Offset(), fired)
	}

	c.step()
	if !c.AtBottom() || fired != 1 {
		t.Fatalf("expected bottom after crossing threshold: atBottom=%v fired=%d", c.AtBottom(), fired)
	}

	// Further frames at the same position must not re-fire.
	c.step()
	c.step()
	if fired != 1 {
		t.Fatalf("bottom callback re-fired, fired=%d", fired)
	}

	// A new cycle re-arms the callback.
	c.Reset(100)
	if c.Offset() != 0 || c.AtBottom() {
		t.Fatalf("reset must return to top: offset=%d atBottom=%v", c.Offset(), c.AtBottom())
	}
	for i := 0; i <= 41; i++ {
		c.step()
	}
	if fired != 2 {
		t.Fatalf("expected one fire per cycle, fired=%d", fired)
	}
}

func TestManualOffsetReportHitsSameGuard(t *testing.T) {
	fired := 0
	c := newTestScroll(func() { fired++ })
	c.Reset(100)

	c.ReportOffset(39)
	if fired != 0 {
		t.Fatalf("below threshold must not fire")
	}
	c.ReportOffset(45)
	if fired != 1 {
		t.Fatalf("manual report past threshold must fire once, fired=%d", fired)
	}
	c.ReportOffset(46)
	c.step()
	if fired != 1 {
		t.Fatalf("no double fire while at bottom, fired=%d", fired)
	}
}

func TestEmptyContentNeverAnimatesNorFires(t *testing.T) {
	fired := 0
	c := newTestScroll(func() { fired++ })
	c.Reset(0)

	for i := 0; i < 100; i++ {
		c.step()
	}
	if c.Offset() != 0 || c.AtBottom() || fired != 0 {
		t.Fatalf("empty content must stay idle: offset=%d atBottom=%v fired=%d", c.Offset(), c.AtBottom(), fired)
	}
}

func TestWindowBounds(t *testing.T) {
	c := newTestScroll(nil)
	c.Reset(100)

	start, end := c.Window(100)
	if start != 0 || end != 10 {
		t.Fatalf("expected initial window [0,10), got [%d,%d)", start, end)
	}

	for i := 0; i < 20; i++ {
		c.step()
	}
	start, end = c.Window(100)
	if start != 20 || end != 30 {
		t.Fatalf("expected window [20,30) after 20 frames, got [%d,%d)", start, end)
	}

	c.ReportOffset(95)
	start, end = c.Window(100)
	if start != 95 || end != 100 {
		t.Fatalf("window must clamp to row count, got [%d,%d)", start, end)
	}
}

func TestShortContentReachesBottomImmediately(t *testing.T) {
	// With fewer rows than the bottom threshold the very first frame is
	// already inside the bottom zone, mirroring a non-overflowing table.
	fired := 0
	c := newTestScroll(func() { fired++ })
	c.Reset(3)

	c.step()
	if !c.AtBottom() || fired != 1 {
		t.Fatalf("short content should bottom out on first frame: atBottom=%v fired=%d", c.AtBottom(), fired)
	}
}

package telemetry

import (
	"github.com/pthm-cable/landing/panel"
)

// Collector accumulates events within frame windows and produces
// WindowStats. It also keeps every event for events.csv.
type Collector struct {
	windowFrames uint64

	// Current window tracking
	windowStartFrame uint64

	// Event counters for current window
	reveals     int
	opens       int
	closes      int
	fetchFailed int
	wheel       int

	// Clock for event rows, set by the host
	frame  uint64
	atMS   int64
	events []Event
}

var (
	_ panel.Listener        = (*Collector)(nil)
	_ panel.RevealListener  = (*Collector)(nil)
	_ panel.FailureListener = (*Collector)(nil)
)

// NewCollector creates a collector flushing every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: uint64(windowFrames)}
}

// SetClock sets the frame and time stamped on recorded events.
func (c *Collector) SetClock(frame uint64, atMS int64) {
	c.frame = frame
	c.atMS = atMS
}

func (c *Collector) record(t EventType, key panel.Key, detail string) {
	e := NewEvent(c.frame, c.atMS, t, key)
	e.Detail = detail
	c.events = append(c.events, e)
}

// RecordLaunch records the loader launch.
func (c *Collector) RecordLaunch() { c.record(EventLaunch, "", "") }

// RecordLoaded records the is-loaded transition.
func (c *Collector) RecordLoaded() { c.record(EventLoaded, "", "") }

// PanelRevealed records a panel reveal.
func (c *Collector) PanelRevealed(k panel.Key) {
	c.reveals++
	c.record(EventReveal, k, "")
}

// PanelFailed records a failed panel content load.
func (c *Collector) PanelFailed(k panel.Key, err error) {
	c.fetchFailed++
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	c.record(EventFetchFailed, k, detail)
}

// RecordWheel records a wheel input.
func (c *Collector) RecordWheel() { c.wheel++ }

// PanelOpened records an open transition.
func (c *Collector) PanelOpened(k panel.Key) {
	c.opens++
	c.record(EventOpen, k, "")
}

// PanelClosed records a close transition.
func (c *Collector) PanelClosed(k panel.Key) {
	c.closes++
	c.record(EventClose, k, "")
}

// Events returns every recorded event.
func (c *Collector) Events() []Event { return c.events }

// DrainEvents returns and forgets the recorded events.
func (c *Collector) DrainEvents() []Event {
	events := c.events
	c.events = nil
	return events
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame uint64) bool {
	return currentFrame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentFrame uint64, s Sample) WindowStats {
	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		TimeMS:           s.TimeMS,

		Progress:      s.Progress,
		Loaded:        s.Loaded,
		Visible:       s.Visible,
		OpenKey:       s.OpenKey,
		TrailsRunning: s.TrailsRunning,
		TrailVelocity: s.TrailVelocity,
		AnchorsLocked: s.AnchorsLocked,

		Reveals:      c.reveals,
		Opens:        c.opens,
		Closes:       c.closes,
		FetchFailed:  c.fetchFailed,
		WheelEvents:  c.wheel,
		PendingTimer: s.PendingTimers,
	}
	if len(s.Flows) > 0 {
		stats.FlowA = s.Flows[0]
	}
	if len(s.Flows) > 1 {
		stats.FlowB = s.Flows[1]
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.reveals = 0
	c.opens = 0
	c.closes = 0
	c.fetchFailed = 0
	c.wheel = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() uint64 {
	return c.windowFrames
}

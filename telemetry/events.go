// Package telemetry provides frame timing, panel event logging and CSV
// output for runs of the landing experience.
package telemetry

import "github.com/pthm-cable/landing/panel"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventLaunch EventType = iota
	EventLoaded
	EventReveal
	EventOpen
	EventClose
	EventFetchFailed
)

var eventNames = [...]string{"launch", "loaded", "reveal", "open", "close", "fetch_failed"}

// String returns the CSV name of the event type.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Frame  uint64 `csv:"frame"`
	AtMS   int64  `csv:"at_ms"` // since start
	Type   string `csv:"type"`
	Key    string `csv:"key"`
	Detail string `csv:"detail"`
}

// NewEvent creates an event. key may be empty.
func NewEvent(frame uint64, atMS int64, t EventType, key panel.Key) Event {
	return Event{Frame: frame, AtMS: atMS, Type: t.String(), Key: string(key)}
}

// Package frame provides a cooperative, frame-synchronized scheduler.
//
// Everything registered with a Scheduler runs on the goroutine that calls
// Frame, once per display refresh. Loops are self-rescheduling units of
// work with an explicit Start/Stop contract; timers fire on the frame clock;
// Post hands work from other goroutines back onto the frame goroutine.
package frame

import (
	"sort"
	"sync"
	"time"
)

// Ticker is one per-frame unit of work.
// Tick reports whether the loop wants to run again next frame; returning
// false stops the loop, which is how self-terminating loops end.
type Ticker interface {
	Tick(now time.Time) bool
}

// TickerFunc adapts a function to the Ticker interface.
type TickerFunc func(now time.Time) bool

// Tick calls f(now).
func (f TickerFunc) Tick(now time.Time) bool { return f(now) }

// Observer receives per-frame timing boundaries. telemetry.PerfCollector
// satisfies it.
type Observer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// Loop is a named, restartable per-frame loop.
// A loop is either running or not; starting a running loop is a no-op, so
// there is never more than one live instance of the same loop.
type Loop struct {
	name    string
	ticker  Ticker
	running bool
	ticks   uint64
}

// Name returns the loop name used for telemetry phases.
func (l *Loop) Name() string { return l.name }

// Start schedules the loop from the next frame on.
func (l *Loop) Start() { l.running = true }

// Stop cancels the loop. If called during a frame before the loop has
// ticked, the loop does not tick in that frame either.
func (l *Loop) Stop() { l.running = false }

// Running reports whether the loop is scheduled.
func (l *Loop) Running() bool { return l.running }

// Ticks returns how many times the loop has ticked.
func (l *Loop) Ticks() uint64 { return l.ticks }

type timer struct {
	at  time.Time
	seq uint64
	fn  func()
}

// Scheduler drives loops, timers and posted callbacks once per frame.
type Scheduler struct {
	now    time.Time
	loops  []*Loop
	timers []timer
	seq    uint64

	mu     sync.Mutex
	posted []func()

	observer Observer
	frames   uint64
}

// New creates a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// SetObserver attaches a timing observer (nil detaches).
func (s *Scheduler) SetObserver(o Observer) {
	s.observer = o
}

// Now returns the time of the current (or last) frame.
func (s *Scheduler) Now() time.Time { return s.now }

// Frames returns the number of frames run so far.
func (s *Scheduler) Frames() uint64 { return s.frames }

// Loop registers a stopped loop. Loops tick in registration order.
func (s *Scheduler) Loop(name string, t Ticker) *Loop {
	l := &Loop{name: name, ticker: t}
	s.loops = append(s.loops, l)
	return l
}

// After schedules fn to run on the first frame at or after now+d.
// Timers with the same due time fire in scheduling order.
func (s *Scheduler) After(d time.Duration, fn func()) {
	s.seq++
	s.timers = append(s.timers, timer{at: s.now.Add(d), seq: s.seq, fn: fn})
}

// Pending returns the number of timers not yet fired.
func (s *Scheduler) Pending() int { return len(s.timers) }

// Post queues fn to run at the start of the next frame. Safe to call from
// any goroutine.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// Frame advances the clock to now and runs, in order: posted callbacks,
// due timers, running loops.
func (s *Scheduler) Frame(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}
	s.frames++

	if s.observer != nil {
		s.observer.StartTick()
		s.observer.StartPhase("posted")
	}
	s.drainPosted()

	if s.observer != nil {
		s.observer.StartPhase("timers")
	}
	s.fireTimers()

	for _, l := range s.loops {
		if !l.running {
			continue
		}
		if s.observer != nil {
			s.observer.StartPhase(l.name)
		}
		l.ticks++
		if !l.ticker.Tick(s.now) {
			l.running = false
		}
	}

	if s.observer != nil {
		s.observer.EndTick()
	}
}

func (s *Scheduler) drainPosted() {
	s.mu.Lock()
	posted := s.posted
	s.posted = nil
	s.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
}

// fireTimers runs every timer due at the current frame time, including
// timers scheduled by other timers with zero delay.
func (s *Scheduler) fireTimers() {
	for {
		due := s.takeDue()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn()
		}
	}
}

func (s *Scheduler) takeDue() []timer {
	var due []timer
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.at.After(s.now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	// Zero the tail so fired closures can be collected
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = timer{}
	}
	s.timers = kept

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due
}

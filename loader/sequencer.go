package loader

import (
	"log/slog"
	"time"
)

// View displays loader progress.
type View interface {
	SetProgress(percent int)
}

// LaunchFunc is called once when the sequencer launches. delay is the
// configured launch-to-loaded transition time.
type LaunchFunc func(delay time.Duration)

// Sequencer owns the loader state and drives it once per frame.
type Sequencer struct {
	state    State
	params   Params
	view     View
	onLaunch LaunchFunc
	logger   *slog.Logger
}

// NewSequencer creates a sequencer started at start and renders 0.
// view may be nil.
func NewSequencer(start time.Time, params Params, view View, onLaunch LaunchFunc, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sequencer{
		state:    NewState(start),
		params:   params,
		view:     view,
		onLaunch: onLaunch,
		logger:   logger,
	}
	s.render(0)
	return s
}

// State returns a copy of the current state.
func (s *Sequencer) State() State { return s.state }

// OnProgress handles a resource progress event.
func (s *Sequencer) OnProgress(g Group) {
	s.state = s.state.OnProgress(g)
}

// OnResourcesEnd handles the resource end event.
func (s *Sequencer) OnResourcesEnd() {
	s.state = s.state.OnResourcesEnd()
	s.logger.Debug("resources ready", "progress", s.state.Target)
}

// Tick runs one frame. It returns false after launch, ending the loop.
func (s *Sequencer) Tick(now time.Time) bool {
	next, effects, again := s.state.Step(now, s.params)
	s.state = next

	for _, e := range effects {
		switch e := e.(type) {
		case Render:
			s.render(e.Percent)
		case Launch:
			s.logger.Info("launch", "elapsed", now.Sub(s.state.StartTime))
			if s.onLaunch != nil {
				s.onLaunch(e.Delay)
			}
		}
	}
	return again
}

func (s *Sequencer) render(percent int) {
	if s.view != nil {
		s.view.SetProgress(percent)
	}
}

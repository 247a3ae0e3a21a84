// Package loader implements the progress sequencer that gates the launch
// of the landing experience on resource loading.
//
// State transitions are pure: OnProgress, OnResourcesEnd and Step return a
// new State, and Step also returns the effects the caller must apply.
// Sequencer wraps the state as a frame ticker and applies effects to a View.
package loader

import (
	"math"
	"time"

	"github.com/pthm-cable/landing/config"
)

// Group is the payload of a resource progress event.
type Group struct {
	Loaded int
	ToLoad int
}

// Params holds the smoothing and launch-gating constants.
type Params struct {
	Smoothing       float64
	SnapEpsilon     float64
	LaunchThreshold float64
	MinDuration     time.Duration
	LoadedDelay     time.Duration
}

// ParamsFromConfig extracts sequencer parameters from the loader config.
func ParamsFromConfig(cfg config.LoaderConfig) Params {
	return Params{
		Smoothing:       cfg.Smoothing,
		SnapEpsilon:     cfg.SnapEpsilon,
		LaunchThreshold: cfg.LaunchThreshold,
		MinDuration:     cfg.MinDuration,
		LoadedDelay:     cfg.LoadedDelay,
	}
}

// DefaultParams returns the stock loader timings.
func DefaultParams() Params {
	return Params{
		Smoothing:       0.12,
		SnapEpsilon:     0.03,
		LaunchThreshold: 99.7,
		MinDuration:     1400 * time.Millisecond,
		LoadedDelay:     220 * time.Millisecond,
	}
}

// State is the loader state. LaunchStarted is a one-shot latch.
type State struct {
	Displayed      float64
	Target         float64
	ResourcesReady bool
	LaunchStarted  bool
	StartTime      time.Time
}

// NewState creates the state at page load.
func NewState(start time.Time) State {
	return State{StartTime: start}
}

// OnProgress raises the target to the loaded fraction. The target never
// decreases; events with nothing to load are ignored.
func (s State) OnProgress(g Group) State {
	if g.ToLoad <= 0 {
		return s
	}
	progress := float64(g.Loaded) / float64(g.ToLoad) * 100
	s.Target = math.Max(s.Target, progress)
	return s
}

// OnResourcesEnd records that every resource has loaded.
func (s State) OnResourcesEnd() State {
	s.Target = 100
	s.ResourcesReady = true
	return s
}

// CanLaunch reports whether all three launch gates hold at now.
func (s State) CanLaunch(now time.Time, p Params) bool {
	return s.ResourcesReady &&
		now.Sub(s.StartTime) >= p.MinDuration &&
		s.Displayed >= p.LaunchThreshold
}

// Effect is an intent produced by Step.
type Effect interface {
	isEffect()
}

// Render asks the view to display a percentage.
type Render struct {
	Percent int
}

// Launch fires once; the page becomes loaded after Delay.
type Launch struct {
	Delay time.Duration
}

func (Render) isEffect() {}
func (Launch) isEffect() {}

// Step advances one frame. The returned bool is false once the sequencer
// has launched and no further frames are needed.
func (s State) Step(now time.Time, p Params) (State, []Effect, bool) {
	if s.LaunchStarted {
		return s, nil, false
	}

	delta := s.Target - s.Displayed
	s.Displayed += delta * p.Smoothing
	if math.Abs(delta) < p.SnapEpsilon {
		s.Displayed = s.Target
	}

	effects := []Effect{Render{Percent: Percent(s.Displayed)}}

	if s.CanLaunch(now, p) {
		s.LaunchStarted = true
		s.Displayed = 100
		effects = append(effects, Render{Percent: 100}, Launch{Delay: p.LoadedDelay})
		return s, effects, false
	}

	return s, effects, true
}

// Percent rounds and clamps a progress value for display.
func Percent(progress float64) int {
	return int(math.Max(0, math.Min(100, math.Round(progress))))
}

// Package trail animates decorative model instances along two scroll-driven
// Bezier paths.
package trail

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/landing/components"
	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/frame"
	"github.com/pthm-cable/landing/geom"
	"github.com/pthm-cable/landing/panel"
)

// LoopName is the frame loop name, also used as the telemetry phase.
const LoopName = "trails"

// Path describes one trail.
type Path struct {
	Name         string
	Curve        geom.Bezier
	Count        int
	Distribution geom.Distribution
	Direction    float64 // sign applied to the shared velocity
}

// PathsFromConfig converts and validates the configured paths.
func PathsFromConfig(cfg []config.PathConfig) ([]Path, error) {
	paths := make([]Path, 0, len(cfg))
	for _, pc := range cfg {
		dist, ok := geom.ParseDistribution(pc.Distribution)
		if !ok {
			return nil, fmt.Errorf("trail %q: unknown distribution %q", pc.Name, pc.Distribution)
		}
		dir := 1.0
		if pc.Direction < 0 {
			dir = -1
		}
		paths = append(paths, Path{
			Name:         pc.Name,
			Curve:        geom.BezierFrom(pc.Points),
			Count:        pc.Count,
			Distribution: dist,
			Direction:    dir,
		})
	}
	return paths, nil
}

// Params tune the flow and the instance randomization.
type Params struct {
	Friction    float64
	WheelScale  float64
	MaxVelocity float64
	BaseScale   float64
	ScaleJitter float64
	SpinMin     float64
	SpinMax     float64
	ViewHeight  float64
}

// ParamsFromConfig converts the trails config.
func ParamsFromConfig(cfg config.TrailsConfig) Params {
	return Params{
		Friction:    cfg.Friction,
		WheelScale:  cfg.WheelScale,
		MaxVelocity: cfg.MaxVelocity,
		BaseScale:   cfg.BaseScale,
		ScaleJitter: cfg.ScaleJitter,
		SpinMin:     cfg.SpinMin,
		SpinMax:     cfg.SpinMax,
		ViewHeight:  cfg.ViewHeight,
	}
}

// Trail is the run state of one path.
type Trail struct {
	Path  Path
	Flow  float64 // in [0, 1)
	Frame geom.Frame
}

// Instance is a render snapshot of one trail instance.
type Instance struct {
	Trail    int
	Position geom.Transform
}

// System owns the trail instances and the shared scroll velocity.
// It runs as a frame loop only while a panel is open.
type System struct {
	params   Params
	trails   []*Trail
	velocity float64
	viewW    int
	viewH    int

	world  *ecs.World
	mapper *ecs.Map5[components.PathPos, components.Spin, components.Scale, components.Orientation, components.Placement]
	filter *ecs.Filter5[components.PathPos, components.Spin, components.Scale, components.Orientation, components.Placement]

	loop   *frame.Loop
	logger *slog.Logger
}

var _ panel.Listener = (*System)(nil)

// New spawns every instance and registers the (stopped) trails loop.
func New(sched *frame.Scheduler, params Params, paths []Path, width, height int, rng *rand.Rand, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	world := ecs.NewWorld()
	s := &System{
		params: params,
		viewW:  width,
		viewH:  height,
		world:  world,
		mapper: ecs.NewMap5[components.PathPos, components.Spin, components.Scale, components.Orientation, components.Placement](world),
		filter: ecs.NewFilter5[components.PathPos, components.Spin, components.Scale, components.Orientation, components.Placement](world),
		logger: logger,
	}

	aspect := aspectOf(width, height)
	for i, p := range paths {
		s.trails = append(s.trails, &Trail{
			Path:  p,
			Frame: geom.Frame{Aspect: aspect, Height: params.ViewHeight},
		})
		s.spawn(i, p, rng)
	}
	s.place()

	s.loop = sched.Loop(LoopName, s)
	return s
}

func (s *System) spawn(trail int, p Path, rng *rand.Rand) {
	for i := 0; i < p.Count; i++ {
		pos := components.PathPos{Trail: trail, T: p.Distribution.Position(i, p.Count)}
		spin := components.Spin{
			X: s.spinRate(rng),
			Y: s.spinRate(rng),
			Z: s.spinRate(rng),
		}
		scale := components.Scale{S: s.params.BaseScale * (1 + s.params.ScaleJitter*(2*rng.Float64()-1))}
		orient := components.Orientation{
			X: rng.Float64() * 2 * math.Pi,
			Y: rng.Float64() * 2 * math.Pi,
			Z: rng.Float64() * 2 * math.Pi,
		}
		placement := components.Placement{}
		s.mapper.NewEntity(&pos, &spin, &scale, &orient, &placement)
	}
}

// spinRate draws a rate in [SpinMin, SpinMax] with a random sign.
func (s *System) spinRate(rng *rand.Rand) float64 {
	r := s.params.SpinMin + rng.Float64()*(s.params.SpinMax-s.params.SpinMin)
	if rng.Intn(2) == 0 {
		r = -r
	}
	return r
}

// Loop returns the trails frame loop.
func (s *System) Loop() *frame.Loop { return s.loop }

// Running reports whether the trails loop is scheduled.
func (s *System) Running() bool { return s.loop.Running() }

// Trails returns the per-path run state.
func (s *System) Trails() []*Trail { return s.trails }

// Velocity returns the shared scroll velocity.
func (s *System) Velocity() float64 { return s.velocity }

// PanelOpened starts the loop.
func (s *System) PanelOpened(panel.Key) {
	if !s.loop.Running() {
		s.logger.Debug("trails started")
	}
	s.loop.Start()
}

// PanelClosed stops the loop.
func (s *System) PanelClosed(panel.Key) {
	if s.loop.Running() {
		s.logger.Debug("trails stopped")
	}
	s.loop.Stop()
}

// OnWheel adds a scroll delta to the shared velocity.
func (s *System) OnWheel(delta float64) {
	v := s.velocity + delta*s.params.WheelScale
	s.velocity = math.Max(-s.params.MaxVelocity, math.Min(s.params.MaxVelocity, v))
}

// Resize updates the viewport and both trail frames.
func (s *System) Resize(width, height int) {
	s.viewW, s.viewH = width, height
	aspect := aspectOf(width, height)
	for _, t := range s.trails {
		t.Frame.Aspect = aspect
	}
	s.place()
}

// Viewport returns the last known viewport size in pixels.
func (s *System) Viewport() (int, int) { return s.viewW, s.viewH }

// Tick advances the flow by one frame. It always keeps running; the loop
// is stopped from PanelClosed.
func (s *System) Tick(time.Time) bool {
	s.velocity *= s.params.Friction
	for _, t := range s.trails {
		t.Flow = geom.Wrap01(t.Flow + t.Path.Direction*s.velocity)
	}

	query := s.filter.Query()
	for query.Next() {
		pos, spin, _, orient, placement := query.Get()
		orient.Advance(*spin)
		placement.Pos = s.positionOf(*pos)
	}
	return true
}

// place recomputes every placement without advancing rotation.
func (s *System) place() {
	query := s.filter.Query()
	for query.Next() {
		pos, _, _, _, placement := query.Get()
		placement.Pos = s.positionOf(*pos)
	}
}

func (s *System) positionOf(pos components.PathPos) r3.Vec {
	t := s.trails[pos.Trail]
	p := geom.Wrap01(pos.T + t.Flow)
	return t.Frame.ToWorld(t.Path.Curve.At(p))
}

// Instances returns a snapshot of every instance for rendering.
func (s *System) Instances() []Instance {
	out := make([]Instance, 0, s.Count())
	query := s.filter.Query()
	for query.Next() {
		pos, _, scale, orient, placement := query.Get()
		out = append(out, Instance{
			Trail: pos.Trail,
			Position: geom.Transform{
				Position: placement.Pos,
				Rotation: orient.Euler(),
				Scale:    scale.S,
			},
		})
	}
	return out
}

// Count returns the number of instances.
func (s *System) Count() int {
	n := 0
	for _, t := range s.trails {
		n += t.Path.Count
	}
	return n
}

func aspectOf(width, height int) float64 {
	if height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}

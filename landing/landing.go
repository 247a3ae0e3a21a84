// Package landing wires the sequencer, anchor projector, panel
// orchestrator, trails and the stand-in world into one experience driven
// by a frame scheduler.
package landing

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/dom"
	"github.com/pthm-cable/landing/frame"
	"github.com/pthm-cable/landing/geom"
	"github.com/pthm-cable/landing/loader"
	"github.com/pthm-cable/landing/panel"
	"github.com/pthm-cable/landing/scene"
	"github.com/pthm-cable/landing/telemetry"
	"github.com/pthm-cable/landing/trail"
)

// Loop names. Loops tick in registration order.
const (
	LoopScene   = telemetry.PhaseScene
	LoopLoader  = telemetry.PhaseLoader
	LoopAnchors = telemetry.PhaseAnchors
	LoopTrails  = telemetry.PhaseTrails
)

// Options configure an Experience.
type Options struct {
	Start     time.Time
	Seed      int64
	OutputDir string
	LogStats  bool
	Fetcher   panel.Fetcher
	Logger    *slog.Logger
}

// Experience is the running landing page.
type Experience struct {
	cfg    *config.Config
	start  time.Time
	sched  *frame.Scheduler
	logger *slog.Logger

	doc       *dom.Document
	world     *scene.World
	resources *scene.Resources
	sequencer *loader.Sequencer
	projector *anchor.Projector
	panels    *panel.Orchestrator
	trails    *trail.System
	model     geom.Model

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool

	launched bool
}

// New builds the experience and schedules resource loading. The first
// frame should be run at or after opts.Start.
func New(cfg *config.Config, opts Options) (*Experience, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	paths, err := trail.PathsFromConfig(cfg.Trails.Paths)
	if err != nil {
		output.Close()
		return nil, err
	}

	w, h := cfg.Screen.Width, cfg.Screen.Height
	sched := frame.New(start)
	e := &Experience{
		cfg:       cfg,
		start:     start,
		sched:     sched,
		logger:    logger,
		model:     geom.BuildModel(geom.DimensionsFromConfig(cfg.Geometry)),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow, telemetry.BudgetForFPS(cfg.Screen.TargetFPS)),
		collector: telemetry.NewCollector(cfg.Telemetry.FlushFrames),
		output:    output,
		logStats:  opts.LogStats,
	}
	sched.SetObserver(e.perf)

	keys := revealKeys(cfg.Panels.RevealOrder)
	collapsed := make(map[panel.Key]string, len(keys))
	for _, k := range keys {
		collapsed[k] = cfg.Panels.Collapsed[string(k)]
	}
	e.doc = dom.New(dom.DefaultLayout(), w, h, keys, collapsed)

	// World
	e.world = scene.New(scene.ParamsFromConfig(cfg.Scene), w, h, logger.With("component", "scene"))
	sched.Loop(LoopScene, e.world).Start()

	// Loader
	e.sequencer = loader.NewSequencer(start, loader.ParamsFromConfig(cfg.Loader), e.doc, e.onLaunch, logger.With("component", "loader"))
	sched.Loop(LoopLoader, e.sequencer).Start()

	e.resources = scene.NewResources(scene.AssetsFromConfig(cfg.Scene.Assets), logger.With("component", "resources"))
	e.resources.Subscribe(e.world)
	e.resources.Subscribe(e.sequencer)

	// Anchors
	e.projector = anchor.NewProjector(e.world, float64(w), float64(h), logger.With("component", "anchors"))
	for key, entry := range cfg.Anchors.Entries {
		card, ok := e.doc.Card(panel.Key(key))
		if !ok {
			logger.Warn("anchor without card", "key", key)
			continue
		}
		line, _ := e.doc.Line(panel.Key(key))
		e.projector.Add(key, anchor.SpecFromConfig(entry), card, line)
	}
	sched.Loop(LoopAnchors, e.projector).Start()
	sched.After(cfg.Anchors.StartupDelay, e.projector.Update)

	// Panels
	cards := make(map[panel.Key]panel.Card, len(keys))
	for _, k := range keys {
		card, _ := e.doc.Card(k)
		cards[k] = card
	}
	popts := panel.OptionsFromConfig(cfg)
	e.panels = panel.New(popts, cards, panel.Deps{
		Document:  e.doc,
		Controls:  e.world.Controls(),
		Fetcher:   opts.Fetcher,
		Scheduler: sched,
		Logger:    logger.With("component", "panels"),
	})

	// Trails
	rng := rand.New(rand.NewSource(opts.Seed))
	e.trails = trail.New(sched, trail.ParamsFromConfig(cfg.Trails), paths, w, h, rng, logger.With("component", "trails"))

	e.panels.AddListener(e.trails)
	e.panels.AddListener(e.collector)

	e.resources.Start(sched)
	return e, nil
}

func revealKeys(order []string) []panel.Key {
	if len(order) == 0 {
		return panel.RevealOrder
	}
	keys := make([]panel.Key, len(order))
	for i, k := range order {
		keys[i] = panel.Key(k)
	}
	return keys
}

// onLaunch runs once when the loader launches.
func (e *Experience) onLaunch(delay time.Duration) {
	e.launched = true
	e.collector.RecordLaunch()
	e.sched.After(delay, func() {
		e.doc.MarkLoaded()
		e.collector.RecordLoaded()
		e.logger.Info("loaded", "elapsed", e.sched.Now().Sub(e.start))
		e.panels.StartReveal()
	})
}

// Frame runs one display frame at now.
func (e *Experience) Frame(now time.Time) {
	e.collector.SetClock(e.sched.Frames()+1, now.Sub(e.start).Milliseconds())
	e.sched.Frame(now)
	e.flushTelemetry()
}

// Run drives frames at a fixed step, as the headless host does.
func (e *Experience) Run(frames int, step time.Duration) {
	now := e.sched.Now()
	for i := 0; i < frames; i++ {
		now = now.Add(step)
		e.Frame(now)
	}
}

// Close flushes pending telemetry and closes output files.
func (e *Experience) Close() error {
	if err := e.output.WriteEvents(e.collector.DrainEvents()); err != nil {
		e.logger.Error("failed to write events", "error", err)
	}
	return e.output.Close()
}

// Scheduler returns the frame scheduler.
func (e *Experience) Scheduler() *frame.Scheduler { return e.sched }

// Document returns the document model.
func (e *Experience) Document() *dom.Document { return e.doc }

// World returns the stand-in 3D world.
func (e *Experience) World() *scene.World { return e.world }

// Panels returns the panel orchestrator.
func (e *Experience) Panels() *panel.Orchestrator { return e.panels }

// Trails returns the trail system.
func (e *Experience) Trails() *trail.System { return e.trails }

// Projector returns the anchor projector.
func (e *Experience) Projector() *anchor.Projector { return e.projector }

// Sequencer returns the progress sequencer.
func (e *Experience) Sequencer() *loader.Sequencer { return e.sequencer }

// Model returns the branching model shared by the badge and the trails.
func (e *Experience) Model() geom.Model { return e.model }

// Perf returns the frame timing collector.
func (e *Experience) Perf() *telemetry.PerfCollector { return e.perf }

// Collector returns the telemetry event collector.
func (e *Experience) Collector() *telemetry.Collector { return e.collector }

// Launched reports whether the loader has launched.
func (e *Experience) Launched() bool { return e.launched }

// Config returns the configuration in use.
func (e *Experience) Config() *config.Config { return e.cfg }

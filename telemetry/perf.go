package telemetry

import (
	"log/slog"
	"time"
)

// Phase names of one frame. The loop phases match the frame loop names.
const (
	PhasePosted  = "posted"
	PhaseTimers  = "timers"
	PhaseLoader  = "loader"
	PhaseAnchors = "anchors"
	PhaseScene   = "scene"
	PhaseTrails  = "trails"
	PhaseRender  = "render"
)

// Phases lists every phase in frame order.
var Phases = []string{
	PhasePosted, PhaseTimers, PhaseLoader, PhaseAnchors,
	PhaseScene, PhaseTrails, PhaseRender,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	Work       time.Duration // time spent inside the frame
	Interval   time.Duration // start-to-start time since the previous frame
	OverBudget bool
	Phases     map[string]time.Duration
}

// PerfCollector tracks frame timing over a rolling window against a frame
// budget. It satisfies frame.Observer.
type PerfCollector struct {
	budget  time.Duration
	now     func() time.Time
	samples []PerfSample
	next    int
	count   int

	frameStart time.Time
	prevStart  time.Time
	phaseStart time.Time
	phase      string
	phases     map[string]time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
// budget is the per-frame time allowance; zero disables budget tracking.
func NewPerfCollector(windowSize int, budget time.Duration) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		budget:  budget,
		now:     time.Now,
		samples: make([]PerfSample, windowSize),
		phases:  make(map[string]time.Duration),
	}
}

// BudgetForFPS returns the frame budget for a target frame rate.
func BudgetForFPS(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

// SetClock replaces the wall clock, for tests.
func (p *PerfCollector) SetClock(now func() time.Time) { p.now = now }

// Budget returns the per-frame budget.
func (p *PerfCollector) Budget() time.Duration { return p.budget }

// StartTick begins timing a frame.
func (p *PerfCollector) StartTick() {
	p.prevStart = p.frameStart
	p.frameStart = p.now()
	p.phases = make(map[string]time.Duration)
	p.phase = ""
}

// StartPhase closes the running phase and opens the next one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick finishes the frame and records its sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.phase = ""

	s := PerfSample{
		Work:   now.Sub(p.frameStart),
		Phases: p.phases,
	}
	if !p.prevStart.IsZero() {
		s.Interval = p.frameStart.Sub(p.prevStart)
	}
	s.OverBudget = p.budget > 0 && s.Work > p.budget

	p.samples[p.next] = s
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// PerfStats holds aggregated frame timing over the window.
type PerfStats struct {
	Frames int

	AvgWork time.Duration
	MinWork time.Duration
	MaxWork time.Duration

	// Average duration and share of work per phase.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	// Frame pacing from start-to-start intervals.
	AvgInterval time.Duration
	FPS         float64

	Budget     time.Duration
	BudgetPct  float64 // AvgWork as a percentage of Budget
	OverBudget int     // frames whose work exceeded Budget
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		Frames:   p.count,
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
		Budget:   p.budget,
	}
	if p.count == 0 {
		return stats
	}

	var work, interval time.Duration
	intervals := 0
	phaseSum := make(map[string]time.Duration)
	for i, s := range p.samples[:p.count] {
		work += s.Work
		if i == 0 || s.Work < stats.MinWork {
			stats.MinWork = s.Work
		}
		stats.MaxWork = max(stats.MaxWork, s.Work)
		if s.Interval > 0 {
			interval += s.Interval
			intervals++
		}
		if s.OverBudget {
			stats.OverBudget++
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	n := time.Duration(p.count)
	stats.AvgWork = work / n
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / n
		if stats.AvgWork > 0 {
			stats.PhasePct[phase] = float64(stats.PhaseAvg[phase]) / float64(stats.AvgWork) * 100
		}
	}
	if intervals > 0 {
		stats.AvgInterval = interval / time.Duration(intervals)
		stats.FPS = float64(time.Second) / float64(stats.AvgInterval)
	}
	if p.budget > 0 {
		stats.BudgetPct = float64(stats.AvgWork) / float64(p.budget) * 100
	}
	return stats
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_work_us", s.AvgWork.Microseconds()),
		slog.Int64("max_work_us", s.MaxWork.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	if s.Budget > 0 {
		attrs = append(attrs,
			slog.Float64("budget_pct", float64(int(s.BudgetPct*10))/10),
			slog.Int("over_budget", s.OverBudget),
		)
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd  uint64  `csv:"window_end"`
	AvgWorkUS  int64   `csv:"avg_work_us"`
	MinWorkUS  int64   `csv:"min_work_us"`
	MaxWorkUS  int64   `csv:"max_work_us"`
	FPS        float64 `csv:"fps"`
	BudgetPct  float64 `csv:"budget_pct"`
	OverBudget int     `csv:"over_budget"`
	PostedPct  float64 `csv:"posted_pct"`
	TimersPct  float64 `csv:"timers_pct"`
	LoaderPct  float64 `csv:"loader_pct"`
	AnchorsPct float64 `csv:"anchors_pct"`
	ScenePct   float64 `csv:"scene_pct"`
	TrailsPct  float64 `csv:"trails_pct"`
	RenderPct  float64 `csv:"render_pct"`
}

// ToCSV converts PerfStats to a flat CSV row for the window ending at
// frame windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:  windowEnd,
		AvgWorkUS:  s.AvgWork.Microseconds(),
		MinWorkUS:  s.MinWork.Microseconds(),
		MaxWorkUS:  s.MaxWork.Microseconds(),
		FPS:        s.FPS,
		BudgetPct:  s.BudgetPct,
		OverBudget: s.OverBudget,
		PostedPct:  s.PhasePct[PhasePosted],
		TimersPct:  s.PhasePct[PhaseTimers],
		LoaderPct:  s.PhasePct[PhaseLoader],
		AnchorsPct: s.PhasePct[PhaseAnchors],
		ScenePct:   s.PhasePct[PhaseScene],
		TrailsPct:  s.PhasePct[PhaseTrails],
		RenderPct:  s.PhasePct[PhaseRender],
	}
}

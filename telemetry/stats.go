package telemetry

import "log/slog"

// WindowStats is one frames.csv row: state sampled at window end plus
// event counts during the window.
type WindowStats struct {
	WindowStartFrame uint64 `csv:"-"`
	WindowEndFrame   uint64 `csv:"window_end"`
	TimeMS           int64  `csv:"time_ms"`

	// Sampled at window end
	Progress      int     `csv:"progress"`
	Loaded        bool    `csv:"loaded"`
	Visible       int     `csv:"visible_panels"`
	OpenKey       string  `csv:"open_key"`
	TrailsRunning bool    `csv:"trails_running"`
	TrailVelocity float64 `csv:"trail_velocity"`
	FlowA         float64 `csv:"flow_a"`
	FlowB         float64 `csv:"flow_b"`
	AnchorsLocked bool    `csv:"anchors_locked"`

	// Events during window
	Reveals      int `csv:"reveals"`
	Opens        int `csv:"opens"`
	Closes       int `csv:"closes"`
	FetchFailed  int `csv:"fetch_failed"`
	WheelEvents  int `csv:"wheel_events"`
	PendingTimer int `csv:"pending_timers"`
}

// Sample is the state the caller samples at window end.
type Sample struct {
	TimeMS        int64
	Progress      int
	Loaded        bool
	Visible       int
	OpenKey       string
	TrailsRunning bool
	TrailVelocity float64
	Flows         []float64
	AnchorsLocked bool
	PendingTimers int
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frame", s.WindowEndFrame),
		slog.Int("progress", s.Progress),
		slog.Bool("loaded", s.Loaded),
		slog.Int("visible", s.Visible),
		slog.String("open", s.OpenKey),
		slog.Bool("trails", s.TrailsRunning),
		slog.Int("opens", s.Opens),
		slog.Int("fetch_failed", s.FetchFailed),
	)
}

package landing

import (
	"github.com/pthm-cable/landing/dom"
	"github.com/pthm-cable/landing/loader"
	"github.com/pthm-cable/landing/panel"
	"github.com/pthm-cable/landing/telemetry"
)

// flushTelemetry checks if the stats window should be flushed.
func (e *Experience) flushTelemetry() {
	frame := e.sched.Frames()
	if !e.collector.ShouldFlush(frame) {
		return
	}

	stats := e.collector.Flush(frame, e.sample())
	perfStats := e.perf.Stats()

	if e.logStats {
		e.logger.Info("frames", "stats", stats)
		perfStats.LogStats(e.logger)
	}

	// Nil output manager methods are no-ops
	if err := e.output.WriteFrames(stats); err != nil {
		e.logger.Error("failed to write frames", "error", err)
	}
	if err := e.output.WritePerf(perfStats, frame); err != nil {
		e.logger.Error("failed to write perf", "error", err)
	}
	if err := e.output.WriteEvents(e.collector.DrainEvents()); err != nil {
		e.logger.Error("failed to write events", "error", err)
	}
}

// sample reads the state recorded at the end of a window.
func (e *Experience) sample() telemetry.Sample {
	s := telemetry.Sample{
		TimeMS:        e.sched.Now().Sub(e.start).Milliseconds(),
		Progress:      loader.Percent(e.sequencer.State().Displayed),
		Loaded:        e.doc.HasClass(dom.ClassLoaded),
		TrailsRunning: e.trails.Running(),
		TrailVelocity: e.trails.Velocity(),
		AnchorsLocked: e.projector.Locked(),
		PendingTimers: e.sched.Pending(),
	}
	for _, k := range e.doc.Keys() {
		if e.panels.Phase(k) != panel.Hidden {
			s.Visible++
		}
	}
	if k, ok := e.panels.Expanded(); ok {
		s.OpenKey = string(k)
	}
	for _, t := range e.trails.Trails() {
		s.Flows = append(s.Flows, t.Flow)
	}
	return s
}

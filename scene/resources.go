package scene

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/loader"
)

// ProgressListener receives resource events. *loader.Sequencer satisfies it.
type ProgressListener interface {
	OnProgress(g loader.Group)
	OnResourcesEnd()
}

// Scheduler runs callbacks on the frame clock.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Asset is one simulated resource load.
type Asset struct {
	Name     string
	Duration time.Duration
}

// AssetsFromConfig converts the configured assets.
func AssetsFromConfig(cfg []config.AssetConfig) []Asset {
	assets := make([]Asset, len(cfg))
	for i, a := range cfg {
		assets[i] = Asset{Name: a.Name, Duration: a.Duration}
	}
	return assets
}

// Resources loads assets one after another on the frame clock and reports
// progress to its listeners.
type Resources struct {
	assets    []Asset
	loaded    int
	done      bool
	listeners []ProgressListener
	logger    *slog.Logger
}

// NewResources creates a loader for assets.
func NewResources(assets []Asset, logger *slog.Logger) *Resources {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resources{assets: assets, logger: logger}
}

// Subscribe registers a listener. Listeners are notified in order.
func (r *Resources) Subscribe(l ProgressListener) {
	r.listeners = append(r.listeners, l)
}

// Loaded returns how many assets have finished.
func (r *Resources) Loaded() int { return r.loaded }

// Done reports whether the end event has fired.
func (r *Resources) Done() bool { return r.done }

// Start schedules every asset load. With no assets the end event fires on
// the next frame.
func (r *Resources) Start(sched Scheduler) {
	n := len(r.assets)
	r.emitProgress(loader.Group{Loaded: 0, ToLoad: n})

	var at time.Duration
	for i, a := range r.assets {
		at += a.Duration
		sched.After(at, func() {
			r.loaded = i + 1
			r.logger.Debug("asset loaded", "asset", a.Name, "loaded", r.loaded, "total", n)
			r.emitProgress(loader.Group{Loaded: r.loaded, ToLoad: n})
		})
	}
	sched.After(at, func() {
		r.done = true
		r.logger.Info("resources loaded", "assets", n)
		for _, l := range r.listeners {
			l.OnResourcesEnd()
		}
	})
}

func (r *Resources) emitProgress(g loader.Group) {
	for _, l := range r.listeners {
		l.OnProgress(g)
	}
}

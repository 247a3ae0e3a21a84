// Package config provides configuration loading and access for the landing experience.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all landing configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Loader    LoaderConfig    `yaml:"loader"`
	Anchors   AnchorsConfig   `yaml:"anchors"`
	Panels    PanelsConfig    `yaml:"panels"`
	Geometry  GeometryConfig  `yaml:"geometry"`
	Trails    TrailsConfig    `yaml:"trails"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// LoaderConfig holds progress sequencer parameters.
type LoaderConfig struct {
	Smoothing       float64       `yaml:"smoothing"`        // Fraction of the remaining distance covered per frame
	SnapEpsilon     float64       `yaml:"snap_epsilon"`     // Residual below which displayed snaps to target
	LaunchThreshold float64       `yaml:"launch_threshold"` // Displayed progress required to launch
	MinDuration     time.Duration `yaml:"min_duration"`     // Loader stays up at least this long
	LoadedDelay     time.Duration `yaml:"loaded_delay"`     // Launch to is-loaded transition
}

// AnchorsConfig holds anchor projector parameters.
type AnchorsConfig struct {
	StartupDelay time.Duration                `yaml:"startup_delay"` // One-off recompute after startup
	Entries      map[string]AnchorEntryConfig `yaml:"entries"`
}

// AnchorEntryConfig describes one connector line anchor.
type AnchorEntryConfig struct {
	AnchorX float64    `yaml:"anchor_x"` // Card-relative line start, 0 = left edge
	AnchorY float64    `yaml:"anchor_y"` // Card-relative line start, 0 = top edge
	Sphere  [3]float64 `yaml:"sphere"`   // Direction from mesh center, normalized on load
}

// PanelsConfig holds panel orchestrator parameters.
type PanelsConfig struct {
	RevealDelay     time.Duration     `yaml:"reveal_delay"`
	RevealStagger   time.Duration     `yaml:"reveal_stagger"`
	RevealOrder     []string          `yaml:"reveal_order"`
	Pages           map[string]string `yaml:"pages"`     // key -> page path
	Collapsed       map[string]string `yaml:"collapsed"` // key -> initial card markup
	Aliases         map[string]string `yaml:"aliases"`   // side menu alias -> key
	BaseURL         string            `yaml:"base_url"`
	AutoRotateSpeed float64           `yaml:"auto_rotate_speed"`
	ExecuteScripts  bool              `yaml:"execute_scripts"`
	LoadingHTML     string            `yaml:"loading_html"`
	ErrorHTML       string            `yaml:"error_html"`
}

// GeometryConfig holds the branching model dimensions in model units.
type GeometryConfig struct {
	TrunkRadius     float64 `yaml:"trunk_radius"`
	TrunkLength     float64 `yaml:"trunk_length"`
	TrunkSpacing    float64 `yaml:"trunk_spacing"`
	BranchRadius    float64 `yaml:"branch_radius"`
	BranchLength    float64 `yaml:"branch_length"`
	BranchHeight    float64 `yaml:"branch_height"` // Fraction of trunk length where branches attach
	SplayDegrees    float64 `yaml:"splay_degrees"`
	BadgeScale      float64 `yaml:"badge_scale"`
	CapsuleSegments int     `yaml:"capsule_segments"`
}

// TrailsConfig holds trail system parameters.
type TrailsConfig struct {
	Friction    float64      `yaml:"friction"`     // Velocity multiplier per frame
	WheelScale  float64      `yaml:"wheel_scale"`  // Wheel delta to flow velocity
	MaxVelocity float64      `yaml:"max_velocity"` // Clamp on accumulated velocity
	BaseScale   float64      `yaml:"base_scale"`
	ScaleJitter float64      `yaml:"scale_jitter"` // Uniform jitter, +/- fraction of base scale
	SpinMin     float64      `yaml:"spin_min"`     // Radians per frame
	SpinMax     float64      `yaml:"spin_max"`
	ViewHeight  float64      `yaml:"view_height"` // World units visible vertically
	Paths       []PathConfig `yaml:"paths"`
}

// PathConfig describes one trail path.
type PathConfig struct {
	Name         string        `yaml:"name"`
	Count        int           `yaml:"count"`
	Distribution string        `yaml:"distribution"` // "linear" or "centered"
	Direction    float64       `yaml:"direction"`    // +1 or -1, sign applied to scroll velocity
	Points       [4][2]float64 `yaml:"points"`       // Normalized control points, y down
}

// SceneConfig holds the stand-in 3D world parameters.
type SceneConfig struct {
	Assets       []AssetConfig `yaml:"assets"`
	SpinFriction float64       `yaml:"spin_friction"`
	SpinPerWheel float64       `yaml:"spin_per_wheel"`
	IdleSpin     float64       `yaml:"idle_spin"` // Radians per second
	CameraDist   float64       `yaml:"camera_distance"`
	CameraFovDeg float64       `yaml:"camera_fov_degrees"`
	MeshRadius   float64       `yaml:"mesh_radius"`
}

// AssetConfig describes one simulated resource load.
type AssetConfig struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Frames averaged in perf stats
	FlushFrames int `yaml:"flush_frames"` // Frames between CSV rows
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	RevealOffsets map[string]time.Duration // key -> delay after launch
	MenuAliases   []string                 // Side menu aliases, sorted for a stable menu order
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the orchestration layer cannot run with.
func (c *Config) validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	for _, key := range c.Panels.RevealOrder {
		if _, ok := c.Panels.Pages[key]; !ok {
			return fmt.Errorf("panel %q in reveal_order has no page", key)
		}
	}
	for alias, key := range c.Panels.Aliases {
		if _, ok := c.Panels.Pages[key]; !ok {
			return fmt.Errorf("alias %q points at unknown panel %q", alias, key)
		}
	}
	for i, p := range c.Trails.Paths {
		if p.Count <= 0 {
			return fmt.Errorf("trail path %d: count must be positive", i)
		}
		if p.Distribution != "linear" && p.Distribution != "centered" {
			return fmt.Errorf("trail path %d: unknown distribution %q", i, p.Distribution)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.RevealOffsets = make(map[string]time.Duration, len(c.Panels.RevealOrder))
	for i, key := range c.Panels.RevealOrder {
		c.Derived.RevealOffsets[key] = c.Panels.RevealDelay + time.Duration(i)*c.Panels.RevealStagger
	}

	c.Derived.MenuAliases = c.Derived.MenuAliases[:0]
	for alias := range c.Panels.Aliases {
		c.Derived.MenuAliases = append(c.Derived.MenuAliases, alias)
	}
	slices.Sort(c.Derived.MenuAliases)

	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 120
	}
	if c.Telemetry.FlushFrames < 1 {
		c.Telemetry.FlushFrames = 60
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/pflag"

	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/content"
	"github.com/pthm-cable/landing/landing"
	"github.com/pthm-cable/landing/ui"
)

//go:embed pages
var embeddedPages embed.FS

func main() {
	flags := pflag.NewFlagSet("landing", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flags.Bool("headless", false, "Run without graphics")
	frames := flags.Int("frames", 0, "Stop after N frames (0 = unlimited in windowed mode, 600 headless)")
	step := flags.Duration("step", 16*time.Millisecond, "Frame step in headless mode")
	outputDir := flags.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	pagesDir := flags.String("pages", "", "Directory served as the panel page root (empty = embedded pages)")
	baseURL := flags.String("base-url", "", "Fetch panel pages over HTTP from this URL instead of local files")
	seed := flags.Int64("seed", 0, "RNG seed (0 = time-based)")
	logStats := flags.Bool("log-stats", false, "Output frame timing via slog")
	logText := flags.Bool("log-text", false, "Log as text instead of JSON")
	_ = flags.Parse(os.Args[1:])

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if *logText {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	client, err := newPageClient(cfg, *pagesDir, *baseURL, logger)
	if err != nil {
		slog.Error("failed to create page client", "error", err)
		os.Exit(1)
	}

	opts := landing.Options{
		Start:     time.Now(),
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
		Fetcher:   client,
		Logger:    logger,
	}

	if *headless {
		exp, err := landing.New(cfg, opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer exp.Close()

		n := *frames
		if n <= 0 {
			n = 600
		}
		slog.Info("starting headless run", "seed", rngSeed, "frames", n, "step", *step)
		exp.Run(n, *step)
		slog.Info("headless run finished",
			"frames", exp.Scheduler().Frames(),
			"launched", exp.Launched(),
			"pages_cached", client.Cache().Len(),
		)
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Landing")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape closes panels, not the window.
	rl.SetExitKey(0)

	exp, err := landing.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer exp.Close()

	ui.NewHost(exp).Run(*frames)
}

// newPageClient builds the page client. Pages come from baseURL over HTTP,
// from dir on disk, or from the embedded pages.
func newPageClient(cfg *config.Config, dir, baseURL string, logger *slog.Logger) (*content.Client, error) {
	if baseURL != "" {
		return content.NewClient(content.ClientConfig{
			BaseURL:    baseURL,
			HTTPClient: &http.Client{Timeout: 10 * time.Second},
			Logger:     logger,
		})
	}

	var root fs.FS
	if dir != "" {
		root = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embeddedPages, "pages")
		if err != nil {
			return nil, err
		}
		root = sub
	}
	return content.NewClient(content.ClientConfig{
		BaseURL:    cfg.Panels.BaseURL,
		HTTPClient: &http.Client{Transport: http.NewFileTransportFS(root)},
		Logger:     logger,
	})
}

package landing

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/content"
	"github.com/pthm-cable/landing/dom"
	"github.com/pthm-cable/landing/panel"
	"github.com/pthm-cable/landing/telemetry"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const step = 16 * time.Millisecond

var pages = fstest.MapFS{
	"panels/about.html":   {Data: []byte("<h2>About</h2><p>We build things.</p>")},
	"panels/work.html":    {Data: []byte("<h2>Work</h2>")},
	"panels/contact.html": {Data: []byte("<h2>Contact</h2>")},
	"panels/lab.md":       {Data: []byte("# Lab\n\nNotes.\n")},
}

func newTestExperience(t *testing.T, outputDir string) *Experience {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Telemetry.FlushFrames = 1 << 20

	client, err := content.NewClient(content.ClientConfig{
		BaseURL:    cfg.Panels.BaseURL,
		HTTPClient: &http.Client{Transport: http.NewFileTransportFS(pages)},
	})
	if err != nil {
		t.Fatal(err)
	}

	e, err := New(cfg, Options{Start: epoch, Seed: 1, OutputDir: outputDir, Fetcher: client})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// runUntil steps frames until cond holds or the frame budget runs out.
func runUntil(e *Experience, frames int, cond func() bool) bool {
	for i := 0; i < frames; i++ {
		if cond() {
			return true
		}
		e.Run(1, step)
	}
	return cond()
}

func eventsOf(e *Experience, typ telemetry.EventType) []telemetry.Event {
	var out []telemetry.Event
	for _, ev := range e.Collector().Events() {
		if ev.Type == typ.String() {
			out = append(out, ev)
		}
	}
	return out
}

func TestLaunchSequence(t *testing.T) {
	e := newTestExperience(t, "")
	doc := e.Document()

	if label, _ := doc.Progress(); label != 0 {
		t.Errorf("expected loader to start at 0, got %d", label)
	}

	if !runUntil(e, 400, e.Launched) {
		t.Fatal("expected launch within 400 frames")
	}
	launchAt := e.Scheduler().Now().Sub(epoch)
	if launchAt < 1400*time.Millisecond {
		t.Errorf("launched before minimum duration: %s", launchAt)
	}
	if label, ring := doc.Progress(); label != 100 || ring != 100 {
		t.Errorf("expected final render of 100, got %d/%d", label, ring)
	}
	if doc.HasClass(dom.ClassLoaded) {
		t.Error("expected is-loaded to wait for the loaded delay")
	}

	e.Run(40, step)
	if doc.LoadedMarks() != 1 {
		t.Errorf("expected is-loaded exactly once, got %d", doc.LoadedMarks())
	}

	launch := eventsOf(e, telemetry.EventLaunch)
	loaded := eventsOf(e, telemetry.EventLoaded)
	if len(launch) != 1 || len(loaded) != 1 {
		t.Fatalf("expected one launch and one loaded event, got %d and %d", len(launch), len(loaded))
	}
	gap := loaded[0].AtMS - launch[0].AtMS
	if gap < 220 || gap > 220+16 {
		t.Errorf("expected loaded ~220ms after launch, got %dms", gap)
	}
}

func TestRevealOrderAfterLoaded(t *testing.T) {
	e := newTestExperience(t, "")
	runUntil(e, 400, e.Launched)
	e.Run(150, step)

	reveals := eventsOf(e, telemetry.EventReveal)
	want := []string{"tl", "tr", "br", "bl"}
	if len(reveals) != len(want) {
		t.Fatalf("expected %d reveals, got %d", len(want), len(reveals))
	}
	loadedAt := eventsOf(e, telemetry.EventLoaded)[0].AtMS
	offsets := []int64{260, 620, 980, 1340}
	for i, ev := range reveals {
		if ev.Key != want[i] {
			t.Errorf("reveal %d: expected %s, got %s", i, want[i], ev.Key)
		}
		d := ev.AtMS - loadedAt
		if d < offsets[i] || d > offsets[i]+16 {
			t.Errorf("reveal %s: expected ~%dms after loaded, got %dms", ev.Key, offsets[i], d)
		}
	}
}

func TestAnchorsLockAfterResources(t *testing.T) {
	e := newTestExperience(t, "")

	e.Run(5, step)
	line, _ := e.Document().Line(panel.TopLeft)
	center := anchor.Center(1280, 720)
	if line.Target != center {
		t.Errorf("expected center fallback before load, got %+v", line.Target)
	}
	if e.Projector().Locked() {
		t.Error("expected anchors unlocked before resources")
	}

	if !runUntil(e, 200, e.Projector().Locked) {
		t.Fatal("expected anchors to lock after resources load")
	}
	e.Run(1, step)
	if line.Target == center {
		t.Error("expected target projected from the mesh")
	}
	card, _ := e.Document().Card(panel.TopLeft)
	r, _ := card.Bounds()
	if line.Start.X != r.X+r.W || line.Start.Y != r.Y+r.H/2 {
		t.Errorf("expected line start at right-middle of card, got %+v", line.Start)
	}
}

func TestOpenFetchAndClose(t *testing.T) {
	e := newTestExperience(t, "")
	runUntil(e, 400, e.Launched)
	e.Run(150, step)

	card, _ := e.Document().Card(panel.TopLeft)
	collapsed := card.HTML()
	r, _ := card.Bounds()
	e.OnClick(r.X+r.W/2, r.Y+r.H/2)

	if k, ok := e.Panels().Expanded(); !ok || k != panel.TopLeft {
		t.Fatalf("expected tl expanded, got %q", k)
	}
	if !e.Trails().Running() {
		t.Error("expected trails running while open")
	}
	if !e.World().Controls().AutoRotate {
		t.Error("expected auto-rotate on while open")
	}

	loaded := func() bool { return strings.Contains(card.HTML(), "We build things") }
	for i := 0; i < 500 && !loaded(); i++ {
		time.Sleep(time.Millisecond)
		e.Run(1, step)
	}
	if !loaded() {
		t.Fatalf("expected fetched content, got %q", card.HTML())
	}

	e.OnKey(KeyEscape)
	if card.HTML() != collapsed {
		t.Errorf("expected collapsed markup restored, got %q", card.HTML())
	}
	if e.Trails().Running() {
		t.Error("expected trails stopped after close")
	}
	if e.Document().HasClass(dom.ClassOpen) {
		t.Error("expected open class cleared")
	}
}

func TestMenuOpensMarkdownPage(t *testing.T) {
	e := newTestExperience(t, "")
	runUntil(e, 400, e.Launched)
	e.Run(150, step)

	e.OnMenu("lab")
	card, _ := e.Document().Card(panel.BottomRight)
	rendered := func() bool { return strings.Contains(card.HTML(), "<h1>Lab</h1>") }
	for i := 0; i < 500 && !rendered(); i++ {
		time.Sleep(time.Millisecond)
		e.Run(1, step)
	}
	if !rendered() {
		t.Errorf("expected rendered markdown, got %q", card.HTML())
	}
}

func TestKeyboardFocusActivates(t *testing.T) {
	e := newTestExperience(t, "")
	runUntil(e, 400, e.Launched)
	e.Run(150, step)

	e.OnKey(KeyTab)
	e.OnKey(KeyTab)
	e.OnKey(KeyEnter)
	if k, ok := e.Panels().Expanded(); !ok || k != panel.TopRight {
		t.Errorf("expected second card expanded, got %q", k)
	}
}

func TestWheelDrivesTrailsWhileOpen(t *testing.T) {
	e := newTestExperience(t, "")
	runUntil(e, 400, e.Launched)
	e.Run(150, step)

	e.OnWheel(100)
	e.Run(3, step)
	if e.Trails().Trails()[0].Flow != 0 {
		t.Error("expected trails frozen while no panel is open")
	}

	e.Open(panel.TopRight)
	e.OnWheel(100)
	e.Run(3, step)
	a, b := e.Trails().Trails()[0].Flow, e.Trails().Trails()[1].Flow
	if a == 0 || b == 0 || a > 0.5 || b < 0.5 {
		t.Errorf("expected opposite flows, got %v and %v", a, b)
	}
}

func TestResizePropagates(t *testing.T) {
	e := newTestExperience(t, "")
	runUntil(e, 200, e.Projector().Locked)
	e.Run(1, step)

	line, _ := e.Document().Line(panel.BottomRight)
	before := line.Target

	e.Resize(640, 360)
	if line.Target.X != before.X/2 || line.Target.Y != before.Y/2 {
		t.Errorf("expected targets to scale with viewport, got %+v from %+v", line.Target, before)
	}
	if w, h := e.Trails().Viewport(); w != 640 || h != 360 {
		t.Errorf("expected trails viewport 640x360, got %dx%d", w, h)
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	e := newTestExperience(t, dir)
	e.Run(10, step)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"frames.csv", "perf.csv", "events.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

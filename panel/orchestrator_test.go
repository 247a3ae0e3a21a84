package panel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/content"
)

type fakeCard struct {
	html    string
	phase   Phase
	sizing  anchor.Rect
	sized   bool
	scripts []content.Script
	panicOn string
}

func (c *fakeCard) Bounds() (anchor.Rect, bool) {
	return anchor.Rect{X: 10, Y: 20, W: 300, H: 120}, true
}
func (c *fakeCard) HTML() string            { return c.html }
func (c *fakeCard) SetPhase(p Phase)        { c.phase = p }
func (c *fakeCard) SetSizing(r anchor.Rect) { c.sizing, c.sized = r, true }
func (c *fakeCard) SetHTML(html string) {
	if c.panicOn != "" && html == c.panicOn {
		panic("document rejected markup")
	}
	c.html = html
}
func (c *fakeCard) ReplaceScript(i int, s content.Script) { c.scripts = append(c.scripts, s) }

type fakeDoc struct {
	open    bool
	markers map[Key]bool
}

func (d *fakeDoc) SetPanelOpen(open bool)        { d.open = open }
func (d *fakeDoc) SetPanelMarker(k Key, on bool) { d.markers[k] = on }

type fakeControls struct {
	enabled, autoRotate bool
	speed               float64
}

func (c *fakeControls) SetEnabled(b bool)            { c.enabled = b }
func (c *fakeControls) SetAutoRotate(b bool)         { c.autoRotate = b }
func (c *fakeControls) SetAutoRotateSpeed(s float64) { c.speed = s }

// gatedFetcher blocks each fetch until the test releases its path.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	pages map[string]string
	calls map[string]int
}

func newGatedFetcher(pages map[string]string) *gatedFetcher {
	return &gatedFetcher{gates: make(map[string]chan struct{}), pages: pages, calls: make(map[string]int)}
}

func (f *gatedFetcher) gate(path string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[path]
	if !ok {
		g = make(chan struct{})
		f.gates[path] = g
	}
	return g
}

func (f *gatedFetcher) release(path string) { close(f.gate(path)) }

func (f *gatedFetcher) Fetch(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	f.calls[path]++
	f.mu.Unlock()
	<-f.gate(path)
	page, ok := f.pages[path]
	if !ok {
		return "", errors.New("not found")
	}
	return page, nil
}

type timerCall struct {
	d  time.Duration
	fn func()
}

// testScheduler records timers and hands posted callbacks to the test.
type testScheduler struct {
	timers []timerCall
	posted chan func()
}

func (s *testScheduler) After(d time.Duration, fn func()) {
	s.timers = append(s.timers, timerCall{d, fn})
}
func (s *testScheduler) Post(fn func()) { s.posted <- fn }

// runPosted waits for one posted callback and runs it.
func (s *testScheduler) runPosted(t *testing.T) {
	t.Helper()
	select {
	case fn := <-s.posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch completion")
	}
}

type recordingListener struct {
	events []string
}

func (l *recordingListener) PanelOpened(k Key) { l.events = append(l.events, "open:"+string(k)) }
func (l *recordingListener) PanelClosed(k Key) { l.events = append(l.events, "close:"+string(k)) }

type fixture struct {
	o        *Orchestrator
	cards    map[Key]*fakeCard
	doc      *fakeDoc
	controls *fakeControls
	fetcher  *gatedFetcher
	sched    *testScheduler
	listener *recordingListener
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		cards:    make(map[Key]*fakeCard),
		doc:      &fakeDoc{markers: make(map[Key]bool)},
		controls: &fakeControls{},
		fetcher: newGatedFetcher(map[string]string{
			"tl.html": "<p>top left</p>",
			"tr.html": "<p>top right</p>",
			"br.html": `<p>lab</p><script data-k="v">boot()</script>`,
		}),
		sched:    &testScheduler{posted: make(chan func(), 8)},
		listener: &recordingListener{},
	}
	cards := make(map[Key]Card)
	for _, k := range allKeys() {
		c := &fakeCard{html: "<h3>" + string(k) + "</h3>"}
		f.cards[k] = c
		cards[k] = c
	}
	if opts.Pages == nil {
		opts.Pages = map[Key]string{TopLeft: "tl.html", TopRight: "tr.html", BottomRight: "br.html", BottomLeft: "bl.html"}
	}
	if opts.LoadingHTML == "" {
		opts.LoadingHTML = "loading"
	}
	if opts.ErrorHTML == "" {
		opts.ErrorHTML = "error"
	}
	opts.AutoRotateSpeed = 0.8

	f.o = New(opts, cards, Deps{
		Document:  f.doc,
		Controls:  f.controls,
		Fetcher:   f.fetcher,
		Scheduler: f.sched,
	})
	f.o.AddListener(f.listener)
	for _, k := range allKeys() {
		f.o.Reveal(k)
	}
	return f
}

func TestStartRevealSchedule(t *testing.T) {
	f := newFixture(t, Options{RevealOffsets: map[Key]time.Duration{
		TopLeft:     260 * time.Millisecond,
		TopRight:    620 * time.Millisecond,
		BottomRight: 980 * time.Millisecond,
		BottomLeft:  1340 * time.Millisecond,
	}})
	f.sched.timers = nil

	f.o.StartReveal()

	want := []time.Duration{260 * time.Millisecond, 620 * time.Millisecond, 980 * time.Millisecond, 1340 * time.Millisecond}
	if len(f.sched.timers) != len(want) {
		t.Fatalf("expected %d timers, got %d", len(want), len(f.sched.timers))
	}
	for i, d := range want {
		if f.sched.timers[i].d != d {
			t.Errorf("timer %d: expected %s, got %s", i, d, f.sched.timers[i].d)
		}
	}
}

func TestRevealUsesConfiguredOffsets(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, OptionsFromConfig(cfg))
	f.sched.timers = nil
	f.o.StartReveal()

	for i, k := range f.o.opts.RevealOrder {
		want := cfg.Derived.RevealOffsets[string(k)]
		if f.sched.timers[i].d != want {
			t.Errorf("%s: expected reveal at %s, got %s", k, want, f.sched.timers[i].d)
		}
	}
}

func TestRevealOrderClockwise(t *testing.T) {
	cards := map[Key]Card{}
	fakes := map[Key]*fakeCard{}
	for _, k := range allKeys() {
		fakes[k] = &fakeCard{}
		cards[k] = fakes[k]
	}
	sched := &testScheduler{posted: make(chan func(), 1)}
	o := New(Options{RevealOffsets: map[Key]time.Duration{
		TopRight:    360 * time.Millisecond,
		BottomRight: 720 * time.Millisecond,
		BottomLeft:  1080 * time.Millisecond,
	}}, cards, Deps{Scheduler: sched})
	o.StartReveal()

	order := []Key{TopLeft, TopRight, BottomRight, BottomLeft}
	for i, timer := range sched.timers {
		timer.fn()
		k := order[i]
		if o.Phase(k) != Visible || fakes[k].phase != Visible {
			t.Errorf("step %d: expected %s visible", i, k)
		}
		for _, later := range order[i+1:] {
			if o.Phase(later) != Hidden {
				t.Errorf("step %d: %s revealed early", i, later)
			}
		}
	}
}

func TestOpenFetchesAndInjects(t *testing.T) {
	f := newFixture(t, Options{})

	f.o.Open(TopLeft)
	card := f.cards[TopLeft]
	if card.html != "loading" {
		t.Errorf("expected loading placeholder, got %q", card.html)
	}
	if !card.sized || card.sizing.W != 300 {
		t.Errorf("expected sizing captured from bounds, got %+v", card.sizing)
	}
	if !f.doc.open || !f.doc.markers[TopLeft] || !f.o.IsOpen() {
		t.Error("expected global and per-key open markers")
	}
	if !f.controls.enabled || !f.controls.autoRotate || f.controls.speed != 0.8 {
		t.Errorf("expected auto-rotate on, got %+v", f.controls)
	}

	f.fetcher.release("tl.html")
	f.sched.runPosted(t)
	if card.html != "<p>top left</p>" {
		t.Errorf("expected fetched content, got %q", card.html)
	}

	f.o.Close()
	if card.html != "<h3>tl</h3>" {
		t.Errorf("expected collapsed markup restored, got %q", card.html)
	}
	if f.doc.open || f.doc.markers[TopLeft] || f.controls.speed != 0 {
		t.Error("expected markers cleared and rotation stopped")
	}
	if card.phase != Visible {
		t.Errorf("expected card visible after collapse, got %s", card.phase)
	}
}

func TestSwitchRestoresPreviousExactly(t *testing.T) {
	f := newFixture(t, Options{})
	f.cards[TopLeft].html = `<h3 class="x">About <b>us</b></h3>`

	f.o.Open(TopLeft)
	f.fetcher.release("tl.html")
	f.sched.runPosted(t)

	f.o.Open(TopRight)
	if f.cards[TopLeft].html != `<h3 class="x">About <b>us</b></h3>` {
		t.Errorf("previous panel not restored exactly: %q", f.cards[TopLeft].html)
	}
	if f.cards[TopRight].html != "loading" {
		t.Errorf("expected new panel loading, got %q", f.cards[TopRight].html)
	}
	if k, _ := f.o.Expanded(); k != TopRight {
		t.Errorf("expected tr expanded, got %s", k)
	}
}

func TestStaleFetchDiscarded(t *testing.T) {
	f := newFixture(t, Options{})

	f.o.Open(TopLeft)
	f.o.Open(TopRight) // switch before tl resolves

	f.fetcher.release("tl.html")
	f.sched.runPosted(t)

	if f.cards[TopRight].html != "loading" {
		t.Errorf("stale tl response altered tr: %q", f.cards[TopRight].html)
	}
	if f.cards[TopLeft].html != "<h3>tl</h3>" {
		t.Errorf("stale tl response applied to collapsed tl: %q", f.cards[TopLeft].html)
	}

	f.fetcher.release("tr.html")
	f.sched.runPosted(t)
	if f.cards[TopRight].html != "<p>top right</p>" {
		t.Errorf("expected tr content, got %q", f.cards[TopRight].html)
	}
}

func TestFetchAfterCloseDiscarded(t *testing.T) {
	f := newFixture(t, Options{})

	f.o.Open(TopLeft)
	f.o.Escape()
	f.fetcher.release("tl.html")
	f.sched.runPosted(t)

	if f.cards[TopLeft].html != "<h3>tl</h3>" {
		t.Errorf("response after close altered card: %q", f.cards[TopLeft].html)
	}
}

func TestFetchFailureShowsErrorInThatPanelOnly(t *testing.T) {
	f := newFixture(t, Options{})

	f.o.Open(BottomLeft) // bl.html is not served
	f.fetcher.release("bl.html")
	f.sched.runPosted(t)

	if f.cards[BottomLeft].html != "error" {
		t.Errorf("expected error placeholder, got %q", f.cards[BottomLeft].html)
	}
	for _, k := range []Key{TopLeft, TopRight, BottomRight} {
		if f.cards[k].html != "<h3>"+string(k)+"</h3>" {
			t.Errorf("panel %s affected by failure: %q", k, f.cards[k].html)
		}
	}
	if f.fetcher.calls["bl.html"] != 1 {
		t.Errorf("expected no retry, got %d calls", f.fetcher.calls["bl.html"])
	}
}

func TestInjectionPanicShowsError(t *testing.T) {
	f := newFixture(t, Options{})
	f.cards[TopRight].panicOn = "<p>top right</p>"

	f.o.Open(TopRight)
	f.fetcher.release("tr.html")
	f.sched.runPosted(t)

	if f.cards[TopRight].html != "error" {
		t.Errorf("expected error placeholder after panic, got %q", f.cards[TopRight].html)
	}
}

func TestScriptsReplacedWhenEnabled(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		f := newFixture(t, Options{ExecuteScripts: enabled})
		f.o.Open(BottomRight)
		f.fetcher.release("br.html")
		f.sched.runPosted(t)

		got := len(f.cards[BottomRight].scripts)
		if !enabled && got != 0 {
			t.Errorf("scripts replaced while disabled: %d", got)
		}
		if enabled {
			if got != 1 {
				t.Fatalf("expected one replaced script, got %d", got)
			}
			s := f.cards[BottomRight].scripts[0]
			if s.Text != "boot()" || len(s.Attrs) != 1 || s.Attrs[0].Key != "data-k" {
				t.Errorf("script not carried over: %+v", s)
			}
		}
	}
}

func TestEscapeWithNothingOpen(t *testing.T) {
	f := newFixture(t, Options{})
	f.o.Escape()
	if len(f.listener.events) != 0 {
		t.Errorf("expected no events, got %v", f.listener.events)
	}
}

func TestMenuAliases(t *testing.T) {
	f := newFixture(t, Options{Aliases: map[string]Key{"about": TopLeft, "lab": BottomRight}})

	f.o.Menu("lab")
	if k, _ := f.o.Expanded(); k != BottomRight {
		t.Errorf("expected br expanded via alias, got %q", k)
	}
	f.o.Menu("nope")
	if k, _ := f.o.Expanded(); k != BottomRight {
		t.Errorf("unknown alias changed state to %q", k)
	}
	f.o.Menu("lab")
	if _, ok := f.o.Expanded(); ok {
		t.Error("expected second press to collapse")
	}
}

func TestListenerEvents(t *testing.T) {
	f := newFixture(t, Options{})

	f.o.Open(TopLeft)
	f.o.Open(TopRight)
	f.o.Close()

	want := []string{"open:tl", "close:tl", "open:tr", "close:tr"}
	if len(f.listener.events) != len(want) {
		t.Fatalf("expected %v, got %v", want, f.listener.events)
	}
	for i := range want {
		if f.listener.events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], f.listener.events[i])
		}
	}
}

func TestMissingPageShowsError(t *testing.T) {
	f := newFixture(t, Options{Pages: map[Key]string{TopLeft: "tl.html"}})

	f.o.Open(TopRight)
	if f.cards[TopRight].html != "error" {
		t.Errorf("expected error placeholder for unmapped page, got %q", f.cards[TopRight].html)
	}
}

type fullListener struct {
	recordingListener
	revealed []Key
	failed   []Key
}

func (l *fullListener) PanelRevealed(k Key)          { l.revealed = append(l.revealed, k) }
func (l *fullListener) PanelFailed(k Key, err error) { l.failed = append(l.failed, k) }

func TestOptionalListeners(t *testing.T) {
	cards := map[Key]Card{TopLeft: &fakeCard{}, TopRight: &fakeCard{}}
	sched := &testScheduler{posted: make(chan func(), 1)}
	o := New(Options{ErrorHTML: "error"}, cards, Deps{Scheduler: sched})
	l := &fullListener{}
	o.AddListener(l)

	o.Reveal(TopLeft)
	o.Reveal(TopLeft)
	o.Open(TopLeft) // no pages configured

	if len(l.revealed) != 1 || l.revealed[0] != TopLeft {
		t.Errorf("expected one reveal of tl, got %v", l.revealed)
	}
	if len(l.failed) != 1 || l.failed[0] != TopLeft {
		t.Errorf("expected one failure of tl, got %v", l.failed)
	}
	if len(l.events) != 1 || l.events[0] != "open:tl" {
		t.Errorf("expected embedded listener to see open, got %v", l.events)
	}
}

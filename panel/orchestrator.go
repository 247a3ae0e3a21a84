package panel

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pthm-cable/landing/anchor"
	"github.com/pthm-cable/landing/config"
	"github.com/pthm-cable/landing/content"
)

// Card is the document handle of one panel. Handles are borrowed.
type Card interface {
	anchor.Card
	HTML() string
	SetHTML(html string)
	SetPhase(p Phase)
	// SetSizing writes the four sizing properties the expand animation
	// starts from.
	SetSizing(r anchor.Rect)
}

// ScriptHost is implemented by cards that can run scripts. Each script in
// injected content is replaced by a fresh element built from fresh.
type ScriptHost interface {
	ReplaceScript(index int, fresh content.Script)
}

// Document holds the page-level open markers.
type Document interface {
	SetPanelOpen(open bool)
	SetPanelMarker(k Key, on bool)
}

// Controls are the optional debug camera controls of the 3D world.
type Controls interface {
	SetEnabled(enabled bool)
	SetAutoRotate(on bool)
	SetAutoRotateSpeed(speed float64)
}

// Fetcher loads panel pages. *content.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, pagePath string) (string, error)
}

// Scheduler runs work on the frame goroutine. *frame.Scheduler satisfies it.
type Scheduler interface {
	After(d time.Duration, fn func())
	Post(fn func())
}

// Listener observes the global open flag, one event per transition.
type Listener interface {
	PanelOpened(k Key)
	PanelClosed(k Key)
}

// RevealListener is optionally implemented by listeners that also want
// reveal events.
type RevealListener interface {
	PanelRevealed(k Key)
}

// FailureListener is optionally implemented by listeners that also want
// content failures.
type FailureListener interface {
	PanelFailed(k Key, err error)
}

// Options configure an Orchestrator.
type Options struct {
	Pages           map[Key]string
	Aliases         map[string]Key
	RevealOrder     []Key
	RevealOffsets   map[Key]time.Duration // Delay from StartReveal; missing keys reveal at once
	AutoRotateSpeed float64
	ExecuteScripts  bool
	LoadingHTML     string
	ErrorHTML       string
}

// OptionsFromConfig converts the panels config and its derived reveal
// offsets.
func OptionsFromConfig(c *config.Config) Options {
	cfg := c.Panels
	opts := Options{
		Pages:           make(map[Key]string, len(cfg.Pages)),
		Aliases:         make(map[string]Key, len(cfg.Aliases)),
		RevealOffsets:   make(map[Key]time.Duration, len(c.Derived.RevealOffsets)),
		AutoRotateSpeed: cfg.AutoRotateSpeed,
		ExecuteScripts:  cfg.ExecuteScripts,
		LoadingHTML:     cfg.LoadingHTML,
		ErrorHTML:       cfg.ErrorHTML,
	}
	for k, p := range cfg.Pages {
		opts.Pages[Key(k)] = p
	}
	for alias, k := range cfg.Aliases {
		opts.Aliases[alias] = Key(k)
	}
	for _, k := range cfg.RevealOrder {
		opts.RevealOrder = append(opts.RevealOrder, Key(k))
	}
	for k, d := range c.Derived.RevealOffsets {
		opts.RevealOffsets[Key(k)] = d
	}
	return opts
}

// Deps are the collaborators of an Orchestrator. Document, Controls and
// Logger may be nil.
type Deps struct {
	Document  Document
	Controls  Controls
	Fetcher   Fetcher
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Orchestrator applies Machine transitions to the document and loads
// panel content. All methods must be called on the frame goroutine.
type Orchestrator struct {
	opts      Options
	machine   Machine
	cards     map[Key]Card
	collapsed map[Key]string
	open      bool

	doc       Document
	controls  Controls
	fetcher   Fetcher
	sched     Scheduler
	listeners []Listener
	logger    *slog.Logger
	ctx       context.Context
}

// New creates an orchestrator for the given cards.
func New(opts Options, cards map[Key]Card, deps Deps) *Orchestrator {
	if opts.RevealOrder == nil {
		opts.RevealOrder = RevealOrder
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]Key, 0, len(cards))
	for _, k := range opts.RevealOrder {
		if _, ok := cards[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range cards {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	return &Orchestrator{
		opts:      opts,
		machine:   NewMachine(keys...),
		cards:     cards,
		collapsed: make(map[Key]string, len(cards)),
		doc:       deps.Document,
		controls:  deps.Controls,
		fetcher:   deps.Fetcher,
		sched:     deps.Scheduler,
		logger:    logger,
		ctx:       context.Background(),
	}
}

// AddListener registers a listener for open/close transitions.
func (o *Orchestrator) AddListener(l Listener) {
	o.listeners = append(o.listeners, l)
}

// Machine returns the current state.
func (o *Orchestrator) Machine() Machine { return o.machine }

// Phase returns the phase of key.
func (o *Orchestrator) Phase(k Key) Phase { return o.machine.Phase(k) }

// Expanded returns the expanded key, if any.
func (o *Orchestrator) Expanded() (Key, bool) { return o.machine.Expanded() }

// IsOpen reports the global open flag.
func (o *Orchestrator) IsOpen() bool { return o.open }

// StartReveal schedules the staggered reveal of every panel in reveal
// order, each at its offset from now.
func (o *Orchestrator) StartReveal() {
	for _, k := range o.opts.RevealOrder {
		o.sched.After(o.opts.RevealOffsets[k], func() {
			o.Reveal(k)
		})
	}
}

// Reveal makes a hidden panel visible.
func (o *Orchestrator) Reveal(k Key) {
	o.apply(o.machine.Reveal(k))
}

// Open expands k, or collapses it if it is already expanded.
func (o *Orchestrator) Open(k Key) {
	o.apply(o.machine.Open(k))
}

// Activate handles click, Enter or Space on a card.
func (o *Orchestrator) Activate(k Key) {
	o.apply(o.machine.Activate(k))
}

// Menu handles a side-menu button by alias. Unknown aliases are ignored.
func (o *Orchestrator) Menu(alias string) {
	k, ok := o.opts.Aliases[alias]
	if !ok {
		o.logger.Debug("unknown menu alias", "alias", alias)
		return
	}
	o.Open(k)
}

// Close collapses the expanded panel (close control).
func (o *Orchestrator) Close() {
	o.apply(o.machine.Close())
}

// Escape handles the Escape key; it closes regardless of focus.
func (o *Orchestrator) Escape() {
	o.Close()
}

func (o *Orchestrator) apply(next Machine, effects []Effect) {
	o.machine = next
	for _, e := range effects {
		o.applyEffect(e)
	}
}

func (o *Orchestrator) applyEffect(e Effect) {
	switch e := e.(type) {
	case Reveal:
		if card, ok := o.cards[e.Key]; ok && card != nil {
			card.SetPhase(Visible)
		}
		for _, l := range o.listeners {
			if rl, ok := l.(RevealListener); ok {
				rl.PanelRevealed(e.Key)
			}
		}

	case Restore:
		card, ok := o.cards[e.Key]
		if !ok || card == nil {
			return
		}
		if html, saved := o.collapsed[e.Key]; saved {
			card.SetHTML(html)
		}
		card.SetPhase(Visible)

	case ClearOpen:
		o.open = false
		if o.doc != nil {
			o.doc.SetPanelMarker(e.Key, false)
			o.doc.SetPanelOpen(false)
		}
		for _, l := range o.listeners {
			l.PanelClosed(e.Key)
		}

	case AutoRotate:
		o.autoRotate(e.On)

	case CaptureBounds:
		card, ok := o.cards[e.Key]
		if !ok || card == nil {
			return
		}
		if r, ok := card.Bounds(); ok {
			card.SetSizing(r)
		}

	case SetOpen:
		o.open = true
		if card, ok := o.cards[e.Key]; ok && card != nil {
			card.SetPhase(Expanded)
		}
		if o.doc != nil {
			o.doc.SetPanelOpen(true)
			o.doc.SetPanelMarker(e.Key, true)
		}
		for _, l := range o.listeners {
			l.PanelOpened(e.Key)
		}

	case SaveCollapsed:
		card, ok := o.cards[e.Key]
		if !ok || card == nil {
			return
		}
		if _, saved := o.collapsed[e.Key]; !saved {
			o.collapsed[e.Key] = card.HTML()
		}

	case ShowLoading:
		if card, ok := o.cards[e.Key]; ok && card != nil {
			card.SetHTML(o.opts.LoadingHTML)
		}

	case Fetch:
		o.fetch(e.Key)
	}
}

func (o *Orchestrator) autoRotate(on bool) {
	if o.controls == nil {
		return
	}
	if on {
		o.controls.SetEnabled(true)
		o.controls.SetAutoRotate(true)
		o.controls.SetAutoRotateSpeed(o.opts.AutoRotateSpeed)
		return
	}
	o.controls.SetAutoRotateSpeed(0)
}

// fetch loads the page on its own goroutine and posts the result back to
// the frame goroutine. In-flight fetches are never cancelled; stale
// results are dropped in complete.
func (o *Orchestrator) fetch(k Key) {
	pagePath, ok := o.opts.Pages[k]
	if !ok || o.fetcher == nil {
		o.complete(k, "", fmt.Errorf("panel %s: no page configured", k))
		return
	}

	go func() {
		html, err := o.fetcher.Fetch(o.ctx, pagePath)
		o.sched.Post(func() {
			o.complete(k, html, err)
		})
	}()
}

// complete commits a fetch result if k is still the expanded panel.
func (o *Orchestrator) complete(k Key, html string, err error) {
	if current, ok := o.machine.Expanded(); !ok || current != k {
		o.logger.Debug("dropping stale panel content", "key", string(k))
		return
	}
	card, ok := o.cards[k]
	if !ok || card == nil {
		return
	}

	if err == nil {
		err = o.inject(card, html)
	}
	if err != nil {
		o.logger.Warn("panel content failed", "key", string(k), "error", err)
		card.SetHTML(o.opts.ErrorHTML)
		for _, l := range o.listeners {
			if fl, ok := l.(FailureListener); ok {
				fl.PanelFailed(k, err)
			}
		}
	}
}

// inject replaces the card content; a panic in the document layer is
// reported as an error.
func (o *Orchestrator) inject(card Card, html string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("injecting content: %v", r)
		}
	}()

	card.SetHTML(html)

	if !o.opts.ExecuteScripts {
		return nil
	}
	host, ok := card.(ScriptHost)
	if !ok {
		return nil
	}
	scripts, err := content.ExtractScripts(html)
	if err != nil {
		return err
	}
	for i, s := range scripts {
		host.ReplaceScript(i, s)
	}
	return nil
}

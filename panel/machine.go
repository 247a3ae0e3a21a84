// Package panel implements the expand/collapse state machine of the four
// corner panels and the orchestrator that applies its effects to the page.
package panel

// Key identifies a panel by its screen corner.
type Key string

const (
	TopLeft     Key = "tl"
	TopRight    Key = "tr"
	BottomLeft  Key = "bl"
	BottomRight Key = "br"
)

// RevealOrder is the clockwise order panels appear in after launch.
var RevealOrder = []Key{TopLeft, TopRight, BottomRight, BottomLeft}

// Phase is the lifecycle phase of one panel.
// Hidden -> Visible -> Expanded -> Visible; a panel never hides again.
type Phase int

const (
	Hidden Phase = iota
	Visible
	Expanded
)

func (p Phase) String() string {
	switch p {
	case Visible:
		return "visible"
	case Expanded:
		return "expanded"
	}
	return "hidden"
}

// Effect is a side-effect intent produced by a Machine transition.
// Effects must be applied in order.
type Effect interface {
	effect()
}

type (
	// Reveal shows a hidden card.
	Reveal struct{ Key Key }
	// Restore puts the saved collapsed markup back and collapses the card.
	Restore struct{ Key Key }
	// ClearOpen clears the per-key marker and the global open flag.
	ClearOpen struct{ Key Key }
	// AutoRotate toggles the debug camera auto-rotation.
	AutoRotate struct{ On bool }
	// CaptureBounds copies the card's screen box into its sizing properties.
	CaptureBounds struct{ Key Key }
	// SetOpen sets the global open flag and the per-key marker.
	SetOpen struct{ Key Key }
	// SaveCollapsed records the card's current markup. Emitted once per key.
	SaveCollapsed struct{ Key Key }
	// ShowLoading replaces the content with the loading placeholder.
	ShowLoading struct{ Key Key }
	// Fetch loads the page for the key asynchronously.
	Fetch struct{ Key Key }
)

func (Reveal) effect()        {}
func (Restore) effect()       {}
func (ClearOpen) effect()     {}
func (AutoRotate) effect()    {}
func (CaptureBounds) effect() {}
func (SetOpen) effect()       {}
func (SaveCollapsed) effect() {}
func (ShowLoading) effect()   {}
func (Fetch) effect()         {}

// Machine is the immutable panel state. Transitions return a new Machine
// and the effects to apply. At most one panel is Expanded.
type Machine struct {
	keys     []Key
	phases   map[Key]Phase
	captured map[Key]bool
	expanded Key
}

// NewMachine creates a machine with every key hidden.
func NewMachine(keys ...Key) Machine {
	m := Machine{
		keys:     append([]Key(nil), keys...),
		phases:   make(map[Key]Phase, len(keys)),
		captured: make(map[Key]bool, len(keys)),
	}
	for _, k := range keys {
		m.phases[k] = Hidden
	}
	return m
}

func (m Machine) clone() Machine {
	c := Machine{
		keys:     m.keys,
		phases:   make(map[Key]Phase, len(m.phases)),
		captured: make(map[Key]bool, len(m.captured)),
		expanded: m.expanded,
	}
	for k, v := range m.phases {
		c.phases[k] = v
	}
	for k, v := range m.captured {
		c.captured[k] = v
	}
	return c
}

// Keys returns the registered keys.
func (m Machine) Keys() []Key { return m.keys }

// Phase returns the phase of key; unknown keys are Hidden.
func (m Machine) Phase(k Key) Phase { return m.phases[k] }

// Known reports whether key is registered.
func (m Machine) Known(k Key) bool {
	_, ok := m.phases[k]
	return ok
}

// Expanded returns the expanded key, if any.
func (m Machine) Expanded() (Key, bool) {
	return m.expanded, m.expanded != ""
}

// Reveal moves a hidden panel to Visible.
func (m Machine) Reveal(k Key) (Machine, []Effect) {
	if m.phases[k] != Hidden || !m.Known(k) {
		return m, nil
	}
	next := m.clone()
	next.phases[k] = Visible
	return next, []Effect{Reveal{Key: k}}
}

// Open expands k, collapsing any other expanded panel first. Opening the
// expanded panel collapses it. Hidden or unknown panels cannot open.
func (m Machine) Open(k Key) (Machine, []Effect) {
	switch m.phases[k] {
	case Expanded:
		return m.Close()
	case Hidden:
		return m, nil
	}

	next, effects := m.Close()
	next = next.clone()

	next.phases[k] = Expanded
	next.expanded = k
	effects = append(effects,
		CaptureBounds{Key: k},
		SetOpen{Key: k},
		AutoRotate{On: true},
	)
	if !next.captured[k] {
		next.captured[k] = true
		effects = append(effects, SaveCollapsed{Key: k})
	}
	effects = append(effects, ShowLoading{Key: k}, Fetch{Key: k})
	return next, effects
}

// Activate is the card trigger (click, Enter, Space): it only opens a
// panel that is Visible.
func (m Machine) Activate(k Key) (Machine, []Effect) {
	if m.phases[k] != Visible {
		return m, nil
	}
	return m.Open(k)
}

// Close collapses the expanded panel, if any.
func (m Machine) Close() (Machine, []Effect) {
	k, ok := m.Expanded()
	if !ok {
		return m, nil
	}
	next := m.clone()
	next.phases[k] = Visible
	next.expanded = ""
	return next, []Effect{
		Restore{Key: k},
		ClearOpen{Key: k},
		AutoRotate{On: false},
	}
}

package panel

import (
	"reflect"
	"testing"
)

func allKeys() []Key {
	return []Key{TopLeft, TopRight, BottomRight, BottomLeft}
}

func revealed() Machine {
	m := NewMachine(allKeys()...)
	for _, k := range allKeys() {
		m, _ = m.Reveal(k)
	}
	return m
}

func countExpanded(m Machine) int {
	n := 0
	for _, k := range m.Keys() {
		if m.Phase(k) == Expanded {
			n++
		}
	}
	return n
}

func TestRevealOnlyFromHidden(t *testing.T) {
	m := NewMachine(allKeys()...)

	m, effects := m.Reveal(TopLeft)
	if m.Phase(TopLeft) != Visible || len(effects) != 1 {
		t.Fatalf("expected visible with one effect, got %s %v", m.Phase(TopLeft), effects)
	}

	_, effects = m.Reveal(TopLeft)
	if len(effects) != 0 {
		t.Errorf("second reveal should be a no-op, got %v", effects)
	}

	_, effects = m.Reveal(Key("zz"))
	if len(effects) != 0 {
		t.Errorf("unknown key reveal should be a no-op, got %v", effects)
	}
}

func TestOpenEffectOrder(t *testing.T) {
	m := revealed()

	m, effects := m.Open(TopRight)
	want := []Effect{
		CaptureBounds{Key: TopRight},
		SetOpen{Key: TopRight},
		AutoRotate{On: true},
		SaveCollapsed{Key: TopRight},
		ShowLoading{Key: TopRight},
		Fetch{Key: TopRight},
	}
	if !reflect.DeepEqual(effects, want) {
		t.Errorf("unexpected effects:\n got  %v\n want %v", effects, want)
	}
	if k, ok := m.Expanded(); !ok || k != TopRight {
		t.Errorf("expected tr expanded, got %q %v", k, ok)
	}
}

func TestSwitchCollapsesPreviousFirst(t *testing.T) {
	m := revealed()
	m, _ = m.Open(TopLeft)

	m, effects := m.Open(BottomRight)
	if len(effects) < 4 {
		t.Fatalf("expected collapse and expand effects, got %v", effects)
	}
	if effects[0] != (Restore{Key: TopLeft}) || effects[1] != (ClearOpen{Key: TopLeft}) {
		t.Errorf("expected previous panel restored first, got %v", effects[:2])
	}

	// Content for the new panel is only replaced after the restore
	restoreAt, loadingAt := -1, -1
	for i, e := range effects {
		switch e {
		case Restore{Key: TopLeft}:
			restoreAt = i
		case ShowLoading{Key: BottomRight}:
			loadingAt = i
		}
	}
	if restoreAt < 0 || loadingAt < 0 || restoreAt > loadingAt {
		t.Errorf("restore at %d must precede loading at %d", restoreAt, loadingAt)
	}

	if m.Phase(TopLeft) != Visible || m.Phase(BottomRight) != Expanded {
		t.Errorf("unexpected phases tl=%s br=%s", m.Phase(TopLeft), m.Phase(BottomRight))
	}
}

func TestOpenExpandedToggles(t *testing.T) {
	m := revealed()
	m, _ = m.Open(BottomLeft)

	m, effects := m.Open(BottomLeft)
	want := []Effect{Restore{Key: BottomLeft}, ClearOpen{Key: BottomLeft}, AutoRotate{On: false}}
	if !reflect.DeepEqual(effects, want) {
		t.Errorf("expected collapse effects %v, got %v", want, effects)
	}
	if _, ok := m.Expanded(); ok {
		t.Error("expected nothing expanded")
	}
}

func TestSaveCollapsedOnlyOnce(t *testing.T) {
	m := revealed()
	saves := 0
	for i := 0; i < 3; i++ {
		var effects []Effect
		m, effects = m.Open(TopLeft)
		for _, e := range effects {
			if _, ok := e.(SaveCollapsed); ok {
				saves++
			}
		}
		m, _ = m.Close()
	}
	if saves != 1 {
		t.Errorf("expected collapsed markup saved once, got %d", saves)
	}
}

func TestActivateRequiresVisible(t *testing.T) {
	m := NewMachine(allKeys()...)

	_, effects := m.Activate(TopLeft)
	if len(effects) != 0 {
		t.Errorf("hidden panel activated: %v", effects)
	}

	m, _ = m.Reveal(TopLeft)
	m, effects = m.Activate(TopLeft)
	if len(effects) == 0 || m.Phase(TopLeft) != Expanded {
		t.Fatal("visible panel did not expand")
	}

	// Activating the expanded card does nothing; the close control does
	m, effects = m.Activate(TopLeft)
	if len(effects) != 0 || m.Phase(TopLeft) != Expanded {
		t.Errorf("activate on expanded card changed state: %v", effects)
	}
}

func TestOpenHiddenIsNoop(t *testing.T) {
	m := NewMachine(allKeys()...)
	m, effects := m.Open(TopRight)
	if len(effects) != 0 || m.Phase(TopRight) != Hidden {
		t.Errorf("hidden panel opened: %v", effects)
	}
}

func TestCloseWithNothingExpanded(t *testing.T) {
	_, effects := revealed().Close()
	if len(effects) != 0 {
		t.Errorf("expected no effects, got %v", effects)
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	m := revealed()
	_, _ = m.Open(TopLeft)
	if m.Phase(TopLeft) != Visible {
		t.Errorf("receiver mutated to %s", m.Phase(TopLeft))
	}
}

func TestAtMostOneExpandedUnderRandomOps(t *testing.T) {
	m := revealed()
	ops := []func(Machine) (Machine, []Effect){
		func(m Machine) (Machine, []Effect) { return m.Open(TopLeft) },
		func(m Machine) (Machine, []Effect) { return m.Open(TopRight) },
		func(m Machine) (Machine, []Effect) { return m.Activate(BottomLeft) },
		func(m Machine) (Machine, []Effect) { return m.Open(BottomRight) },
		func(m Machine) (Machine, []Effect) { return m.Close() },
	}
	// Deterministic pseudo-random walk
	seed := uint32(7)
	for i := 0; i < 500; i++ {
		seed = seed*1664525 + 1013904223
		m, _ = ops[seed%uint32(len(ops))](m)
		if n := countExpanded(m); n > 1 {
			t.Fatalf("step %d: %d panels expanded", i, n)
		}
		k, ok := m.Expanded()
		if ok && m.Phase(k) != Expanded {
			t.Fatalf("step %d: expanded key %s in phase %s", i, k, m.Phase(k))
		}
	}
}

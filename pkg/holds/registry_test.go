package holds

import (
	"errors"
	"testing"

	"github.com/menta2k/boulder-beta/pkg/types"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d holds", r.Len())
	}
	if r.Mode() != types.HoldStart {
		t.Errorf("Expected start mode, got %v", r.Mode())
	}
	if r.Locked() {
		t.Error("New registry should not be locked")
	}
}

func TestPerTypeOrder(t *testing.T) {
	r := NewRegistry()
	sequence := []types.HoldType{
		types.HoldStart, types.HoldMiddle, types.HoldStart, types.HoldFoot,
		types.HoldMiddle, types.HoldMiddle, types.HoldTop, types.HoldFoot,
	}
	for i, ht := range sequence {
		if _, err := r.AddType(types.Point{X: float64(i), Y: float64(i)}, ht); err != nil {
			t.Fatalf("AddType failed: %v", err)
		}
	}

	next := map[types.HoldType]int{}
	for i, h := range r.Holds() {
		next[h.HoldType]++
		if h.Order != next[h.HoldType] {
			t.Errorf("hold %d (%v): expected order %d, got %d", i, h.HoldType, next[h.HoldType], h.Order)
		}
	}

	want := map[types.HoldType]int{types.HoldStart: 2, types.HoldMiddle: 3, types.HoldTop: 1, types.HoldFoot: 2}
	for ht, n := range want {
		if r.Count(ht) != n {
			t.Errorf("Count(%v) = %d, want %d", ht, r.Count(ht), n)
		}
	}
}

func TestAddUsesModeAndRounds(t *testing.T) {
	r := NewRegistry()
	r.SetMode(types.HoldTop)

	h, err := r.Add(types.Point{X: 10.5, Y: 20.49})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if h.HoldType != types.HoldTop || h.X != 11 || h.Y != 20 || h.Order != 1 {
		t.Errorf("Unexpected hold %+v", h)
	}
}

func TestUndo(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Undo(); ok {
		t.Error("Undo on empty registry should report false")
	}
	if r.Len() != 0 {
		t.Errorf("Expected 0 holds, got %d", r.Len())
	}

	r.AddType(types.Point{X: 1, Y: 1}, types.HoldStart)
	r.AddType(types.Point{X: 2, Y: 2}, types.HoldMiddle)

	last, ok := r.Undo()
	if !ok || last.HoldType != types.HoldMiddle {
		t.Errorf("Expected to undo the middle hold, got %+v (%v)", last, ok)
	}
	if r.Count(types.HoldMiddle) != 0 {
		t.Errorf("Expected middle count 0, got %d", r.Count(types.HoldMiddle))
	}

	// numbering continues from the remaining holds
	h, _ := r.AddType(types.Point{X: 3, Y: 3}, types.HoldMiddle)
	if h.Order != 1 {
		t.Errorf("Expected order 1 after undo, got %d", h.Order)
	}
}

func TestClearResetsMode(t *testing.T) {
	r := NewRegistry()
	r.SetMode(types.HoldFoot)
	r.Add(types.Point{X: 5, Y: 5})
	r.Lock()

	r.Clear()
	if r.Len() != 0 || r.Count(types.HoldFoot) != 0 {
		t.Error("Clear should remove all holds")
	}
	if r.Mode() != types.HoldStart {
		t.Errorf("Expected start mode after clear, got %v", r.Mode())
	}
	if r.Locked() {
		t.Error("Clear should unlock the registry")
	}
}

func TestLockRejectsAdd(t *testing.T) {
	r := NewRegistry()
	r.Add(types.Point{X: 1, Y: 1})
	r.Lock()

	if _, err := r.Add(types.Point{X: 2, Y: 2}); !errors.Is(err, ErrRegistryLocked) {
		t.Errorf("Expected ErrRegistryLocked, got %v", err)
	}
	if _, ok := r.Undo(); ok {
		t.Error("Undo should be refused while locked")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 hold, got %d", r.Len())
	}

	r.Unlock()
	if _, err := r.Add(types.Point{X: 2, Y: 2}); err != nil {
		t.Errorf("Add after unlock failed: %v", err)
	}
}

func TestHoldsReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Add(types.Point{X: 1, Y: 1})

	hs := r.Holds()
	hs[0].X = 999
	if r.Holds()[0].X != 1 {
		t.Error("Holds should not expose internal storage")
	}
}

func TestSetModeIgnoresInvalid(t *testing.T) {
	r := NewRegistry()
	r.SetMode(types.HoldType(42))
	if r.Mode() != types.HoldStart {
		t.Errorf("Expected mode to stay start, got %v", r.Mode())
	}
}

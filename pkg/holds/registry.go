package holds

import (
	"errors"

	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// ErrRegistryLocked is returned by Add while an analysis result exists
var ErrRegistryLocked = errors.New("holds: registry is locked by an analysis result")

// Registry is the ordered, append-only list of holds marked on one image.
// Holds can only be appended, removed from the end, or cleared.
type Registry struct {
	holds  []types.Hold
	counts map[types.HoldType]int
	mode   types.HoldType
	locked bool
}

// NewRegistry creates an empty registry in start mode
func NewRegistry() *Registry {
	return &Registry{mode: types.HoldStart, counts: make(map[types.HoldType]int)}
}

// Mode returns the hold type new marks will get
func (r *Registry) Mode() types.HoldType {
	return r.mode
}

// SetMode selects the hold type for subsequent marks
func (r *Registry) SetMode(t types.HoldType) {
	if t.Valid() {
		r.mode = t
	}
}

// Add appends a hold of the current mode at p
func (r *Registry) Add(p types.Point) (types.Hold, error) {
	return r.AddType(p, r.mode)
}

// AddType appends a hold of type t at p. Coordinates are rounded half-up
// and the order is the number of earlier holds of the same type plus one.
func (r *Registry) AddType(p types.Point, t types.HoldType) (types.Hold, error) {
	if r.locked {
		return types.Hold{}, ErrRegistryLocked
	}
	if !t.Valid() {
		t = types.HoldMiddle
	}
	h := types.Hold{
		X:        geometry.RoundHalfUp(p.X),
		Y:        geometry.RoundHalfUp(p.Y),
		Order:    r.counts[t] + 1,
		HoldType: t,
	}
	r.holds = append(r.holds, h)
	r.counts[t]++
	return h, nil
}

// Undo removes the most recently added hold. It reports false when the
// registry is empty or locked.
func (r *Registry) Undo() (types.Hold, bool) {
	if r.locked || len(r.holds) == 0 {
		return types.Hold{}, false
	}
	last := r.holds[len(r.holds)-1]
	r.holds = r.holds[:len(r.holds)-1]
	r.counts[last.HoldType]--
	return last, true
}

// Clear empties the registry, unlocks it and resets the mode to start
func (r *Registry) Clear() {
	r.holds = nil
	r.counts = make(map[types.HoldType]int)
	r.mode = types.HoldStart
	r.locked = false
}

// Count returns the number of holds of type t
func (r *Registry) Count(t types.HoldType) int {
	return r.counts[t]
}

// Len returns the total number of holds
func (r *Registry) Len() int {
	return len(r.holds)
}

// Holds returns a copy of the holds in insertion order
func (r *Registry) Holds() []types.Hold {
	out := make([]types.Hold, len(r.holds))
	copy(out, r.holds)
	return out
}

// Lock rejects further Add and Undo calls until Clear or Unlock
func (r *Registry) Lock() {
	r.locked = true
}

// Unlock re-enables editing without touching the holds
func (r *Registry) Unlock() {
	r.locked = false
}

// Locked reports whether the registry is locked
func (r *Registry) Locked() bool {
	return r.locked
}

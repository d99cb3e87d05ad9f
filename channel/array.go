package channel

import "fmt"

// Array is a bounded, dense [lo,hi] set of channel slots: every slot is
// always present, empty or not.
type Array struct {
	lo, hi int
	slots  []Channel
	dirty  bool
}

// NewArray creates an Array covering [lo,hi] inclusive, every slot empty.
func NewArray(lo, hi int) *Array {
	if hi < lo {
		lo, hi = hi, lo
	}
	n := hi - lo + 1
	slots := make([]Channel, n)
	for i := range slots {
		slots[i] = Channel{Index: lo + i, Empty: true}
	}
	return &Array{lo: lo, hi: hi, slots: slots}
}

// Bounds returns the inclusive [lo,hi] range this array covers.
func (a *Array) Bounds() (lo, hi int) { return a.lo, a.hi }

// Len returns hi-lo+1.
func (a *Array) Len() int { return len(a.slots) }

// Get returns the channel at index (1-based, within [lo,hi]).
func (a *Array) Get(index int) (Channel, error) {
	i, err := a.slot(index)
	if err != nil {
		return Channel{}, err
	}
	return a.slots[i], nil
}

// Set replaces the channel at index, preserving Index, and marks the array
// dirty.
func (a *Array) Set(index int, ch Channel) error {
	i, err := a.slot(index)
	if err != nil {
		return err
	}
	ch.Index = index
	a.slots[i] = ch
	a.dirty = true
	return nil
}

// All returns every slot in index order.
func (a *Array) All() []Channel {
	out := make([]Channel, len(a.slots))
	copy(out, a.slots)
	return out
}

// Dirty reports whether any Set call has run since creation or ClearDirty.
func (a *Array) Dirty() bool { return a.dirty }

// ClearDirty resets the dirty flag, e.g. after a successful upload.
func (a *Array) ClearDirty() { a.dirty = false }

func (a *Array) slot(index int) (int, error) {
	if index < a.lo || index > a.hi {
		return 0, fmt.Errorf("channel index %d out of range [%d,%d]", index, a.lo, a.hi)
	}
	return index - a.lo, nil
}

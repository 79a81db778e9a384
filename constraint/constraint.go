// Package constraint defines the joint limits plugged into the FABRIK solver.
//
// The solver never interprets what a constraint does: after moving a joint it
// calls Setup then Enforce on the constraint governing that bone, and the
// constraint may rewrite any transform of the working chain.
package constraint

import "github.com/akmonengine/fabrik/chain"

// Constraint limits the rotation of the joint at index+1 relative to the joint at index.
//
// input is the immutable chain handed to the solver, working the chain being solved.
// owner is an opaque value supplied by the caller (typically the character owning the
// skeleton) and passed through unexamined. Implementations must not retain
// references to input, constraints or working beyond the call.
type Constraint interface {
	Enabled() bool
	Setup(index int, input chain.Chain, constraints Table, working chain.Chain)
	Enforce(index int, input chain.Chain, constraints Table, working chain.Chain, owner any)
}

// Handle is an optional constraint: either absent, or holding a Constraint
type Handle struct {
	constraint Constraint
}

// Some wraps c into a present handle. A nil c yields an absent handle.
func Some(c Constraint) Handle {
	return Handle{constraint: c}
}

// None returns an absent handle
func None() Handle {
	return Handle{}
}

// Get returns the wrapped constraint and whether the handle is present
func (h Handle) Get() (Constraint, bool) {
	return h.constraint, h.constraint != nil
}

// Active returns the wrapped constraint when it is present and enabled
func (h Handle) Active() (Constraint, bool) {
	if h.constraint == nil || !h.constraint.Enabled() {
		return nil, false
	}

	return h.constraint, true
}

// Table holds one handle per bone: Table[j] governs joint j+1 relative to joint j
type Table []Handle

// NewTable builds a table from constraints, nil entries being absent
func NewTable(constraints ...Constraint) Table {
	table := make(Table, len(constraints))
	for i, c := range constraints {
		table[i] = Some(c)
	}

	return table
}

// At returns the handle for bone index, absent when index is out of range
func (t Table) At(index int) Handle {
	if index < 0 || index >= len(t) {
		return None()
	}

	return t[index]
}

// Apply runs Setup then Enforce on the constraint at index, if it is present and enabled.
// It reports whether a constraint was invoked.
func (t Table) Apply(index int, input chain.Chain, working chain.Chain, owner any) bool {
	c, ok := t.At(index).Active()
	if !ok {
		return false
	}

	c.Setup(index, input, t, working)
	c.Enforce(index, input, t, working, owner)

	return true
}

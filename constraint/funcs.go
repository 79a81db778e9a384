package constraint

import "github.com/akmonengine/fabrik/chain"

// SetupFunc prepares a constraint before it is enforced
type SetupFunc func(index int, input chain.Chain, constraints Table, working chain.Chain)

// EnforceFunc moves the working chain so that it satisfies a constraint
type EnforceFunc func(index int, input chain.Chain, constraints Table, working chain.Chain, owner any)

// Funcs adapts plain functions to the Constraint interface.
// A nil SetupFn or EnforceFn is skipped.
type Funcs struct {
	Disabled  bool
	SetupFn   SetupFunc
	EnforceFn EnforceFunc
}

func (f *Funcs) Enabled() bool {
	return !f.Disabled
}

func (f *Funcs) Setup(index int, input chain.Chain, constraints Table, working chain.Chain) {
	if f.SetupFn != nil {
		f.SetupFn(index, input, constraints, working)
	}
}

func (f *Funcs) Enforce(index int, input chain.Chain, constraints Table, working chain.Chain, owner any) {
	if f.EnforceFn != nil {
		f.EnforceFn(index, input, constraints, working, owner)
	}
}

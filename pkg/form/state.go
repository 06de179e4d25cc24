package form

import (
	"fmt"

	"github.com/goliatone/go-crudform/pkg/surface"
)

// Phase is the lifecycle of one form key: idle until its submit button
// fires, submitted until GetModel reads it once, consumed afterwards. Clear
// returns any phase to idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitted
	PhaseConsumed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitted:
		return "submitted"
	case PhaseConsumed:
		return "consumed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is what a form keeps between render passes.
type State struct {
	Phase  Phase
	Values map[string]any
}

func stateKey(formKey string) string { return formKey + "_state" }

// LoadState returns the state stored for formKey, idle when there is none.
func LoadState(store surface.State, formKey string) State {
	raw, ok := store.Get(stateKey(formKey))
	if !ok {
		return State{Phase: PhaseIdle}
	}
	st, ok := raw.(State)
	if !ok {
		return State{Phase: PhaseIdle}
	}
	return st
}

func saveState(store surface.State, formKey string, st State) {
	store.Set(stateKey(formKey), st)
}

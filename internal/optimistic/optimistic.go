// Package optimistic applies local state changes ahead of confirmation and
// rolls them back with a compensating step when the confirmation fails.
package optimistic

import (
	"context"
	"fmt"
	"sync"

	"pulse/internal/observability"
)

// State is a locally held value that commands mutate.
type State[S any] struct {
	mu    sync.Mutex
	value S
}

// NewState returns a State holding initial.
func NewState[S any](initial S) *State[S] {
	return &State[S]{value: initial}
}

// Get returns the current local value.
func (s *State[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the local value, typically with a server-confirmed one.
func (s *State[S]) Set(v S) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

func (s *State[S]) update(fn func(S) S) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value)
	return s.value
}

// Command is one optimistic mutation.
type Command[S any] struct {
	Name string
	// Apply produces the tentative local state.
	Apply func(S) S
	// Execute performs the real operation. The returned value, if non-nil,
	// replaces the tentative state once confirmed.
	Execute func(ctx context.Context) (*S, error)
	// Compensate is the inverse of Apply.
	Compensate func(S) S
}

// Run applies cmd tentatively, executes it and compensates on failure. The
// tentative state is visible to readers while Execute is in flight.
func Run[S any](ctx context.Context, state *State[S], cmd Command[S]) error {
	if cmd.Apply == nil || cmd.Execute == nil || cmd.Compensate == nil {
		return fmt.Errorf("optimistic command %q is incomplete", cmd.Name)
	}

	state.update(cmd.Apply)

	confirmed, err := cmd.Execute(ctx)
	if err != nil {
		state.update(cmd.Compensate)
		observability.OptimisticRollbacks.WithLabelValues(cmd.Name).Inc()
		observability.GlobalLogger.WarnContext(ctx, "optimistic update rolled back",
			"command", cmd.Name,
			"error", err,
		)
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if confirmed != nil {
		state.Set(*confirmed)
	}
	return nil
}

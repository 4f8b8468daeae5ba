// Package view builds the page view documents and drives their
// loading, ready and error lifecycle.
package view

import (
	"context"
	"errors"
	"sync"

	"pulse/internal/models"
	"pulse/internal/observability"
)

// Phase is a page's position in its load lifecycle.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// Model is the serialisable state of one page view.
type Model[T any] struct {
	Page  string `json:"page"`
	Phase Phase  `json:"phase"`
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	// Retry is the route that re-enters loading after an error.
	Retry string `json:"retry,omitempty"`
}

// Loader fetches the data for a page.
type Loader[T any] func(ctx context.Context) (*T, error)

// View owns the state machine for a single page instance.
type View[T any] struct {
	mu    sync.Mutex
	state Model[T]
	gen   uint64
}

// NewView returns a view for page in the loading phase.
func NewView[T any](page, retry string) *View[T] {
	return &View[T]{state: Model[T]{Page: page, Phase: PhaseLoading, Retry: retry}}
}

// State returns a copy of the current model.
func (v *View[T]) State() Model[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load enters loading and runs load. A result that arrives after a newer
// Load started, or after ctx ended, is discarded and leaves state untouched.
func (v *View[T]) Load(ctx context.Context, load Loader[T]) Model[T] {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.state.Phase = PhaseLoading
	v.state.Data = nil
	v.state.Error = ""
	page := v.state.Page
	v.mu.Unlock()

	ctx, span := observability.StartServiceSpan(ctx, "view", page)
	defer span.End()

	data, err := load(ctx)
	if ctx.Err() != nil {
		return v.State()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return v.state
	}
	if err != nil {
		span.SetError(err)
		v.state.Phase = PhaseError
		v.state.Error = errorMessage(err)
	} else {
		v.state.Phase = PhaseReady
		v.state.Data = data
	}
	observability.PageLoads.WithLabelValues(page, string(v.state.Phase)).Inc()
	return v.state
}

// errorMessage keeps application messages and hides internal detail.
func errorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return appErr.Message
	}
	return "Something went wrong. Please try again."
}

// Package summarize turns extracted quote text into a benchmarking summary.
package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/quotebench/internal/models"
)

// ErrModeUnavailable is returned when no summarizer is configured for a mode.
var ErrModeUnavailable = errors.New("summarizer not configured for mode")

// Summarizer produces a single summary for the given quote text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Registry maps each Mode to the Summarizer that serves it.
type Registry struct {
	byMode map[models.Mode]Summarizer
}

// NewRegistry returns a registry serving ModeOffline with offline and ModeRemote
// with remote. Either may be nil, in which case that mode is unavailable.
func NewRegistry(offline, remote Summarizer) *Registry {
	r := &Registry{byMode: make(map[models.Mode]Summarizer, 2)}
	if offline != nil {
		r.byMode[models.ModeOffline] = offline
	}
	if remote != nil {
		r.byMode[models.ModeRemote] = remote
	}
	return r
}

// ForMode returns the summarizer for mode.
func (r *Registry) ForMode(mode models.Mode) (Summarizer, error) {
	s, ok := r.byMode[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
	}
	return s, nil
}

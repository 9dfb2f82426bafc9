// Package controller implements the capture/input shim that satisfies
// runtime.Controller — the one external boundary between the navigation
// runtime and the OS-level screen/cursor layer (§6). Production capture
// and input injection are themselves out of scope (§6 lists them as
// external collaborators); this package provides the shim's logging and
// serialization behaviour around whatever concrete capture backend is
// wired in.
//
// This is the second half of the deliberate zerolog seam: like the
// teacher's node_executors.go reaching for zerolog/log in one executor
// while the rest of the codebase uses its structured logger, capture/input
// adapters here log through zerolog rather than internal/obslog (see
// SPEC_FULL.md §A.1).
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Backend is the minimal OS-level capability a concrete capture/input
// driver must provide; Shim wraps it with serialized access and logging.
type Backend interface {
	Capture(ctx context.Context) (*domain.Bitmap, error)
	MouseMove(ctx context.Context, x, y int) error
	MouseDown(ctx context.Context) error
	MouseUp(ctx context.Context) error
	CursorPosition(ctx context.Context) (x, y int, err error)
}

// Shim adapts a Backend to runtime.Controller, serializing input calls so
// that a replay sequence's events are never interleaved with another
// goroutine's input (§5).
type Shim struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *Shim { return &Shim{backend: backend} }

func (s *Shim) Capture(ctx context.Context) (*domain.Bitmap, error) {
	bm, err := s.backend.Capture(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("controller: capture failed")
		return nil, fmt.Errorf("controller: capture: %w", err)
	}
	return bm, nil
}

func (s *Shim) MouseMove(ctx context.Context, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.MouseMove(ctx, x, y); err != nil {
		log.Warn().Err(err).Int("x", x).Int("y", y).Msg("controller: mouse move failed")
		return fmt.Errorf("controller: mouse move: %w", err)
	}
	return nil
}

func (s *Shim) MouseDown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.MouseDown(ctx); err != nil {
		log.Warn().Err(err).Msg("controller: mouse down failed")
		return fmt.Errorf("controller: mouse down: %w", err)
	}
	return nil
}

func (s *Shim) MouseUp(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.MouseUp(ctx); err != nil {
		log.Warn().Err(err).Msg("controller: mouse up failed")
		return fmt.Errorf("controller: mouse up: %w", err)
	}
	return nil
}

func (s *Shim) CursorPosition(ctx context.Context) (int, int, error) {
	x, y, err := s.backend.CursorPosition(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("controller: cursor position: %w", err)
	}
	return x, y, nil
}

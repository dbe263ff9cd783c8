// Package repository keeps the local cache and the remote API in step:
// reads are cache-first, writes go to the API first and are then mirrored
// locally.
package repository

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/cache"
)

// ErrCacheStale is matched by errors returned when the API accepted a write
// but the local mirror could not be updated.
var ErrCacheStale = errors.New("local cache may be stale")

// StaleError carries the mirror failure. The value returned alongside it is
// the server's result and is valid.
type StaleError struct {
	Op  string
	Err error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s: saved remotely, local cache not updated: %v", e.Op, e.Err)
}

func (e *StaleError) Unwrap() []error { return []error{ErrCacheStale, e.Err} }

// syncState tracks whether a mirror write has failed since the last full
// refresh.
type syncState struct {
	stale atomic.Bool
	log   *zap.Logger
}

// Stale reports whether the cache may disagree with the API. It clears after
// the next successful forced refresh.
func (s *syncState) Stale() bool { return s.stale.Load() }

func (s *syncState) markStale(op string, err error) error {
	s.stale.Store(true)
	s.log.Warn("local cache update failed", zap.String("op", op), zap.Error(err))
	return &StaleError{Op: op, Err: err}
}

func (s *syncState) refreshed() { s.stale.Store(false) }

func isMiss(err error) bool { return errors.Is(err, cache.ErrNotFound) }

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

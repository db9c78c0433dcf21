// Package cmp contains the consent-management backends: the browser-bridged
// web backend, the native SDK backend, and the no-op backend for platforms
// with neither runtime. Exactly one backend is constructed per process;
// hosts select it at build time (see cmd/consentctl).
package cmp

import (
	"sync/atomic"

	"consentbridge/internal/domain"
)

// lifecycle tracks a backend's initialization state. The flag transitions
// false→true exactly once and never reverts; re-initialization is a no-op.
type lifecycle struct {
	initialized atomic.Bool
	closed      atomic.Bool
}

// begin marks the backend initialized. It reports whether this call was
// the first one, i.e. whether setup should actually run.
func (l *lifecycle) begin() bool {
	return !l.initialized.Swap(true)
}

func (l *lifecycle) isInitialized() bool { return l.initialized.Load() }

// shutdown marks the backend closed. Reports whether this call was the
// first one.
func (l *lifecycle) shutdown() bool {
	return !l.closed.Swap(true)
}

// guard returns the initialization-guard error for op, or nil when the
// backend is ready to serve it.
func (l *lifecycle) guard(op string) error {
	if !l.initialized.Load() {
		return domain.NewUninitializedError(op)
	}
	return nil
}

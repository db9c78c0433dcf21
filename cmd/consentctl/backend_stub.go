//go:build !web && !native

package main

import (
	"log/slog"

	"consentbridge/internal/adapter/cmp"
	"consentbridge/internal/domain"
	"consentbridge/internal/infra/config"
	"consentbridge/internal/usecase/consentbus"
)

// newBackend selects the no-op backend when neither platform tag is set.
func newBackend(_ *config.Config, _ domain.TrackingPolicy, log *slog.Logger) (domain.PrivacyManager, error) {
	log.Warn("no platform build tag set, consent management is a no-op")
	return cmp.NewUnsupportedBackend(consentbus.New(log)), nil
}

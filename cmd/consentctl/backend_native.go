//go:build native && !web

package main

import (
	"log/slog"

	"consentbridge/internal/adapter/cmp"
	"consentbridge/internal/adapter/cmp/embedded"
	"consentbridge/internal/domain"
	"consentbridge/internal/infra/config"
	"consentbridge/internal/usecase/consentbus"
)

// newBackend selects the native SDK backend in native builds, wired to the
// embedded SDK.
func newBackend(cfg *config.Config, tracked domain.TrackingPolicy, log *slog.Logger) (domain.PrivacyManager, error) {
	services := make([]embedded.ServiceDefinition, 0, len(cfg.Native.Services))
	for _, s := range cfg.Native.Services {
		services = append(services, embedded.ServiceDefinition{
			TemplateID: s.TemplateID,
			Name:       s.Name,
			Default:    s.Default,
		})
	}

	sdk, err := embedded.New(embedded.Config{
		DatabasePath: cfg.Native.DatabasePath,
		ExportDir:    cfg.Native.ExportDir,
		Services:     services,
	})
	if err != nil {
		return nil, err
	}

	bus := consentbus.New(log)
	native := cmp.NewNativeBackend(sdk, cmp.BreakerConfig{
		MaxFailures: cfg.Native.Breaker.MaxFailures,
		Timeout:     cfg.Native.Breaker.Timeout,
		Interval:    cfg.Native.Breaker.Interval,
	}, tracked, bus, log)
	log.Info("consent backend selected", "backend", "native")
	return native, nil
}

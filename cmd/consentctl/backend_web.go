//go:build web

package main

import (
	"log/slog"

	"consentbridge/internal/adapter/cmp"
	"consentbridge/internal/domain"
	"consentbridge/internal/infra/config"
	"consentbridge/internal/usecase/consentbus"
)

// newBackend selects the browser-bridged backend in web builds.
func newBackend(cfg *config.Config, tracked domain.TrackingPolicy, log *slog.Logger) (domain.PrivacyManager, error) {
	bus := consentbus.New(log)
	web := cmp.NewWebBackend(cmp.WebConfig{
		LoaderURL:     cfg.Web.LoaderURL,
		PageURL:       cfg.Web.PageURL,
		RemoteURL:     cfg.Web.RemoteURL,
		Headless:      cfg.Web.Headless,
		ReadyTimeout:  cfg.Web.ReadyTimeout,
		ActionTimeout: cfg.Web.ActionTimeout,
		DispatchRate:  cfg.Web.DispatchRate,
		DispatchBurst: cfg.Web.DispatchBurst,
	}, tracked, bus, log)
	log.Info("consent backend selected", "backend", "web")
	return web, nil
}

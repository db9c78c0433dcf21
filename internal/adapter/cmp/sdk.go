package cmp

import (
	"context"

	"consentbridge/internal/domain"
)

// Snapshot is the vendor-shaped consent state returned by every mutating
// SDK call. The native backend maps it field-by-field into the domain
// model immediately upon return.
type Snapshot struct {
	ControllerID string        `json:"controller_id"`
	Services     []ServiceInfo `json:"services"`
}

// ServiceInfo is a single vendor service entry inside a Snapshot.
type ServiceInfo struct {
	TemplateID string `json:"id"`
	Name       string `json:"name"`
	Granted    bool   `json:"granted"`
}

// Decision is a single per-service choice submitted to the SDK.
type Decision struct {
	ServiceID string `json:"service_id"`
	Consent   bool   `json:"consent"`
}

// SDK is the boundary to the in-process vendor SDK consumed by the native
// backend. Calls are synchronous by contract: each returns a full consent
// snapshot, so no event bridge is needed. Implementations must be safe for
// use from a single backend instance; the backend serializes access.
type SDK interface {
	Initialize(ctx context.Context, settingsID string, lang domain.Language) (Snapshot, error)
	RestoreSession(ctx context.Context, uid string) (Snapshot, error)
	ClearSession(ctx context.Context) (Snapshot, error)
	ShowFirstLayer(ctx context.Context) (Snapshot, error)
	ShowSecondLayer(ctx context.Context) (Snapshot, error)
	SaveDecisions(ctx context.Context, decisions []Decision) (Snapshot, error)
	AcceptAll(ctx context.Context) (Snapshot, error)
	DenyAll(ctx context.Context) (Snapshot, error)
	ChangeLanguage(ctx context.Context, lang domain.Language) (Snapshot, error)
	// ShouldCollectConsent reports the vendor's explicit "no decision yet"
	// flag used by ShowPrivacyBannerIfNeeded.
	ShouldCollectConsent(ctx context.Context) (bool, error)
	// DataFileURL returns a link to the current session's exported data,
	// or ok=false when the SDK cannot produce one.
	DataFileURL(ctx context.Context) (url string, ok bool, err error)
	Close() error
}

// mapSnapshot converts a vendor snapshot into the domain model.
func mapSnapshot(s Snapshot) []domain.ServiceConsent {
	out := make([]domain.ServiceConsent, 0, len(s.Services))
	for _, svc := range s.Services {
		out = append(out, domain.ServiceConsent{
			TemplateID: svc.TemplateID,
			Status:     svc.Granted,
			Name:       svc.Name,
		})
	}
	return domain.NormalizeConsents(out)
}

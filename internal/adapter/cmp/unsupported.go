package cmp

import (
	"context"

	"consentbridge/internal/domain"
	"consentbridge/internal/usecase/consentbus"
)

// UnsupportedBackend is the backend for platforms with neither a native
// runtime nor a browser runtime. Every write is a no-op, every read
// returns a safe default, and the consent stream holds a single empty set
// forever. It never raises, not even before Initialize, so host code
// compiled for an unsupported platform stays runtime-safe.
type UnsupportedBackend struct {
	state lifecycle
	bus   *consentbus.Bus
}

// NewUnsupportedBackend creates a no-op backend.
func NewUnsupportedBackend(bus *consentbus.Bus) *UnsupportedBackend {
	return &UnsupportedBackend{bus: bus}
}

func (u *UnsupportedBackend) Initialize(_ context.Context, _ domain.InitOptions) error {
	u.state.begin()
	return nil
}
func (u *UnsupportedBackend) LoginUser(_ context.Context, _ string) error              { return nil }
func (u *UnsupportedBackend) LogoutUser(_ context.Context) error                       { return nil }
func (u *UnsupportedBackend) ShowPrivacyBanner(_ context.Context) error                { return nil }
func (u *UnsupportedBackend) ShowPrivacyManager(_ context.Context) error               { return nil }
func (u *UnsupportedBackend) ShowPrivacyBannerIfNeeded(_ context.Context) error        { return nil }

func (u *UnsupportedBackend) SetConsentStatus(_ context.Context, _ string, _ bool) error {
	return nil
}

func (u *UnsupportedBackend) GetConsentStatus(_ string) (bool, error) { return false, nil }

func (u *UnsupportedBackend) SetTrackingEnabled(_ context.Context, _ bool) error { return nil }

func (u *UnsupportedBackend) IsUserTracked() (bool, error) { return false, nil }

func (u *UnsupportedBackend) RequestDataDeletion(_ context.Context) (domain.DeletionResult, error) {
	return domain.DeletionResult{
		Success: false,
		Message: "consent management is not supported on this platform",
	}, nil
}

func (u *UnsupportedBackend) RequestDataAccess(_ context.Context) (domain.DataAccessResult, error) {
	return domain.DataAccessResult{
		Success: false,
		Message: "consent management is not supported on this platform",
	}, nil
}

func (u *UnsupportedBackend) ChangeLanguage(_ context.Context, _ domain.Language) error { return nil }

func (u *UnsupportedBackend) Subscribe() (<-chan []domain.ServiceConsent, func()) {
	return u.bus.Subscribe()
}

func (u *UnsupportedBackend) IsInitialized() bool { return u.state.isInitialized() }

func (u *UnsupportedBackend) Close(_ context.Context) error {
	if u.state.shutdown() {
		u.bus.Close()
	}
	return nil
}

var _ domain.PrivacyManager = (*UnsupportedBackend)(nil)

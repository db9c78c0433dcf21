// Package usecase wires the selected consent backend behind the facade the
// host application talks to.
package usecase

import (
	"context"
	"sync"

	"consentbridge/internal/domain"
	"consentbridge/internal/infra/tracer"
)

// Facade owns the one backend selected for this process and forwards every
// contract operation to it unmodified, hiding backend identity from
// callers. It has no state of its own beyond the delegate reference, so it
// has no failure modes beyond the delegate's; the only logic it adds is a
// tracing span per operation.
type Facade struct {
	backend domain.PrivacyManager
}

// NewFacade wraps the selected backend. Construct exactly one Facade at
// application bootstrap and pass it to consumers; see InitDefault for the
// package-level convenience instance.
func NewFacade(backend domain.PrivacyManager) *Facade {
	return &Facade{backend: backend}
}

func (f *Facade) Initialize(ctx context.Context, opts domain.InitOptions) error {
	ctx, span := tracer.StartSpan(ctx, "consent.Initialize",
		tracer.WithAttributes(tracer.StringAttr("settings_id", opts.SettingsID)))
	defer span.End()
	return f.traced(span, f.backend.Initialize(ctx, opts))
}

func (f *Facade) LoginUser(ctx context.Context, uid string) error {
	ctx, span := tracer.StartSpan(ctx, "consent.LoginUser")
	defer span.End()
	return f.traced(span, f.backend.LoginUser(ctx, uid))
}

func (f *Facade) LogoutUser(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "consent.LogoutUser")
	defer span.End()
	return f.traced(span, f.backend.LogoutUser(ctx))
}

func (f *Facade) ShowPrivacyBanner(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "consent.ShowPrivacyBanner")
	defer span.End()
	return f.traced(span, f.backend.ShowPrivacyBanner(ctx))
}

func (f *Facade) ShowPrivacyManager(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "consent.ShowPrivacyManager")
	defer span.End()
	return f.traced(span, f.backend.ShowPrivacyManager(ctx))
}

func (f *Facade) ShowPrivacyBannerIfNeeded(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "consent.ShowPrivacyBannerIfNeeded")
	defer span.End()
	return f.traced(span, f.backend.ShowPrivacyBannerIfNeeded(ctx))
}

func (f *Facade) SetConsentStatus(ctx context.Context, serviceID string, status bool) error {
	ctx, span := tracer.StartSpan(ctx, "consent.SetConsentStatus",
		tracer.WithAttributes(tracer.StringAttr("service_id", serviceID)))
	defer span.End()
	return f.traced(span, f.backend.SetConsentStatus(ctx, serviceID, status))
}

func (f *Facade) GetConsentStatus(serviceID string) (bool, error) {
	return f.backend.GetConsentStatus(serviceID)
}

func (f *Facade) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	ctx, span := tracer.StartSpan(ctx, "consent.SetTrackingEnabled")
	defer span.End()
	return f.traced(span, f.backend.SetTrackingEnabled(ctx, enabled))
}

func (f *Facade) IsUserTracked() (bool, error) {
	return f.backend.IsUserTracked()
}

func (f *Facade) RequestDataDeletion(ctx context.Context) (domain.DeletionResult, error) {
	ctx, span := tracer.StartSpan(ctx, "consent.RequestDataDeletion")
	defer span.End()
	res, err := f.backend.RequestDataDeletion(ctx)
	return res, f.traced(span, err)
}

func (f *Facade) RequestDataAccess(ctx context.Context) (domain.DataAccessResult, error) {
	ctx, span := tracer.StartSpan(ctx, "consent.RequestDataAccess")
	defer span.End()
	res, err := f.backend.RequestDataAccess(ctx)
	return res, f.traced(span, err)
}

func (f *Facade) ChangeLanguage(ctx context.Context, lang domain.Language) error {
	ctx, span := tracer.StartSpan(ctx, "consent.ChangeLanguage",
		tracer.WithAttributes(tracer.StringAttr("language", string(lang))))
	defer span.End()
	return f.traced(span, f.backend.ChangeLanguage(ctx, lang))
}

func (f *Facade) Subscribe() (<-chan []domain.ServiceConsent, func()) {
	return f.backend.Subscribe()
}

func (f *Facade) IsInitialized() bool { return f.backend.IsInitialized() }

func (f *Facade) Close(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "consent.Close")
	defer span.End()
	return f.traced(span, f.backend.Close(ctx))
}

// traced records err on span and passes it through.
func (f *Facade) traced(span tracer.Span, err error) error {
	if err != nil {
		tracer.RecordError(span, err)
	}
	return err
}

var _ domain.PrivacyManager = (*Facade)(nil)

// The process-wide default facade. It is created exactly once, on the
// first InitDefault call; later calls return the existing instance and
// ignore their argument. Hosts that prefer explicit wiring can skip this
// and pass a Facade around themselves.
var (
	defaultOnce   sync.Once
	defaultFacade *Facade
)

// InitDefault installs the process-wide facade around backend on first
// call and returns it.
func InitDefault(backend domain.PrivacyManager) *Facade {
	defaultOnce.Do(func() {
		defaultFacade = NewFacade(backend)
	})
	return defaultFacade
}

// Default returns the process-wide facade, or nil before InitDefault.
func Default() *Facade {
	return defaultFacade
}

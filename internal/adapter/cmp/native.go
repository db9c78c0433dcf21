package cmp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"consentbridge/internal/domain"
	"consentbridge/internal/usecase/consentbus"
)

// Default circuit breaker settings for vendor SDK calls.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker around the vendor SDK.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration `yaml:"timeout"`
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration `yaml:"interval"`
}

// NativeBackend bridges to an in-process vendor SDK. Calls are synchronous
// and return full consent snapshots, so state is resynchronized directly
// from each call's return value and published on the stream; no event
// bridge is involved.
//
// SDK calls run through a circuit breaker: when the SDK fails repeatedly,
// subsequent calls fail fast and the last good consent set is kept. The
// host never sees those failures; partial data beats blocking a compliance
// subsystem.
type NativeBackend struct {
	mu      sync.Mutex
	state   lifecycle
	sdk     SDK
	breaker *gobreaker.CircuitBreaker[Snapshot]
	bus     *consentbus.Bus
	tracked domain.TrackingPolicy
	logger  *slog.Logger
}

// NewNativeBackend wraps sdk. A nil tracking policy defaults to
// domain.TrackedWhenAnyGranted.
func NewNativeBackend(sdk SDK, cfg BreakerConfig, tracked domain.TrackingPolicy, bus *consentbus.Bus, logger *slog.Logger) *NativeBackend {
	if tracked == nil {
		tracked = domain.TrackedWhenAnyGranted
	}

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[Snapshot](gobreaker.Settings{
		Name:        "cmp:native",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("vendor sdk circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &NativeBackend{
		sdk:     sdk,
		breaker: cb,
		bus:     bus,
		tracked: tracked,
		logger:  logger,
	}
}

// call runs one vendor SDK operation through the breaker. On success the
// returned snapshot supersedes the cache wholesale and is emitted. On any
// failure (including an open circuit) the previous cache stays intact and
// nothing propagates to the caller.
func (n *NativeBackend) call(op string, fn func() (Snapshot, error)) {
	snap, err := n.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			n.logger.Warn("vendor sdk circuit open, keeping last known consents", "op", op)
			return
		}
		n.logger.Error("vendor sdk call failed, keeping last known consents", "op", op, "error", err)
		return
	}
	n.bus.Publish(mapSnapshot(snap))
}

func (n *NativeBackend) Initialize(ctx context.Context, opts domain.InitOptions) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.state.begin() {
		n.logger.Debug("initialize called twice, ignoring")
		return nil
	}

	lang := opts.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	// Fail-open: a vendor outage during startup degrades to an empty
	// consent set instead of blocking the host application.
	n.call("Initialize", func() (Snapshot, error) {
		return n.sdk.Initialize(ctx, opts.SettingsID, lang)
	})

	if opts.UserID != "" {
		n.call("Initialize", func() (Snapshot, error) {
			return n.sdk.RestoreSession(ctx, opts.UserID)
		})
	}
	return nil
}

func (n *NativeBackend) LoginUser(ctx context.Context, uid string) error {
	if err := n.state.guard("LoginUser"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("LoginUser", func() (Snapshot, error) { return n.sdk.RestoreSession(ctx, uid) })
	return nil
}

func (n *NativeBackend) LogoutUser(ctx context.Context) error {
	if err := n.state.guard("LogoutUser"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("LogoutUser", func() (Snapshot, error) { return n.sdk.ClearSession(ctx) })
	return nil
}

func (n *NativeBackend) ShowPrivacyBanner(ctx context.Context) error {
	if err := n.state.guard("ShowPrivacyBanner"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("ShowPrivacyBanner", func() (Snapshot, error) { return n.sdk.ShowFirstLayer(ctx) })
	return nil
}

func (n *NativeBackend) ShowPrivacyManager(ctx context.Context) error {
	if err := n.state.guard("ShowPrivacyManager"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("ShowPrivacyManager", func() (Snapshot, error) { return n.sdk.ShowSecondLayer(ctx) })
	return nil
}

func (n *NativeBackend) ShowPrivacyBannerIfNeeded(ctx context.Context) error {
	if err := n.state.guard("ShowPrivacyBannerIfNeeded"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	// The vendor's explicit flag decides, not cache emptiness.
	needed, err := n.sdk.ShouldCollectConsent(ctx)
	if err != nil {
		n.logger.Error("should-collect query failed, skipping banner", "error", err)
		return nil
	}
	if !needed {
		return nil
	}
	n.call("ShowPrivacyBannerIfNeeded", func() (Snapshot, error) { return n.sdk.ShowFirstLayer(ctx) })
	return nil
}

func (n *NativeBackend) SetConsentStatus(ctx context.Context, serviceID string, status bool) error {
	if err := n.state.guard("SetConsentStatus"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	// Read-modify-write: change only the matching entry, submit the full
	// set, then resynchronize from the SDK's authoritative response.
	merged := domain.MergeConsentStatus(n.bus.Latest(), serviceID, status)
	decisions := make([]Decision, 0, len(merged))
	for _, c := range merged {
		decisions = append(decisions, Decision{ServiceID: c.TemplateID, Consent: c.Status})
	}
	n.call("SetConsentStatus", func() (Snapshot, error) { return n.sdk.SaveDecisions(ctx, decisions) })
	return nil
}

func (n *NativeBackend) GetConsentStatus(serviceID string) (bool, error) {
	if err := n.state.guard("GetConsentStatus"); err != nil {
		return false, err
	}
	return domain.ConsentStatusOf(n.bus.Latest(), serviceID), nil
}

func (n *NativeBackend) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	if err := n.state.guard("SetTrackingEnabled"); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if enabled {
		n.call("SetTrackingEnabled", func() (Snapshot, error) { return n.sdk.AcceptAll(ctx) })
	} else {
		n.call("SetTrackingEnabled", func() (Snapshot, error) { return n.sdk.DenyAll(ctx) })
	}
	return nil
}

func (n *NativeBackend) IsUserTracked() (bool, error) {
	if err := n.state.guard("IsUserTracked"); err != nil {
		return false, err
	}
	return n.tracked(n.bus.Latest()), nil
}

func (n *NativeBackend) RequestDataDeletion(ctx context.Context) (domain.DeletionResult, error) {
	if err := n.state.guard("RequestDataDeletion"); err != nil {
		return domain.DeletionResult{}, err
	}
	if err := n.LogoutUser(ctx); err != nil {
		return domain.DeletionResult{}, err
	}
	return domain.DeletionResult{
		Success: true,
		Message: "local consent data deleted; request server-side erasure through your controller API",
	}, nil
}

func (n *NativeBackend) RequestDataAccess(ctx context.Context) (domain.DataAccessResult, error) {
	if err := n.state.guard("RequestDataAccess"); err != nil {
		return domain.DataAccessResult{}, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	url, ok, err := n.sdk.DataFileURL(ctx)
	if err != nil {
		n.logger.Error("data file export failed", "error", err)
		ok = false
	}
	if !ok {
		return domain.DataAccessResult{
			Success: false,
			Message: "no data file available; request data access through your controller API",
		}, nil
	}
	return domain.DataAccessResult{
		Success: true,
		DataURL: url,
		Message: "consent data file exported",
	}, nil
}

func (n *NativeBackend) ChangeLanguage(ctx context.Context, lang domain.Language) error {
	if err := n.state.guard("ChangeLanguage"); err != nil {
		return err
	}
	if !lang.Valid() {
		return domain.NewDomainError("ChangeLanguage", domain.ErrLanguageUnknown, string(lang))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.call("ChangeLanguage", func() (Snapshot, error) { return n.sdk.ChangeLanguage(ctx, lang) })
	return nil
}

func (n *NativeBackend) Subscribe() (<-chan []domain.ServiceConsent, func()) {
	return n.bus.Subscribe()
}

func (n *NativeBackend) IsInitialized() bool { return n.state.isInitialized() }

func (n *NativeBackend) Close(_ context.Context) error {
	if !n.state.shutdown() {
		return nil
	}
	n.bus.Close()
	return n.sdk.Close()
}

var _ domain.PrivacyManager = (*NativeBackend)(nil)

package domain

import "context"

// InitOptions configures the first (and only effective) Initialize call.
type InitOptions struct {
	// SettingsID identifies the vendor configuration to load.
	SettingsID string
	// UserID, when non-empty, restores that user's session as part of
	// initialization.
	UserID string
	// Language requests the vendor UI language. Zero value means
	// DefaultLanguage.
	Language Language
}

// TrackingPolicy decides whether a cached consent set counts as "the user
// is tracked". The boundary is a product decision, not a technical one, so
// it is injected rather than hardcoded.
type TrackingPolicy func(consents []ServiceConsent) bool

// TrackedWhenAnyGranted reports tracking iff at least one consent is granted.
func TrackedWhenAnyGranted(consents []ServiceConsent) bool {
	for _, c := range consents {
		if c.Status {
			return true
		}
	}
	return false
}

// TrackedWhenAllGranted reports tracking only when every consent is granted
// and the set is non-empty.
func TrackedWhenAllGranted(consents []ServiceConsent) bool {
	if len(consents) == 0 {
		return false
	}
	for _, c := range consents {
		if !c.Status {
			return false
		}
	}
	return true
}

// NeverTracked reports no tracking regardless of the cached set.
func NeverTracked([]ServiceConsent) bool { return false }

// PrivacyManager is the consent contract every backend implements.
//
// Initialize is idempotent: a second call while already initialized is a
// silent no-op, and vendor failures during setup degrade rather than fail
// (the manager becomes usable with possibly empty consent data). Every
// other operation except IsInitialized, Subscribe and Close fails with an
// initialization-guard error (see NewUninitializedError) until Initialize
// has completed. The unsupported backend is the sole exception: it accepts
// every call as a safe no-op.
type PrivacyManager interface {
	Initialize(ctx context.Context, opts InitOptions) error

	// LoginUser restores uid's consent decisions, replacing the cached set.
	LoginUser(ctx context.Context, uid string) error
	// LogoutUser clears the local session and emits an empty set.
	LogoutUser(ctx context.Context) error

	// ShowPrivacyBanner triggers the first-layer vendor UI.
	ShowPrivacyBanner(ctx context.Context) error
	// ShowPrivacyManager triggers the second-layer vendor UI.
	ShowPrivacyManager(ctx context.Context) error
	// ShowPrivacyBannerIfNeeded shows the first layer only when no consent
	// decision currently exists.
	ShowPrivacyBannerIfNeeded(ctx context.Context) error

	// SetConsentStatus changes only the entry matching serviceID in the full
	// decision set, submits the whole set, and resynchronizes the cache from
	// the backend's authoritative response.
	SetConsentStatus(ctx context.Context, serviceID string, status bool) error
	// GetConsentStatus reads the cache; unknown ids read as false.
	GetConsentStatus(serviceID string) (bool, error)

	// SetTrackingEnabled bulk-accepts or bulk-denies every service.
	SetTrackingEnabled(ctx context.Context, enabled bool) error
	// IsUserTracked evaluates the configured TrackingPolicy on the cache.
	IsUserTracked() (bool, error)

	// RequestDataDeletion clears local consent data (full logout). Backend-
	// side erasure is delegated to the host's own API.
	RequestDataDeletion(ctx context.Context) (DeletionResult, error)
	// RequestDataAccess reports a data file link when the backend has one;
	// otherwise a non-success result with an explanatory message.
	RequestDataAccess(ctx context.Context) (DataAccessResult, error)

	// ChangeLanguage re-requests the vendor UI in lang and resynchronizes so
	// re-translated service names surface immediately.
	ChangeLanguage(ctx context.Context, lang Language) error

	// Subscribe returns a channel that immediately receives the current
	// cached consent set and then every subsequent update, plus an
	// unsubscribe function. New subscribers never observe a stale value
	// after a newer one.
	Subscribe() (<-chan []ServiceConsent, func())

	IsInitialized() bool
	// Close tears down the stream and detaches every registered external
	// event listener. Safe to call more than once.
	Close(ctx context.Context) error
}

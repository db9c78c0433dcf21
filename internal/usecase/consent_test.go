package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentbridge/internal/domain"
)

// recordingBackend captures every forwarded call.
type recordingBackend struct {
	calls       []string
	lastUID     string
	lastService string
	lastStatus  bool
	lastLang    domain.Language
	initialized bool
	err         error
	stream      chan []domain.ServiceConsent
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{stream: make(chan []domain.ServiceConsent, 1)}
}

func (r *recordingBackend) Initialize(_ context.Context, opts domain.InitOptions) error {
	r.calls = append(r.calls, "Initialize")
	r.initialized = true
	return r.err
}

func (r *recordingBackend) LoginUser(_ context.Context, uid string) error {
	r.calls = append(r.calls, "LoginUser")
	r.lastUID = uid
	return r.err
}

func (r *recordingBackend) LogoutUser(context.Context) error {
	r.calls = append(r.calls, "LogoutUser")
	return r.err
}

func (r *recordingBackend) ShowPrivacyBanner(context.Context) error {
	r.calls = append(r.calls, "ShowPrivacyBanner")
	return r.err
}

func (r *recordingBackend) ShowPrivacyManager(context.Context) error {
	r.calls = append(r.calls, "ShowPrivacyManager")
	return r.err
}

func (r *recordingBackend) ShowPrivacyBannerIfNeeded(context.Context) error {
	r.calls = append(r.calls, "ShowPrivacyBannerIfNeeded")
	return r.err
}

func (r *recordingBackend) SetConsentStatus(_ context.Context, serviceID string, status bool) error {
	r.calls = append(r.calls, "SetConsentStatus")
	r.lastService, r.lastStatus = serviceID, status
	return r.err
}

func (r *recordingBackend) GetConsentStatus(serviceID string) (bool, error) {
	r.calls = append(r.calls, "GetConsentStatus")
	r.lastService = serviceID
	return true, r.err
}

func (r *recordingBackend) SetTrackingEnabled(_ context.Context, enabled bool) error {
	r.calls = append(r.calls, "SetTrackingEnabled")
	r.lastStatus = enabled
	return r.err
}

func (r *recordingBackend) IsUserTracked() (bool, error) {
	r.calls = append(r.calls, "IsUserTracked")
	return true, r.err
}

func (r *recordingBackend) RequestDataDeletion(context.Context) (domain.DeletionResult, error) {
	r.calls = append(r.calls, "RequestDataDeletion")
	return domain.DeletionResult{Success: true, Message: "done"}, r.err
}

func (r *recordingBackend) RequestDataAccess(context.Context) (domain.DataAccessResult, error) {
	r.calls = append(r.calls, "RequestDataAccess")
	return domain.DataAccessResult{Success: true, DataURL: "file:///x"}, r.err
}

func (r *recordingBackend) ChangeLanguage(_ context.Context, lang domain.Language) error {
	r.calls = append(r.calls, "ChangeLanguage")
	r.lastLang = lang
	return r.err
}

func (r *recordingBackend) Subscribe() (<-chan []domain.ServiceConsent, func()) {
	r.calls = append(r.calls, "Subscribe")
	return r.stream, func() {}
}

func (r *recordingBackend) IsInitialized() bool { return r.initialized }

func (r *recordingBackend) Close(context.Context) error {
	r.calls = append(r.calls, "Close")
	return r.err
}

var _ domain.PrivacyManager = (*recordingBackend)(nil)

func TestFacadeForwardsEveryOperation(t *testing.T) {
	backend := newRecordingBackend()
	f := NewFacade(backend)
	ctx := context.Background()

	require.NoError(t, f.Initialize(ctx, domain.InitOptions{SettingsID: "s"}))
	require.NoError(t, f.LoginUser(ctx, "alice"))
	require.NoError(t, f.LogoutUser(ctx))
	require.NoError(t, f.ShowPrivacyBanner(ctx))
	require.NoError(t, f.ShowPrivacyManager(ctx))
	require.NoError(t, f.ShowPrivacyBannerIfNeeded(ctx))
	require.NoError(t, f.SetConsentStatus(ctx, "svc", true))
	require.NoError(t, f.SetTrackingEnabled(ctx, false))
	require.NoError(t, f.ChangeLanguage(ctx, domain.LangGerman))

	status, err := f.GetConsentStatus("svc")
	require.NoError(t, err)
	assert.True(t, status)

	tracked, err := f.IsUserTracked()
	require.NoError(t, err)
	assert.True(t, tracked)

	del, err := f.RequestDataDeletion(ctx)
	require.NoError(t, err)
	assert.True(t, del.Success)

	acc, err := f.RequestDataAccess(ctx)
	require.NoError(t, err)
	assert.Equal(t, "file:///x", acc.DataURL)

	_, cancel := f.Subscribe()
	cancel()
	assert.True(t, f.IsInitialized())
	require.NoError(t, f.Close(ctx))

	assert.Equal(t, []string{
		"Initialize", "LoginUser", "LogoutUser",
		"ShowPrivacyBanner", "ShowPrivacyManager", "ShowPrivacyBannerIfNeeded",
		"SetConsentStatus", "SetTrackingEnabled", "ChangeLanguage",
		"GetConsentStatus", "IsUserTracked",
		"RequestDataDeletion", "RequestDataAccess",
		"Subscribe", "Close",
	}, backend.calls)
	assert.Equal(t, "alice", backend.lastUID)
	assert.Equal(t, domain.LangGerman, backend.lastLang)
}

func TestFacadePropagatesBackendErrors(t *testing.T) {
	backend := newRecordingBackend()
	backend.err = domain.NewUninitializedError("LoginUser")
	f := NewFacade(backend)

	err := f.LoginUser(context.Background(), "alice")
	require.Error(t, err)
	assert.Equal(t, "LoginUser", domain.UninitializedOp(err))
}

func TestInitDefaultInstallsOnce(t *testing.T) {
	first := newRecordingBackend()
	second := newRecordingBackend()

	a := InitDefault(first)
	b := InitDefault(second)

	require.NotNil(t, a)
	assert.Same(t, a, b, "later InitDefault calls must return the first facade")
	assert.Same(t, a, Default())

	require.NoError(t, a.LoginUser(context.Background(), "alice"))
	assert.Equal(t, "alice", first.lastUID)
	assert.Empty(t, second.calls, "the second backend must never be used")
}

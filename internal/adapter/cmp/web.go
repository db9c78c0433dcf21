package cmp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"consentbridge/internal/domain"
	"consentbridge/internal/usecase/consentbus"
)

// Web backend defaults.
const (
	// defaultReadyTimeout bounds how long operations wait for the vendor
	// script's ready signal before proceeding degraded.
	defaultReadyTimeout  = 20 * time.Second
	defaultActionTimeout = 30 * time.Second
	defaultDispatchRate  = rate.Limit(4) // vendor commands per second
	defaultDispatchBurst = 8
)

// WebConfig holds configuration for the browser-bridged backend.
type WebConfig struct {
	// LoaderURL is the vendor loader script source.
	LoaderURL string
	// PageURL is the document the backend drives. Empty means about:blank.
	PageURL string
	// RemoteURL is a CDP WebSocket endpoint for attaching to a running
	// browser. If empty, a local browser is launched.
	RemoteURL string
	// Headless controls whether a locally launched browser runs headless.
	Headless bool
	// ReadyTimeout bounds the readiness gate.
	ReadyTimeout time.Duration
	// ActionTimeout is the per-CDP-action timeout.
	ActionTimeout time.Duration
	// DispatchRate / DispatchBurst pace vendor command injection.
	DispatchRate  float64
	DispatchBurst int
}

// readyGate is a one-shot future resolved by the glue script's ready
// signal or by the bounded timeout, whichever comes first. Operations that
// talk to the vendor UI wait on it so they neither silently run before the
// script loaded nor hang forever when it never loads.
type readyGate struct {
	done chan struct{}
	once sync.Once
}

func newReadyGate() *readyGate { return &readyGate{done: make(chan struct{})} }

func (g *readyGate) resolve() { g.once.Do(func() { close(g.done) }) }

func (g *readyGate) wait(ctx context.Context) {
	select {
	case <-g.done:
	case <-ctx.Done():
	}
}

// WebBackend bridges to a vendor CMP script running in a browser page.
//
// Commands go out as injected single-use script fragments; consent state
// comes back through a CDP binding fed by an injected glue script. The two
// flows are deliberately decoupled: mutating operations return once their
// command is dispatched, and the cache plus stream update when the bridge
// event arrives.
type WebBackend struct {
	mu      sync.Mutex
	state   lifecycle
	cfg     WebConfig
	bus     *consentbus.Bus
	tracked domain.TrackingPolicy
	logger  *slog.Logger
	limiter *rate.Limiter
	gate    *readyGate

	// Browser session. listenCancel detaches the CDP event listener; every
	// registered listener hangs off listenCtx so Close removes all of them
	// deterministically.
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	tabCtx        context.Context
	tabCancel     context.CancelFunc
	listenCancel  context.CancelFunc
	gateTimer     *time.Timer
	connected     bool
}

// NewWebBackend creates the browser-bridged backend. The browser is not
// started until Initialize. A nil tracking policy defaults to
// domain.TrackedWhenAnyGranted.
func NewWebBackend(cfg WebConfig, tracked domain.TrackingPolicy, bus *consentbus.Bus, logger *slog.Logger) *WebBackend {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = defaultActionTimeout
	}
	limit := rate.Limit(cfg.DispatchRate)
	if limit <= 0 {
		limit = defaultDispatchRate
	}
	burst := cfg.DispatchBurst
	if burst <= 0 {
		burst = defaultDispatchBurst
	}
	if tracked == nil {
		tracked = domain.TrackedWhenAnyGranted
	}
	return &WebBackend{
		cfg:     cfg,
		bus:     bus,
		tracked: tracked,
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		gate:    newReadyGate(),
	}
}

func (w *WebBackend) Initialize(ctx context.Context, opts domain.InitOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.state.begin() {
		w.logger.Debug("initialize called twice, ignoring")
		return nil
	}

	// Fail-open throughout: any setup failure leaves the backend
	// initialized but degraded. A CMP outage must never block the host.
	if err := w.startBrowser(); err != nil {
		w.logger.Error("browser start failed, consent backend degraded", "error", err)
		w.gate.resolve()
		return nil
	}

	lang := opts.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	if err := w.installBridge(opts.SettingsID, string(lang)); err != nil {
		w.logger.Error("vendor bridge install failed, consent backend degraded", "error", err)
		w.gate.resolve()
		return nil
	}

	// The gate resolves on the glue's ready signal or after the bounded
	// timeout, whichever first.
	w.gateTimer = time.AfterFunc(w.cfg.ReadyTimeout, func() {
		w.logger.Warn("vendor script ready signal timed out, proceeding degraded",
			"timeout", w.cfg.ReadyTimeout)
		w.gate.resolve()
	})
	w.gate.wait(ctx)

	if opts.UserID != "" {
		w.dispatch(ctx, "restoreUserSession", opts.UserID)
		w.refresh(ctx)
	}
	return nil
}

// startBrowser launches or attaches to a browser and opens the page.
// Caller must hold mu.
func (w *WebBackend) startBrowser() error {
	var allocCtx context.Context
	if w.cfg.RemoteURL != "" {
		allocCtx, w.allocCancel = chromedp.NewRemoteAllocator(context.Background(), w.cfg.RemoteURL)
		w.logger.Info("attaching to remote browser", "url", w.cfg.RemoteURL)
	} else {
		// Copy default options to avoid mutating the package-level slice.
		opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
		copy(opts, chromedp.DefaultExecAllocatorOptions[:])
		opts = append(opts,
			chromedp.Flag("headless", w.cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, w.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		w.logger.Info("launching local browser", "headless", w.cfg.Headless)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	w.browserCancel = browserCancel
	w.tabCtx, w.tabCancel = chromedp.NewContext(browserCtx)

	// Start the browser with an empty action. The CDP session binds to the
	// context passed to the first Run, so tabCtx must not be wrapped in a
	// timeout here.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(w.tabCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			w.teardownBrowser()
			return domain.WrapOp("start browser", err)
		}
	case <-time.After(w.cfg.ActionTimeout):
		w.teardownBrowser()
		return domain.NewDomainError("start browser", domain.ErrVendorCall, "timed out")
	}

	pageURL := w.cfg.PageURL
	if pageURL == "" {
		pageURL = "about:blank"
	}
	tctx, cancel := context.WithTimeout(w.tabCtx, w.cfg.ActionTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Navigate(pageURL)); err != nil {
		w.teardownBrowser()
		return domain.WrapOp("open page", err)
	}

	w.connected = true
	return nil
}

// installBridge registers the CDP binding, attaches the bridge listener,
// and injects the loader and glue scripts. Caller must hold mu.
func (w *WebBackend) installBridge(settingsID, language string) error {
	tctx, cancel := context.WithTimeout(w.tabCtx, w.cfg.ActionTimeout)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return runtime.AddBinding(bridgeBinding).Do(ctx)
	})); err != nil {
		return domain.WrapOp("add bridge binding", err)
	}

	// All bridge listeners live under listenCtx so Close detaches every
	// one of them; a listener surviving disposal would be a leak across
	// re-initialization cycles.
	var listenCtx context.Context
	listenCtx, w.listenCancel = context.WithCancel(w.tabCtx)
	chromedp.ListenTarget(listenCtx, func(ev any) {
		bc, ok := ev.(*runtime.EventBindingCalled)
		if !ok || bc.Name != bridgeBinding {
			return
		}
		w.handleBridge(bc.Payload)
	})

	if err := chromedp.Run(tctx,
		chromedp.Evaluate(loaderScriptJS(w.cfg.LoaderURL, settingsID, language), nil),
		chromedp.Evaluate(glueScriptJS(), nil),
	); err != nil {
		return domain.WrapOp("inject vendor scripts", err)
	}
	return nil
}

// handleBridge processes one glue-script message. Malformed payloads are
// logged and dropped whole; the previous consent set stays intact.
func (w *WebBackend) handleBridge(raw string) {
	msg, consents, err := parseBridgeMessage(raw)
	if err != nil {
		w.logger.Warn("discarding malformed bridge payload", "error", err)
		return
	}
	switch msg.Type {
	case bridgeTypeReady:
		w.logger.Info("vendor script ready")
		w.gate.resolve()
	case bridgeTypeConsents:
		w.bus.Publish(consents)
	case bridgeTypeError:
		w.logger.Warn("vendor glue reported error", "detail", string(msg.Payload))
	default:
		w.logger.Debug("ignoring unknown bridge message", "type", msg.Type)
	}
}

// dispatch injects a single-use command fragment invoking the named vendor
// method. It waits for the readiness gate and paces injection, and it
// never surfaces vendor failures to the caller: command results arrive,
// eventually, through the bridge or not at all.
func (w *WebBackend) dispatch(ctx context.Context, method string, args ...any) {
	if !w.connected {
		w.logger.Debug("degraded backend, skipping vendor command", "method", method)
		return
	}
	w.gate.wait(ctx)
	if err := w.limiter.Wait(ctx); err != nil {
		w.logger.Debug("command pacing interrupted", "method", method, "error", err)
		return
	}

	js, err := commandScriptJS(method, args...)
	if err != nil {
		w.logger.Error("building vendor command failed", "method", method, "error", err)
		return
	}
	tctx, cancel := context.WithTimeout(w.tabCtx, w.cfg.ActionTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Evaluate(js, nil)); err != nil {
		w.logger.Warn("vendor command injection failed", "method", method, "error", err)
	}
}

// refresh asks the glue script to re-collect the current per-service info;
// the authoritative state comes back through the bridge.
func (w *WebBackend) refresh(ctx context.Context) {
	if !w.connected {
		return
	}
	w.gate.wait(ctx)
	tctx, cancel := context.WithTimeout(w.tabCtx, w.cfg.ActionTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Evaluate(collectScriptJS(), nil)); err != nil {
		w.logger.Warn("consent resync request failed", "error", err)
	}
}

func (w *WebBackend) LoginUser(ctx context.Context, uid string) error {
	if err := w.state.guard("LoginUser"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatch(ctx, "restoreUserSession", uid)
	w.refresh(ctx)
	return nil
}

func (w *WebBackend) LogoutUser(ctx context.Context) error {
	if err := w.state.guard("LogoutUser"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatch(ctx, "clearUserSession")
	// The local session clear is authoritative for the cache: emit the
	// empty set now rather than waiting on the bridge.
	w.bus.Publish(nil)
	return nil
}

func (w *WebBackend) ShowPrivacyBanner(ctx context.Context) error {
	if err := w.state.guard("ShowPrivacyBanner"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatch(ctx, "showFirstLayer")
	return nil
}

func (w *WebBackend) ShowPrivacyManager(ctx context.Context) error {
	if err := w.state.guard("ShowPrivacyManager"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatch(ctx, "showSecondLayer")
	return nil
}

func (w *WebBackend) ShowPrivacyBannerIfNeeded(ctx context.Context) error {
	if err := w.state.guard("ShowPrivacyBannerIfNeeded"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	// No vendor-side flag on this platform: an empty cache means no
	// decision has been collected yet.
	if len(w.bus.Latest()) > 0 {
		return nil
	}
	w.dispatch(ctx, "showFirstLayer")
	return nil
}

func (w *WebBackend) SetConsentStatus(ctx context.Context, serviceID string, status bool) error {
	if err := w.state.guard("SetConsentStatus"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	// Read-modify-write: submit the full decision set with only the
	// matching entry changed, then resynchronize from the vendor's
	// authoritative state via the bridge.
	merged := domain.MergeConsentStatus(w.bus.Latest(), serviceID, status)
	decisions := make([]map[string]any, 0, len(merged))
	for _, c := range merged {
		decisions = append(decisions, map[string]any{"serviceId": c.TemplateID, "status": c.Status})
	}
	w.dispatch(ctx, "saveDecisions", decisions)
	w.refresh(ctx)
	return nil
}

func (w *WebBackend) GetConsentStatus(serviceID string) (bool, error) {
	if err := w.state.guard("GetConsentStatus"); err != nil {
		return false, err
	}
	return domain.ConsentStatusOf(w.bus.Latest(), serviceID), nil
}

func (w *WebBackend) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	if err := w.state.guard("SetTrackingEnabled"); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if enabled {
		w.dispatch(ctx, "acceptAllConsents")
	} else {
		w.dispatch(ctx, "denyAllConsents")
	}
	w.refresh(ctx)
	return nil
}

func (w *WebBackend) IsUserTracked() (bool, error) {
	if err := w.state.guard("IsUserTracked"); err != nil {
		return false, err
	}
	return w.tracked(w.bus.Latest()), nil
}

func (w *WebBackend) RequestDataDeletion(ctx context.Context) (domain.DeletionResult, error) {
	if err := w.state.guard("RequestDataDeletion"); err != nil {
		return domain.DeletionResult{}, err
	}
	if err := w.LogoutUser(ctx); err != nil {
		return domain.DeletionResult{}, err
	}
	return domain.DeletionResult{
		Success: true,
		Message: "local consent data deleted; request server-side erasure through your controller API",
	}, nil
}

func (w *WebBackend) RequestDataAccess(_ context.Context) (domain.DataAccessResult, error) {
	if err := w.state.guard("RequestDataAccess"); err != nil {
		return domain.DataAccessResult{}, err
	}
	return domain.DataAccessResult{
		Success: false,
		Message: "no data file available on this platform; request data access through your controller API",
	}, nil
}

func (w *WebBackend) ChangeLanguage(ctx context.Context, lang domain.Language) error {
	if err := w.state.guard("ChangeLanguage"); err != nil {
		return err
	}
	if !lang.Valid() {
		return domain.NewDomainError("ChangeLanguage", domain.ErrLanguageUnknown, string(lang))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatch(ctx, "updateLanguage", string(lang))
	// Re-translated service names surface through the resync.
	w.refresh(ctx)
	return nil
}

func (w *WebBackend) Subscribe() (<-chan []domain.ServiceConsent, func()) {
	return w.bus.Subscribe()
}

func (w *WebBackend) IsInitialized() bool { return w.state.isInitialized() }

func (w *WebBackend) Close(_ context.Context) error {
	if !w.state.shutdown() {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gateTimer != nil {
		w.gateTimer.Stop()
	}
	w.gate.resolve()
	w.teardownBrowser()
	w.bus.Close()
	w.logger.Info("web consent backend closed")
	return nil
}

// teardownBrowser detaches listeners and releases every browser context.
// Caller must hold mu.
func (w *WebBackend) teardownBrowser() {
	w.connected = false
	if w.listenCancel != nil {
		w.listenCancel()
		w.listenCancel = nil
	}
	if w.tabCancel != nil {
		w.tabCancel()
		w.tabCancel = nil
	}
	if w.browserCancel != nil {
		w.browserCancel()
		w.browserCancel = nil
	}
	if w.allocCancel != nil {
		w.allocCancel()
		w.allocCancel = nil
	}
}

var _ domain.PrivacyManager = (*WebBackend)(nil)

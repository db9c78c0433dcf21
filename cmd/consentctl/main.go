package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"consentbridge/internal/domain"
	"consentbridge/internal/infra/config"
	"consentbridge/internal/infra/logger"
	"consentbridge/internal/infra/tracer"
	"consentbridge/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Usage = showUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		showUsage()
		os.Exit(2)
	}

	if err := run(*configPath, args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`consentctl - consent management facade host

USAGE:
    consentctl [-config FILE] COMMAND [ARGS]

COMMANDS:
    status              print cached consents and tracking state
    watch               follow the consent stream until interrupted
    banner              show the first-layer privacy banner
    banner-if-needed    show the banner only when no decision exists
    settings            show the second-layer privacy manager
    accept-all          grant every service consent
    deny-all            deny every service consent
    set ID on|off       change one service's consent status
    login UID           restore UID's consent session
    logout              clear the local session
    language CODE       change the vendor UI language
    delete-data         delete local consent data
    export-data         request a consent data file

The backend is chosen at build time: build with -tags web for the
browser-bridged backend, -tags native for the native SDK backend, or no
tag for the no-op backend.`)
}

func run(configPath string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	lang, err := domain.ParseLanguage(langCode(cfg))
	if err != nil {
		return err
	}

	backend, err := newBackend(cfg, trackingPolicy(cfg), log)
	if err != nil {
		return err
	}
	manager := usecase.InitDefault(backend)
	defer manager.Close(context.Background())

	if err := manager.Initialize(ctx, domain.InitOptions{
		SettingsID: cfg.Consent.SettingsID,
		UserID:     cfg.Consent.UserID,
		Language:   lang,
	}); err != nil {
		return err
	}

	return dispatch(ctx, manager, args)
}

func langCode(cfg *config.Config) string {
	if cfg.Consent.Language == "" {
		return string(domain.DefaultLanguage)
	}
	return cfg.Consent.Language
}

func trackingPolicy(cfg *config.Config) domain.TrackingPolicy {
	switch cfg.Consent.TrackingPolicy {
	case "all-granted":
		return domain.TrackedWhenAllGranted
	case "never":
		return domain.NeverTracked
	default:
		return domain.TrackedWhenAnyGranted
	}
}

func dispatch(ctx context.Context, m *usecase.Facade, args []string) error {
	switch args[0] {
	case "status":
		return printStatus(m)
	case "watch":
		return watch(ctx, m)
	case "banner":
		return m.ShowPrivacyBanner(ctx)
	case "banner-if-needed":
		return m.ShowPrivacyBannerIfNeeded(ctx)
	case "settings":
		return m.ShowPrivacyManager(ctx)
	case "accept-all":
		return m.SetTrackingEnabled(ctx, true)
	case "deny-all":
		return m.SetTrackingEnabled(ctx, false)
	case "set":
		if len(args) != 3 || (args[2] != "on" && args[2] != "off") {
			return fmt.Errorf("usage: set ID on|off")
		}
		return m.SetConsentStatus(ctx, args[1], args[2] == "on")
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login UID")
		}
		return m.LoginUser(ctx, args[1])
	case "logout":
		return m.LogoutUser(ctx)
	case "language":
		if len(args) != 2 {
			return fmt.Errorf("usage: language CODE")
		}
		lang, err := domain.ParseLanguage(args[1])
		if err != nil {
			return err
		}
		return m.ChangeLanguage(ctx, lang)
	case "delete-data":
		res, err := m.RequestDataDeletion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("success=%v message=%q\n", res.Success, res.Message)
		return nil
	case "export-data":
		res, err := m.RequestDataAccess(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("success=%v url=%q message=%q\n", res.Success, res.DataURL, res.Message)
		return nil
	default:
		return fmt.Errorf("unknown command: %s (run 'consentctl --help')", args[0])
	}
}

func printStatus(m *usecase.Facade) error {
	ch, cancel := m.Subscribe()
	defer cancel()

	consents := <-ch
	tracked, err := m.IsUserTracked()
	if err != nil {
		return err
	}
	fmt.Printf("initialized=%v tracked=%v services=%d\n", m.IsInitialized(), tracked, len(consents))
	for _, c := range consents {
		fmt.Printf("  %-40s %-30s granted=%v\n", c.TemplateID, c.Name, c.Status)
	}
	return nil
}

func watch(ctx context.Context, m *usecase.Facade) error {
	ch, cancel := m.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case consents, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Printf("consents updated (%d services)\n", len(consents))
			for _, c := range consents {
				fmt.Printf("  %-40s granted=%v\n", c.TemplateID, c.Status)
			}
		}
	}
}

package embedded

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"consentbridge/internal/adapter/cmp"
	"consentbridge/internal/domain"
)

func testCatalog() []ServiceDefinition {
	return []ServiceDefinition{
		{TemplateID: "svc-a", Name: "Analytics", Default: false},
		{TemplateID: "svc-b", Name: "Billing", Default: true},
	}
}

func newTestSDK(t *testing.T, exportDir string) *SDK {
	t.Helper()
	sdk, err := New(Config{
		DatabasePath: filepath.Join(t.TempDir(), "consent.db"),
		ExportDir:    exportDir,
		Services:     testCatalog(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { sdk.Close() })
	return sdk
}

func TestSDKInitializeReflectsCatalogDefaults(t *testing.T) {
	sdk := newTestSDK(t, "")
	snap, err := sdk.Initialize(context.Background(), "settings-1", domain.LangEnglish)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if snap.ControllerID == "" {
		t.Error("controller id must be minted")
	}
	if len(snap.Services) != 2 {
		t.Fatalf("snapshot must cover the catalog: %#v", snap.Services)
	}
	if snap.Services[0].TemplateID != "svc-a" || snap.Services[0].Granted {
		t.Errorf("svc-a should start at its default: %+v", snap.Services[0])
	}
	if !snap.Services[1].Granted {
		t.Errorf("svc-b defaults granted: %+v", snap.Services[1])
	}
}

func TestSDKSaveDecisionsOverlaysCatalog(t *testing.T) {
	sdk := newTestSDK(t, "")
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	snap, err := sdk.SaveDecisions(ctx, []cmp.Decision{{ServiceID: "svc-a", Consent: true}})
	if err != nil {
		t.Fatalf("SaveDecisions: %v", err)
	}
	if !snap.Services[0].Granted {
		t.Errorf("decision must override the default: %+v", snap.Services[0])
	}
	if !snap.Services[1].Granted {
		t.Errorf("undecided service keeps its default: %+v", snap.Services[1])
	}
}

func TestSDKOffCatalogDecisionsAppendSorted(t *testing.T) {
	sdk := newTestSDK(t, "")
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	snap, err := sdk.SaveDecisions(ctx, []cmp.Decision{
		{ServiceID: "zz-extra", Consent: true},
		{ServiceID: "aa-extra", Consent: true},
	})
	if err != nil {
		t.Fatalf("SaveDecisions: %v", err)
	}
	if len(snap.Services) != 4 {
		t.Fatalf("expected catalog + extras, got %#v", snap.Services)
	}
	if snap.Services[2].TemplateID != "aa-extra" || snap.Services[3].TemplateID != "zz-extra" {
		t.Errorf("extras must append in template-id order: %#v", snap.Services[2:])
	}
}

func TestSDKSessionsAreIsolated(t *testing.T) {
	sdk := newTestSDK(t, "")
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, err := sdk.SaveDecisions(ctx, []cmp.Decision{{ServiceID: "svc-a", Consent: true}}); err != nil {
		t.Fatalf("SaveDecisions: %v", err)
	}

	snap, err := sdk.RestoreSession(ctx, "alice")
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if snap.Services[0].Granted {
		t.Errorf("alice must not inherit the anonymous decision: %+v", snap.Services[0])
	}
}

func TestSDKClearSessionEmptiesSnapshot(t *testing.T) {
	sdk := newTestSDK(t, "")
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := sdk.RestoreSession(ctx, "alice"); err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if _, err := sdk.SaveDecisions(ctx, []cmp.Decision{{ServiceID: "svc-a", Consent: true}}); err != nil {
		t.Fatalf("SaveDecisions: %v", err)
	}

	snap, err := sdk.ClearSession(ctx)
	if err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if len(snap.Services) != 0 {
		t.Fatalf("cleared session snapshot must be empty: %#v", snap.Services)
	}

	// Alice's decisions are gone; the next collection starts fresh.
	should, err := sdk.ShouldCollectConsent(ctx)
	if err != nil || !should {
		t.Errorf("ShouldCollectConsent after clear = %v, %v", should, err)
	}
}

func TestSDKShouldCollectConsent(t *testing.T) {
	sdk := newTestSDK(t, "")
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	should, err := sdk.ShouldCollectConsent(ctx)
	if err != nil || !should {
		t.Fatalf("no decisions yet: should = %v, %v", should, err)
	}
	if _, err := sdk.SaveDecisions(ctx, []cmp.Decision{{ServiceID: "svc-a", Consent: false}}); err != nil {
		t.Fatalf("SaveDecisions: %v", err)
	}
	should, err = sdk.ShouldCollectConsent(ctx)
	if err != nil || should {
		t.Fatalf("decision exists: should = %v, %v", should, err)
	}
}

func TestSDKAcceptAndDenyAll(t *testing.T) {
	sdk := newTestSDK(t, "")
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	snap, err := sdk.AcceptAll(ctx)
	if err != nil {
		t.Fatalf("AcceptAll: %v", err)
	}
	for _, svc := range snap.Services {
		if !svc.Granted {
			t.Errorf("%s must be granted after AcceptAll", svc.TemplateID)
		}
	}

	snap, err = sdk.DenyAll(ctx)
	if err != nil {
		t.Fatalf("DenyAll: %v", err)
	}
	for _, svc := range snap.Services {
		if svc.Granted {
			t.Errorf("%s must be denied after DenyAll", svc.TemplateID)
		}
	}
}

func TestSDKDataFileURL(t *testing.T) {
	exportDir := t.TempDir()
	sdk := newTestSDK(t, exportDir)
	ctx := context.Background()
	if _, err := sdk.Initialize(ctx, "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	url, ok, err := sdk.DataFileURL(ctx)
	if err != nil || !ok {
		t.Fatalf("DataFileURL = %q, %v, %v", url, ok, err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("expected file URL, got %q", url)
	}
	path := strings.TrimPrefix(url, "file://")
	if !strings.HasPrefix(path, exportDir) {
		t.Errorf("export must land in the export dir: %q", path)
	}
}

func TestSDKDataFileURLWithoutExportDir(t *testing.T) {
	sdk := newTestSDK(t, "")
	if _, err := sdk.Initialize(context.Background(), "s", domain.LangEnglish); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	url, ok, err := sdk.DataFileURL(context.Background())
	if err != nil || ok || url != "" {
		t.Fatalf("without an export dir: %q, %v, %v", url, ok, err)
	}
}

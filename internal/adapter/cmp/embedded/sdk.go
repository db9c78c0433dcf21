// Package embedded is a self-contained implementation of the vendor SDK
// boundary: a SQLite-backed decision store plus a static service catalog.
// It makes the native backend usable without a proprietary vendor binding
// and stands in for one in tests.
package embedded

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"consentbridge/internal/adapter/cmp"
	"consentbridge/internal/domain"
)

// anonymousUID keys decisions made before any login.
const anonymousUID = "anonymous"

// ServiceDefinition declares one catalog service the SDK tracks consent for.
type ServiceDefinition struct {
	TemplateID string `yaml:"template_id"`
	Name       string `yaml:"name"`
	// Default is the granted state before the user decides.
	Default bool `yaml:"default"`
}

// Config holds embedded SDK settings.
type Config struct {
	// DatabasePath locates the SQLite decision store.
	DatabasePath string `yaml:"database_path"`
	// ExportDir receives data-access export files.
	ExportDir string `yaml:"export_dir"`
	// Services is the consent catalog.
	Services []ServiceDefinition `yaml:"services"`
}

// SDK implements cmp.SDK against the local store.
type SDK struct {
	mu           sync.Mutex
	store        *Store
	catalog      []ServiceDefinition
	exportDir    string
	settingsID   string
	language     domain.Language
	uid          string
	controllerID string
}

// New opens the decision store and returns a ready SDK.
func New(cfg Config) (*SDK, error) {
	store, err := OpenStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &SDK{
		store:     store,
		catalog:   cfg.Services,
		exportDir: cfg.ExportDir,
		uid:       anonymousUID,
	}, nil
}

// newControllerID mints a session identifier.
func newControllerID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func (s *SDK) Initialize(ctx context.Context, settingsID string, lang domain.Language) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsID = settingsID
	s.language = lang
	s.controllerID = newControllerID()
	return s.snapshot(ctx)
}

func (s *SDK) RestoreSession(ctx context.Context, uid string) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid = uid
	s.controllerID = newControllerID()
	return s.snapshot(ctx)
}

// ClearSession forgets the current session. The returned snapshot is
// empty: after a logout there is no decision set until consent is
// collected again.
func (s *SDK) ClearSession(ctx context.Context) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.ClearDecisions(ctx, s.uid); err != nil {
		return cmp.Snapshot{}, err
	}
	s.uid = anonymousUID
	s.controllerID = newControllerID()
	return cmp.Snapshot{ControllerID: s.controllerID}, nil
}

// ShowFirstLayer and ShowSecondLayer render nothing: the embedded SDK has
// no UI surface, the host renders its own and submits via SaveDecisions.
// Both return the current snapshot so callers still resynchronize.
func (s *SDK) ShowFirstLayer(ctx context.Context) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(ctx)
}

func (s *SDK) ShowSecondLayer(ctx context.Context) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(ctx)
}

func (s *SDK) SaveDecisions(ctx context.Context, decisions []cmp.Decision) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		byID[d.ServiceID] = d.Consent
	}
	if err := s.store.SaveDecisions(ctx, s.uid, byID); err != nil {
		return cmp.Snapshot{}, err
	}
	return s.snapshot(ctx)
}

func (s *SDK) AcceptAll(ctx context.Context) (cmp.Snapshot, error) { return s.setAll(ctx, true) }

func (s *SDK) DenyAll(ctx context.Context) (cmp.Snapshot, error) { return s.setAll(ctx, false) }

func (s *SDK) setAll(ctx context.Context, granted bool) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.store.Decisions(ctx, s.uid)
	if err != nil {
		return cmp.Snapshot{}, err
	}
	all := make(map[string]bool, len(s.catalog)+len(stored))
	for _, def := range s.catalog {
		all[def.TemplateID] = granted
	}
	for id := range stored {
		all[id] = granted
	}
	if err := s.store.SaveDecisions(ctx, s.uid, all); err != nil {
		return cmp.Snapshot{}, err
	}
	return s.snapshot(ctx)
}

func (s *SDK) ChangeLanguage(ctx context.Context, lang domain.Language) (cmp.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	return s.snapshot(ctx)
}

func (s *SDK) ShouldCollectConsent(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	has, err := s.store.HasDecisions(ctx, s.uid)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// DataFileURL exports the current session's decisions to a JSON file and
// returns a file URL to it.
func (s *SDK) DataFileURL(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exportDir == "" {
		return "", false, nil
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshal export: %w", err)
	}

	if err := os.MkdirAll(s.exportDir, 0700); err != nil {
		return "", false, fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("consents-%s-%s.json", s.uid, s.controllerID)
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", false, fmt.Errorf("write export: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs, true, nil
}

func (s *SDK) Close() error { return s.store.Close() }

// snapshot overlays stored decisions on the catalog defaults. Catalog
// order is preserved; decisions for services no longer in the catalog are
// appended in template-id order. Caller must hold mu.
func (s *SDK) snapshot(ctx context.Context) (cmp.Snapshot, error) {
	stored, err := s.store.Decisions(ctx, s.uid)
	if err != nil {
		return cmp.Snapshot{}, err
	}

	services := make([]cmp.ServiceInfo, 0, len(s.catalog))
	seen := make(map[string]bool, len(s.catalog))
	for _, def := range s.catalog {
		granted := def.Default
		if v, ok := stored[def.TemplateID]; ok {
			granted = v
		}
		services = append(services, cmp.ServiceInfo{
			TemplateID: def.TemplateID,
			Name:       def.Name,
			Granted:    granted,
		})
		seen[def.TemplateID] = true
	}

	extra := make([]string, 0)
	for id := range stored {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		services = append(services, cmp.ServiceInfo{TemplateID: id, Name: id, Granted: stored[id]})
	}

	return cmp.Snapshot{ControllerID: s.controllerID, Services: services}, nil
}

var _ cmp.SDK = (*SDK)(nil)

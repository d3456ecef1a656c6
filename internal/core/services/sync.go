package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.UpdateService = (*SyncOrchestrator)(nil)

const (
	metaKeyLocale = "sync/locale"
	resourceIndex = "index"
)

// ManifestVersionKey is the metadata key of the last ingested manifest version.
func ManifestVersionKey(locale string) string {
	return "manifest/" + locale + "/version"
}

// SyncConfig names the resources fetched on every pass.
type SyncConfig struct {
	UnitsGroup       string
	SequenceResource string
	ItemsResource    string
}

// DefaultSyncConfig returns the resource names used by the public release.
func DefaultSyncConfig() SyncConfig {
	d := domain.DefaultAppSettings().Content
	return SyncConfig{
		UnitsGroup:       d.UnitsGroup,
		SequenceResource: d.SequenceResource,
		ItemsResource:    d.ItemsResource,
	}
}

// SyncOrchestrator is the single writer of entities, content hashes and
// the version record. Passes are serialised.
type SyncOrchestrator struct {
	content    *RemoteContent
	detector   *ChangeDetector
	meta       driven.MetadataStore
	entities   driven.EntityStore
	index      driving.IndexService
	normaliser driven.Normaliser
	versions   *VersionTracker
	events     driven.EventPublisher
	config     SyncConfig

	mu sync.Mutex
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	content *RemoteContent,
	meta driven.MetadataStore,
	entities driven.EntityStore,
	index driving.IndexService,
	normaliser driven.Normaliser,
	versions *VersionTracker,
	config SyncConfig,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		content:    content,
		detector:   NewChangeDetector(meta),
		meta:       meta,
		entities:   entities,
		index:      index,
		normaliser: normaliser,
		versions:   versions,
		config:     config,
	}
}

// SetEventPublisher sets the publisher notified when content changes.
func (s *SyncOrchestrator) SetEventPublisher(p driven.EventPublisher) {
	s.events = p
}

// pass is the state of one update pass.
type pass struct {
	runID  string
	locale string

	// bypass treats every fetched resource as changed.
	bypass bool

	// strict aborts the pass on the first failure.
	strict bool

	// switched is set when the previous pass ran for another locale.
	switched bool

	mu              sync.Mutex
	outcome         domain.BatchOutcome
	staged          map[string]any
	manifestVersion string
	commit          string
}

func (p *pass) record(o domain.ResourceOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcome.Add(o)
}

func (p *pass) stage(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staged[key] = value
}

// fatal reports whether a resource failure must abort the pass.
func (p *pass) fatal(err error) bool {
	return err != nil && (p.strict || domain.IsStorage(err))
}

// CheckForUpdates fetches every resource for locale, persists the ones
// whose content changed and rebuilds the index once if any did.
// Per-resource failures degrade to SyncResult.Warning; only storage
// failures are returned as errors.
func (s *SyncOrchestrator) CheckForUpdates(ctx context.Context, locale string) (domain.SyncResult, error) {
	p, version, err := s.run(ctx, locale, false)
	result := domain.SyncResult{RunID: p.runID}
	if err != nil {
		logger.Error("update check %s: %v", p.runID, err)
		return result, err
	}
	result.Updated = p.outcome.AnyChanged()
	result.Version = version
	result.Warning = p.outcome.Warning()
	result.Changed = p.outcome.Changed()
	logger.Info("update check %s: updated=%t version=%q", p.runID, result.Updated, version)
	if result.Warning != "" {
		logger.Warn("update check %s: %s", p.runID, result.Warning)
	}
	return result, nil
}

// ForceUpdateAndReindex runs the pipeline with hash comparison bypassed.
// The first failure of any kind aborts the pass before the index, hashes
// or version record are touched.
func (s *SyncOrchestrator) ForceUpdateAndReindex(ctx context.Context, locale string) domain.ForceResult {
	p, version, err := s.run(ctx, locale, true)
	if err != nil {
		logger.Error("forced refresh %s: %v", p.runID, err)
		return domain.ForceResult{OK: false, Error: err.Error()}
	}
	return domain.ForceResult{OK: true, Version: version}
}

func (s *SyncOrchestrator) run(ctx context.Context, locale string, force bool) (*pass, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if locale == "" {
		locale = s.content.DefaultLocale()
	}
	p := &pass{
		runID:  uuid.NewString(),
		locale: locale,
		bypass: force,
		strict: force,
		staged: make(map[string]any),
	}
	logger.Section("Update " + locale)
	logger.Debug("run %s: force=%t", p.runID, force)

	if err := s.prepareLocale(ctx, p); err != nil {
		return p, "", err
	}

	manifest := s.syncManifest(ctx, p)
	p.record(manifest)
	if p.fatal(manifest.Err) {
		return p, "", manifest.Err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, step := range []func(context.Context, *pass) domain.ResourceOutcome{
		s.syncSequence,
		s.syncUnits,
		s.syncItems,
	} {
		g.Go(func() error {
			out := step(gctx, p)
			p.record(out)
			if p.fatal(out.Err) {
				return out.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p, "", err
	}

	changed := p.outcome.AnyChanged()
	rebuilt := false
	if changed || p.strict || p.switched {
		if _, err := s.index.RebuildIndex(ctx); err != nil {
			if p.fatal(err) {
				return p, "", fmt.Errorf("rebuild index: %w", err)
			}
			p.record(domain.ResourceOutcome{Resource: resourceIndex, Err: err})
		} else {
			rebuilt = true
		}
	}

	version, err := s.composeVersion(ctx, p)
	if err != nil {
		return p, "", err
	}

	// Hashes are only committed once the index reflects the persisted
	// content, so a failed rebuild is retried by the next check.
	staged := map[string]any{}
	record := ""
	if rebuilt || !changed {
		staged = p.staged
		if changed {
			record = version
		}
	}
	if !p.outcome.Failed() {
		staged[metaKeyLocale] = p.locale
	}
	previous, err := s.versions.commit(ctx, record, p.commit, staged)
	if err != nil {
		return p, "", err
	}
	if record != "" && previous != record {
		logger.Info("version %q -> %q", previous, record)
	}

	if changed && rebuilt && s.events != nil {
		s.events.Publish(ctx, domain.ContentUpdated{
			Version: version,
			Locale:  p.locale,
			Changed: p.outcome.Changed(),
			At:      time.Now(),
		})
	}
	return p, version, nil
}

// prepareLocale clears entity tables when the last committed locale differs
// from the requested one. Hashes and the manifest version recorded for the
// requested locale by an earlier session are dropped with them, and cached
// listings are discarded. The new marker is committed only by a pass in
// which every resource succeeded.
func (s *SyncOrchestrator) prepareLocale(ctx context.Context, p *pass) error {
	var last string
	found, err := s.meta.GetMeta(ctx, metaKeyLocale, &last)
	if err != nil {
		return fmt.Errorf("read locale marker: %w", err)
	}
	if !found || last == p.locale {
		return nil
	}
	logger.Info("locale switch %s -> %s: clearing entities", last, p.locale)
	if err := s.entities.ClearEntities(ctx); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	for _, key := range localeKeys(p.locale) {
		if err := s.meta.DeleteMeta(ctx, key); err != nil {
			return fmt.Errorf("drop %s: %w", key, err)
		}
	}
	s.content.InvalidateListings()
	s.normaliser.Reset()
	p.bypass = true
	p.switched = true
	return nil
}

// localeKeys lists the metadata keys describing what was ingested for locale.
func localeKeys(locale string) []string {
	return []string{
		ManifestVersionKey(locale),
		HashKey(locale, domain.ResourceManifest),
		HashKey(locale, domain.ResourceSequence),
		HashKey(locale, domain.ResourceUnits),
		HashKey(locale, domain.ResourceItems),
	}
}

// ingest persists a resource when its hash changed, or unconditionally when
// the pass bypasses hashing, and stages the hash for commit.
func (s *SyncOrchestrator) ingest(
	ctx context.Context,
	p *pass,
	resource, hash string,
	persist func(context.Context) error,
) domain.ResourceOutcome {
	out := domain.ResourceOutcome{Resource: resource, Hash: hash}
	key := HashKey(p.locale, resource)
	if !p.bypass {
		changed, err := s.detector.HasChanged(ctx, key, hash)
		if err != nil {
			out.Err = err
			return out
		}
		if !changed {
			logger.Debug("%s: unchanged (%s)", resource, hash[:8])
			return out
		}
	}
	if err := persist(ctx); err != nil {
		out.Err = err
		return out
	}
	out.Changed = true
	p.stage(key, hash)
	logger.Debug("%s: persisted (%s)", resource, hash[:8])
	return out
}

func (s *SyncOrchestrator) syncManifest(ctx context.Context, p *pass) domain.ResourceOutcome {
	out := domain.ResourceOutcome{Resource: domain.ResourceManifest}

	m, raw, err := s.content.FetchManifest(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	out.Hash = HashPayload(raw)

	var stored string
	found, err := s.meta.GetMeta(ctx, ManifestVersionKey(p.locale), &stored)
	if err != nil {
		out.Err = fmt.Errorf("read manifest version: %w", err)
		return out
	}
	if found && stored == m.Version && !p.bypass {
		logger.Debug("manifest: version %s unchanged", m.Version)
		p.manifestVersion = m.Version
		return out
	}

	bundle, err := s.fetchBundles(ctx, p.locale, m)
	if err != nil {
		out.Err = err
		return out
	}
	if err := s.entities.ReplaceCore(ctx, bundle); err != nil {
		out.Err = fmt.Errorf("persist core bundle: %w", err)
		return out
	}
	out.Changed = true
	p.manifestVersion = m.Version
	p.commit = m.Commit
	p.stage(ManifestVersionKey(p.locale), m.Version)
	logger.Debug("manifest: ingested version %s (%d rules, %d actions, %d operations)",
		m.Version, len(bundle.Rules), len(bundle.Actions), len(bundle.Operations))
	return out
}

// fetchBundles fetches every manifest file, verifies published digests and
// merges the bundles in manifest order.
func (s *SyncOrchestrator) fetchBundles(ctx context.Context, locale string, m *domain.Manifest) (domain.CoreBundle, error) {
	var merged domain.CoreBundle
	for _, f := range m.Files {
		raw, err := s.content.Fetch(ctx, locale, f.Name)
		if err != nil {
			return merged, err
		}
		if f.SHA256 != "" && !strings.EqualFold(HashPayload(raw), f.SHA256) {
			return merged, fmt.Errorf("%w: %s", domain.ErrIntegrity, f.Name)
		}
		var b domain.CoreBundle
		if err := json.Unmarshal(raw, &b); err != nil {
			return merged, fmt.Errorf("%w: %s: %v", domain.ErrParse, f.Name, err)
		}
		merged.Rules = append(merged.Rules, b.Rules...)
		merged.Actions = append(merged.Actions, b.Actions...)
		merged.Operations = append(merged.Operations, b.Operations...)
	}
	return merged, nil
}

func (s *SyncOrchestrator) syncSequence(ctx context.Context, p *pass) domain.ResourceOutcome {
	raw, err := s.content.Fetch(ctx, p.locale, s.config.SequenceResource)
	if err != nil {
		return domain.ResourceOutcome{Resource: domain.ResourceSequence, Err: err}
	}
	return s.ingest(ctx, p, domain.ResourceSequence, HashPayload(raw), func(ctx context.Context) error {
		var articles []domain.Article
		if err := decodeList(raw, "articles", &articles); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrParse, s.config.SequenceResource, err)
		}
		return s.entities.ReplaceArticles(ctx, articles)
	})
}

func (s *SyncOrchestrator) syncItems(ctx context.Context, p *pass) domain.ResourceOutcome {
	raw, err := s.content.Fetch(ctx, p.locale, s.config.ItemsResource)
	if err != nil {
		return domain.ResourceOutcome{Resource: domain.ResourceItems, Err: err}
	}
	return s.ingest(ctx, p, domain.ResourceItems, HashPayload(raw), func(ctx context.Context) error {
		var items []domain.UniversalItem
		if err := decodeList(raw, "items", &items); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrParse, s.config.ItemsResource, err)
		}
		return s.entities.ReplaceItems(ctx, items)
	})
}

// syncUnits fetches the units group item by item. An empty listing, as
// returned when the listing backend is rate limited, is not a change. After
// a locale switch the units table is empty, so an empty listing fails the
// resource and the pass does not commit the new locale.
func (s *SyncOrchestrator) syncUnits(ctx context.Context, p *pass) domain.ResourceOutcome {
	items, err := s.content.FetchGroup(ctx, p.locale, s.config.UnitsGroup)
	if err != nil {
		return domain.ResourceOutcome{Resource: domain.ResourceUnits, Err: err}
	}
	if len(items) == 0 {
		if p.switched {
			return domain.ResourceOutcome{
				Resource: domain.ResourceUnits,
				Err:      fmt.Errorf("%w: no units listed for %s", domain.ErrRateLimited, p.locale),
			}
		}
		logger.Warn("units: no items listed for %s, keeping stored units", p.locale)
		return domain.ResourceOutcome{Resource: domain.ResourceUnits}
	}

	payloads := make(map[string][]byte, len(items))
	for _, it := range items {
		payloads[it.Name] = it.Payload
	}
	return s.ingest(ctx, p, domain.ResourceUnits, HashNamed(payloads), func(ctx context.Context) error {
		units := make([]domain.Unit, 0, len(items))
		for _, it := range items {
			var parsed []domain.Unit
			if err := decodeList(it.Payload, "units", &parsed); err != nil {
				err = fmt.Errorf("%w: %s: %v", domain.ErrParse, it.Name, err)
				if p.strict {
					return err
				}
				logger.Warn("units: %v (skipped)", err)
				continue
			}
			units = append(units, parsed...)
		}
		return s.entities.ReplaceUnits(ctx, units)
	})
}

// composeVersion joins the manifest version and the units and items hashes,
// using the last committed value for any component this pass lacks.
func (s *SyncOrchestrator) composeVersion(ctx context.Context, p *pass) (string, error) {
	manifestVersion := p.manifestVersion
	if manifestVersion == "" {
		if _, err := s.meta.GetMeta(ctx, ManifestVersionKey(p.locale), &manifestVersion); err != nil {
			return "", fmt.Errorf("read manifest version: %w", err)
		}
	}
	units, err := s.component(ctx, p, domain.ResourceUnits)
	if err != nil {
		return "", err
	}
	items, err := s.component(ctx, p, domain.ResourceItems)
	if err != nil {
		return "", err
	}
	return domain.ComposeVersion(manifestVersion, units, items), nil
}

func (s *SyncOrchestrator) component(ctx context.Context, p *pass, resource string) (string, error) {
	if o, ok := p.outcome.Lookup(resource); ok && o.Err == nil && o.Hash != "" {
		return o.Hash, nil
	}
	h, _, err := s.detector.Stored(ctx, HashKey(p.locale, resource))
	return h, err
}

// decodeList decodes a JSON array, a single object, or an object wrapping
// the array under key.
func decodeList[T any](raw []byte, key string, dst *[]T) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty payload")
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, dst)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	if inner, ok := wrapper[key]; ok {
		return json.Unmarshal(inner, dst)
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*dst = []T{one}
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/normalisers"
	"github.com/custodia-labs/rulebook/internal/search"
)

// fakeSource serves payloads and directory listings from memory.
// Paths without a payload are not found.
type fakeSource struct {
	mu      sync.Mutex
	files   map[string][]byte
	errs    map[string]error
	listErr error
	gets    map[string]int
	lists   int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files: make(map[string][]byte),
		errs:  make(map[string]error),
		gets:  make(map[string]int),
	}
}

// put stores a payload. Non-byte values are JSON encoded.
func (f *fakeSource) put(t *testing.T, p string, v any) {
	t.Helper()
	data, ok := v.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[p] = data
}

func (f *fakeSource) remove(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, p)
}

func (f *fakeSource) fail(p string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, p)
		return
	}
	f.errs[p] = err
}

func (f *fakeSource) failList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeSource) getCount(p string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets[p]
}

func (f *fakeSource) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeSource) Get(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets[p]++
	if err := f.errs[p]; err != nil {
		return nil, err
	}
	data, ok := f.files[p]
	if !ok {
		return nil, &domain.FetchError{Path: p, StatusCode: 404, Err: domain.ErrNotFound}
	}
	return append([]byte(nil), data...), nil
}

// List derives directory entries from the stored payload paths.
func (f *fakeSource) List(ctx context.Context, dir string) ([]domain.ListingEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var entries []domain.ListingEntry
	for p := range f.files {
		if path.Dir(p) == dir {
			entries = append(entries, domain.ListingEntry{Name: path.Base(p), Kind: domain.ListingKindFile})
		}
	}
	if len(entries) == 0 {
		return nil, &domain.FetchError{Path: dir, StatusCode: 404, Err: domain.ErrNotFound}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

var (
	_ driven.ContentSource   = (*fakeSource)(nil)
	_ driven.DirectoryLister = (*fakeSource)(nil)
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ContentUpdated
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.ContentUpdated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// syncFixture wires an orchestrator to fake sources and memory stores.
type syncFixture struct {
	data      *fakeSource
	content   *fakeSource
	meta      *memory.MetadataStore
	entities  *memory.EntityStore
	artifacts *memory.IndexStore
	index     *IndexService
	versions  *VersionTracker
	events    *recordingPublisher
	sync      *SyncOrchestrator
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		data:      newFakeSource(),
		content:   newFakeSource(),
		meta:      memory.NewMetadataStore(),
		entities:  memory.NewEntityStore(),
		artifacts: memory.NewIndexStore(),
		events:    &recordingPublisher{},
	}
	norm := normalisers.New(normalisers.NewContext())
	f.index = NewIndexService(f.entities, f.artifacts, norm, search.NewEngine())
	f.versions = NewVersionTracker(f.meta)
	remote := NewRemoteContent(f.data, f.content, f.content, "en")
	f.sync = NewSyncOrchestrator(remote, f.meta, f.entities, f.index, norm, f.versions, DefaultSyncConfig())
	f.sync.SetEventPublisher(f.events)

	f.publish(t, "en", "2024.10.1")
	return f
}

// publish installs a complete release for locale.
func (f *syncFixture) publish(t *testing.T, locale, version string) {
	t.Helper()
	f.data.put(t, "manifest.json", domain.Manifest{
		Version: version,
		Commit:  "c0ffee",
		Files:   []domain.ManifestFile{{Name: "core.json"}},
	})
	f.content.put(t, locale+"/core.json", domain.CoreBundle{
		Rules:   []domain.Rule{{ID: "cover", Name: "Cover", Body: domain.Plain("Obscured targets are harder to hit.")}},
		Actions: []domain.Action{{ID: "dash", Name: "Dash", Body: domain.Plain("Move up to three inches.")}},
		Operations: []domain.Operation{{
			ID: "recover", Name: "Recover Intel", Objective: domain.Plain("Pick up the intel."),
			Actions: []domain.ActionRef{domain.RefTo("dash")},
		}},
	})
	f.content.put(t, locale+"/sequence.json", []domain.Article{
		{ID: "setup", Title: "Set Up", Order: 1, Body: domain.Plain("Place terrain.")},
	})
	f.content.put(t, locale+"/equipment.json", []domain.UniversalItem{
		{ID: "grapnel", Name: "Grapnel", Body: domain.Plain("Climb freely.")},
	})
	f.content.put(t, locale+"/units/wardens.json", domain.Unit{
		ID: "wardens", Name: "Void Wardens", Abbr: "VW",
		Members: []domain.Member{{ID: "sergeant", Name: "Warden Sergeant"}},
	})
}

func (f *syncFixture) versionRecord(t *testing.T) domain.VersionRecord {
	t.Helper()
	var rec domain.VersionRecord
	_, err := f.meta.GetMeta(context.Background(), "version", &rec)
	require.NoError(t, err)
	return rec
}

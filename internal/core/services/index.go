package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Singleflight keys. Concurrent callers of the same operation share one call.
const (
	flightEnsure  = "ensure"
	flightRebuild = "rebuild"
)

// indexHandle boxes an index so it can be swapped atomically.
type indexHandle struct {
	idx driven.SearchIndex
}

// IndexService owns the search index lifecycle:
// Uninitialized -> Loading -> Ready, and Ready -> Loading -> Ready on rebuild.
// The installed index is replaced atomically, so readers always see either
// the previous or the new index.
type IndexService struct {
	entities   driven.EntityStore
	artifacts  driven.IndexStore
	normaliser driven.Normaliser
	engine     driven.IndexEngine

	flight  singleflight.Group
	current atomic.Pointer[indexHandle]

	// generation orders builds by when they started reading entities.
	// installMu guards installed, the generation of the index in place.
	generation atomic.Uint64
	installMu  sync.Mutex
	installed  uint64

	mu    sync.Mutex
	state domain.IndexState

	builds atomic.Int64
	loads  atomic.Int64
}

// NewIndexService creates an index service.
func NewIndexService(
	entities driven.EntityStore,
	artifacts driven.IndexStore,
	normaliser driven.Normaliser,
	engine driven.IndexEngine,
) *IndexService {
	return &IndexService{
		entities:   entities,
		artifacts:  artifacts,
		normaliser: normaliser,
		engine:     engine,
		state:      domain.IndexUninitialized,
	}
}

// Current returns the installed index, or nil before the first load.
func (s *IndexService) Current() driven.SearchIndex {
	if h := s.current.Load(); h != nil {
		return h.idx
	}
	return nil
}

// EnsureIndex returns the installed index. Otherwise it loads the persisted
// artifact, falling back to a full build when the artifact is missing,
// corrupt or incompatible. Concurrent callers share one load.
//
// Cancelling ctx abandons the wait, not the load: its result is installed
// for the next caller.
func (s *IndexService) EnsureIndex(ctx context.Context) (driven.SearchIndex, error) {
	if idx := s.Current(); idx != nil {
		return idx, nil
	}
	return s.await(ctx, flightEnsure, s.loadOrBuild)
}

// RebuildIndex normalises every persisted entity, installs a fresh index and
// persists it. Concurrent callers share one build. The previous index stays
// servable until the new one is installed.
func (s *IndexService) RebuildIndex(ctx context.Context) (driven.SearchIndex, error) {
	return s.await(ctx, flightRebuild, s.build)
}

func (s *IndexService) await(
	ctx context.Context,
	key string,
	op func(context.Context) (driven.SearchIndex, error),
) (driven.SearchIndex, error) {
	work := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		return op(work)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(driven.SearchIndex), nil
	}
}

func (s *IndexService) loadOrBuild(ctx context.Context) (driven.SearchIndex, error) {
	if idx := s.Current(); idx != nil {
		return idx, nil
	}
	s.setState(domain.IndexLoading)

	idx, err := s.load(ctx)
	if err == nil {
		s.installMu.Lock()
		swapped := s.current.CompareAndSwap(nil, &indexHandle{idx: idx})
		s.installMu.Unlock()
		if swapped {
			s.loads.Add(1)
			logger.Debug("index: loaded artifact with %d documents", idx.Len())
		}
		s.setState(domain.IndexReady)
		return s.Current(), nil
	}
	logger.Info("index: %v, rebuilding", err)
	return s.build(ctx)
}

func (s *IndexService) load(ctx context.Context) (driven.SearchIndex, error) {
	data, found, err := s.artifacts.LoadArtifact(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index artifact: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("load index artifact: %w", domain.ErrNotFound)
	}
	return s.engine.Decode(data)
}

// build indexes the persisted entities. A build that started before
// another one has already installed its index is discarded, so an index
// never replaces one built from newer entities.
func (s *IndexService) build(ctx context.Context) (driven.SearchIndex, error) {
	s.setState(domain.IndexLoading)

	gen := s.generation.Add(1)
	batch, err := s.entities.LoadEntities(ctx)
	if err != nil {
		s.restoreState()
		return nil, fmt.Errorf("load entities: %w", err)
	}
	docs := s.normaliser.Normalise(batch)
	idx := s.engine.Build(docs)

	data, err := s.engine.Encode(idx)
	if err != nil {
		s.restoreState()
		return nil, fmt.Errorf("encode index: %w", err)
	}

	s.installMu.Lock()
	defer s.installMu.Unlock()
	if gen < s.installed {
		logger.Debug("index: build %d superseded by build %d", gen, s.installed)
		s.setState(domain.IndexReady)
		return s.Current(), nil
	}
	s.installed = gen
	s.current.Store(&indexHandle{idx: idx})
	s.builds.Add(1)
	s.setState(domain.IndexReady)
	logger.Info("index: built %d documents, %d terms", idx.Len(), idx.Terms())

	if err := s.artifacts.SaveArtifact(ctx, data); err != nil {
		return nil, fmt.Errorf("save index artifact: %w", err)
	}
	return idx, nil
}

func (s *IndexService) setState(state domain.IndexState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// restoreState leaves Loading after a failed build.
func (s *IndexService) restoreState() {
	if s.Current() != nil {
		s.setState(domain.IndexReady)
		return
	}
	s.setState(domain.IndexUninitialized)
}

// State returns the lifecycle state.
func (s *IndexService) State() domain.IndexState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats reports the lifecycle state and counters.
func (s *IndexService) Stats() domain.IndexStats {
	stats := domain.IndexStats{
		State:  s.State(),
		Builds: s.builds.Load(),
		Loads:  s.loads.Load(),
	}
	if idx := s.Current(); idx != nil {
		stats.Documents = idx.Len()
		stats.Terms = idx.Terms()
	}
	return stats
}

package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/cache"
	"github.com/altin/brunoview/internal/logging"
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/search"
)

// Store holds the current dataset. Reloads replace it wholesale; a failed
// reload keeps the previous one.
//
// Each dataset gets its own engine and blob cache. Result ids repeat across
// reloads, so a query still running against an old snapshot must not write
// into the cache of the new one.
type Store struct {
	mu        sync.RWMutex
	source    api.Source
	cacheSize int
	engine    *search.Engine
	loaded    api.Loaded
	ok        bool
	loadedAt  time.Time
	log       *zap.Logger
}

// Snapshot is a dataset together with the engine that searches it.
type Snapshot struct {
	Dataset model.Dataset
	Engine  *search.Engine
}

func NewStore(source api.Source, cacheSize int, log *zap.Logger) *Store {
	return &Store{source: source, cacheSize: cacheSize, log: logging.OrNop(log)}
}

// Reload fetches, validates and normalizes the source. Without a source it
// is a no-op.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return nil
	}
	loaded, err := api.Load(ctx, s.source)
	if err != nil {
		s.log.Warn("reload failed", zap.String("source", s.source.Describe()), zap.Error(err))
		return err
	}

	sd, err := cache.NewForDataset(s.cacheSize, len(loaded.Dataset.Results))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.loaded = loaded
	s.engine = search.New(sd)
	s.ok = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	ds := loaded.Dataset
	s.log.Info("results loaded",
		zap.String("file", loaded.Document.Name),
		zap.String("shape", loaded.Shape.String()),
		zap.Int("runs", len(ds.Runs)),
		zap.Int("results", len(ds.Results)),
		zap.Int("skipped", ds.Skipped),
	)
	if ds.Skipped > 0 {
		s.log.Debug("dropped malformed result entries", zap.Int("skipped", ds.Skipped))
	}
	return nil
}

// Dataset returns the current dataset and whether one has been loaded.
func (s *Store) Dataset() (model.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded.Dataset, s.ok
}

func (s *Store) Document() (api.Document, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded.Document, s.loadedAt, s.ok
}

// Snapshot returns the current dataset and its engine as one consistent pair.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Dataset: s.loaded.Dataset, Engine: s.engine}, s.ok
}

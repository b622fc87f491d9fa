package testkit

import (
	"context"
	"fmt"
	"sync"

	"gometa/app"
	"gometa/domain/core"
	"gometa/domain/synthesis"
	"gometa/internal"
	"gometa/internal/config"
	"gometa/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	ledger *InMemoryLedgerAdapter // Shared ledger instance
}

// NewTestKit creates a new test kit instance
func NewTestKit() (*TestKit, error) {
	return &TestKit{ledger: NewInMemoryLedgerAdapter()}, nil
}

// LedgerAdapter returns a ledger adapter
func (t *TestKit) LedgerAdapter() ports.LedgerPort {
	// Return shared ledger instance so services and assertions use same storage
	return t.ledger
}

// LedgerReaderAdapter returns a ledger reader adapter for queries
func (t *TestKit) LedgerReaderAdapter() ports.LedgerReaderPort {
	// Share the same storage as LedgerAdapter
	return t.ledger
}

// SynthesisService returns a synthesis service wired to the shared ledger
func (t *TestKit) SynthesisService(cfg config.SynthesisConfig) *app.SynthesisService {
	return app.NewSynthesisService(cfg, t.LedgerAdapter(), internal.DefaultLogger)
}

// ScreeningService returns a screening service wired to the shared ledger
func (t *TestKit) ScreeningService(cfg config.DedupeConfig) *app.ScreeningService {
	return app.NewScreeningService(cfg, t.LedgerAdapter(), internal.DefaultLogger)
}

// InMemoryLedgerAdapter implements LedgerPort with in-memory storage
type InMemoryLedgerAdapter struct {
	artifacts      map[core.ArtifactID]core.Artifact
	order          []core.ArtifactID // insertion order, keeps listings stable
	batchArtifacts map[core.BatchID][]core.ArtifactID
	mu             sync.RWMutex
}

func NewInMemoryLedgerAdapter() *InMemoryLedgerAdapter {
	return &InMemoryLedgerAdapter{
		artifacts:      make(map[core.ArtifactID]core.Artifact),
		batchArtifacts: make(map[core.BatchID][]core.ArtifactID),
	}
}

func (s *InMemoryLedgerAdapter) StoreArtifact(ctx context.Context, batchID string, artifact core.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifactID := core.ArtifactID(artifact.ID)
	if _, seen := s.artifacts[artifactID]; !seen {
		s.order = append(s.order, artifactID)

		// Track artifacts by batch
		batchIDTyped := core.BatchID(batchID)
		s.batchArtifacts[batchIDTyped] = append(s.batchArtifacts[batchIDTyped], artifactID)
	}
	s.artifacts[artifactID] = artifact

	return nil
}

func (s *InMemoryLedgerAdapter) ListArtifacts(ctx context.Context, filters ports.ArtifactFilters) ([]core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []core.Artifact
	skipped := 0

	for _, artifactID := range s.order {
		artifact := s.artifacts[artifactID]

		// Apply filters
		if filters.Kind != nil && artifact.Kind != *filters.Kind {
			continue
		}
		if filters.BatchID != nil && !s.inBatch(*filters.BatchID, artifactID) {
			continue
		}
		if skipped < filters.Offset {
			skipped++
			continue
		}

		results = append(results, artifact)
		if filters.Limit > 0 && len(results) >= filters.Limit {
			break
		}
	}

	return results, nil
}

// inBatch reports membership in a batch. Callers hold at least a read lock.
func (s *InMemoryLedgerAdapter) inBatch(batchID core.BatchID, artifactID core.ArtifactID) bool {
	for _, id := range s.batchArtifacts[batchID] {
		if id == artifactID {
			return true
		}
	}
	return false
}

func (s *InMemoryLedgerAdapter) GetArtifact(ctx context.Context, artifactID core.ArtifactID) (*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, exists := s.artifacts[artifactID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, artifactID)
	}

	return &artifact, nil
}

func (s *InMemoryLedgerAdapter) GetArtifactsByBatch(ctx context.Context, batchID core.BatchID) ([]core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifactIDs, exists := s.batchArtifacts[batchID]
	if !exists {
		return []core.Artifact{}, nil
	}

	artifacts := make([]core.Artifact, 0, len(artifactIDs))
	for _, aid := range artifactIDs {
		if artifact, ok := s.artifacts[aid]; ok {
			artifacts = append(artifacts, artifact)
		}
	}

	return artifacts, nil
}

func (s *InMemoryLedgerAdapter) GetArtifactsByKind(ctx context.Context, kind core.ArtifactKind, limit int) ([]core.Artifact, error) {
	return s.ListArtifacts(ctx, ports.ArtifactFilters{Kind: &kind, Limit: limit})
}

func (s *InMemoryLedgerAdapter) GetBatchManifest(ctx context.Context, batchID core.BatchID) (*synthesis.SynthesisManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, aid := range s.batchArtifacts[batchID] {
		artifact, ok := s.artifacts[aid]
		if !ok || artifact.Kind != core.ArtifactSynthesisManifest {
			continue
		}
		manifest, ok := artifact.Payload.(*synthesis.SynthesisManifest)
		if !ok {
			return nil, fmt.Errorf("manifest artifact %s has unexpected payload type %T", aid, artifact.Payload)
		}
		return manifest, nil
	}

	return nil, fmt.Errorf("%w: manifest for batch %s", core.ErrArtifactNotFound, batchID)
}

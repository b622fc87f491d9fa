package ports

import (
	"context"

	"gometa/domain/core"
	"gometa/domain/synthesis"
)

// LedgerWriterPort provides append-only write access to artifacts
// This is the ONLY way to write artifacts - prevents read-after-write coupling
type LedgerWriterPort interface {
	StoreArtifact(ctx context.Context, batchID string, artifact core.Artifact) error
}

// LedgerReaderPort provides read-only access to stored artifacts
// Use this for queries, replay, and API access
type LedgerReaderPort interface {
	// Artifact queries (read-only)
	ListArtifacts(ctx context.Context, filters ArtifactFilters) ([]core.Artifact, error)
	GetArtifact(ctx context.Context, artifactID core.ArtifactID) (*core.Artifact, error)
	GetArtifactsByBatch(ctx context.Context, batchID core.BatchID) ([]core.Artifact, error)
	GetArtifactsByKind(ctx context.Context, kind core.ArtifactKind, limit int) ([]core.Artifact, error)

	// Batch manifest queries
	GetBatchManifest(ctx context.Context, batchID core.BatchID) (*synthesis.SynthesisManifest, error)
}

// ArtifactFilters for querying artifacts
type ArtifactFilters struct {
	BatchID *core.BatchID
	Kind    *core.ArtifactKind
	Limit   int
	Offset  int
}

// LedgerPort combines read and write access for callers that own both sides
type LedgerPort interface {
	LedgerWriterPort
	LedgerReaderPort
}

package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AnalysisID  ID
	BatchID     ID
	ReferenceID ID
	ArtifactID  ID
)

// String conversions for domain IDs
func (id AnalysisID) String() string  { return ID(id).String() }
func (id BatchID) String() string     { return ID(id).String() }
func (id ReferenceID) String() string { return ID(id).String() }
func (id ArtifactID) String() string  { return ID(id).String() }

// ParseAnalysisID parses a string into AnalysisID
func ParseAnalysisID(s string) (AnalysisID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("analysis ID cannot be empty")
	}
	return AnalysisID(s), nil
}

// ParseBatchID parses a string into BatchID
func ParseBatchID(s string) (BatchID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("batch ID cannot be empty")
	}
	return BatchID(s), nil
}

// ParseReferenceID parses a string into ReferenceID
func ParseReferenceID(s string) (ReferenceID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("reference ID cannot be empty")
	}
	return ReferenceID(s), nil
}

// ParseArtifactID parses a string into ArtifactID
func ParseArtifactID(s string) (ArtifactID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("artifact ID cannot be empty")
	}
	return ArtifactID(s), nil
}

// Artifact represents any output of the synthesis pipeline
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts
type ArtifactKind string

const (
	// ArtifactPooledAnalysis is the output of a single pooling run (one PooledResult plus request context).
	ArtifactPooledAnalysis ArtifactKind = "pooled_analysis"
	// ArtifactSkippedAnalysis records why a requested analysis was not pooled.
	ArtifactSkippedAnalysis ArtifactKind = "skipped_analysis"
	// ArtifactSynthesisManifest captures audit metadata for a batch (counts, skip reasons, fingerprint).
	ArtifactSynthesisManifest ArtifactKind = "synthesis_manifest"
	// ArtifactDedupeReport captures identification counts from a dedupe pass.
	ArtifactDedupeReport ArtifactKind = "dedupe_report"
)

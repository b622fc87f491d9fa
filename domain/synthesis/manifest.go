package synthesis

import "gometa/domain/core"

// BatchFingerprint ensures deterministic batch replay
type BatchFingerprint struct {
	AnalysisFingerprints []core.AnalysisFingerprint `json:"analysis_fingerprints"`
	CodeVersion          string                     `json:"code_version"`
	Fingerprint          core.BatchFingerprint      `json:"fingerprint"` // Hash of all above
}

// NewBatchFingerprint hashes the ordered per-analysis fingerprints with
// the code version. Reordering the analyses changes the batch identity.
func NewBatchFingerprint(analysisFingerprints []core.AnalysisFingerprint, codeVersion string) BatchFingerprint {
	parts := make([]string, 0, len(analysisFingerprints)+1)
	for _, fp := range analysisFingerprints {
		parts = append(parts, "analysis:"+fp.String())
	}
	parts = append(parts, "code:"+codeVersion)

	return BatchFingerprint{
		AnalysisFingerprints: analysisFingerprints,
		CodeVersion:          codeVersion,
		Fingerprint:          core.BatchFingerprint(core.ComputeFingerprint(parts...)),
	}
}

// SynthesisManifest is the audit record for one batch of pooling
// requests. This is the "truth source" for replay: it accounts for every
// requested analysis as either completed or skipped with a reason.
type SynthesisManifest struct {
	BatchID     core.BatchID        `json:"batch_id"`
	Requested   int                 `json:"requested"`
	Completed   int                 `json:"completed"`
	Skipped     int                 `json:"skipped"`
	SkipReasons map[string]SkipCode `json:"skip_reasons,omitempty"` // keyed by analysis ID
	Fingerprint BatchFingerprint    `json:"fingerprint"`
	RuntimeMs   int64               `json:"runtime_ms"`
	CreatedAt   core.Timestamp      `json:"created_at"`
}

// NewSynthesisManifest creates an open manifest for a starting batch
func NewSynthesisManifest(batchID core.BatchID, requested int) *SynthesisManifest {
	return &SynthesisManifest{
		BatchID:     batchID,
		Requested:   requested,
		SkipReasons: make(map[string]SkipCode),
		CreatedAt:   core.Now(),
	}
}

// RecordCompletion counts one successfully pooled analysis
func (m *SynthesisManifest) RecordCompletion() {
	m.Completed++
}

// RecordSkip counts one skipped analysis with its reason
func (m *SynthesisManifest) RecordSkip(analysisID core.AnalysisID, code SkipCode) {
	m.Skipped++
	m.SkipReasons[analysisID.String()] = code
}

// ToCoreArtifact converts to a core artifact for ledger storage
func (m *SynthesisManifest) ToCoreArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactSynthesisManifest,
		Payload:   m,
		CreatedAt: m.CreatedAt,
	}
}

// Validate checks if the manifest is complete and internally consistent
func (m *SynthesisManifest) Validate() error {
	if core.ID(m.BatchID).IsEmpty() {
		return core.NewValidationError("synthesis_manifest", "batch_id cannot be empty")
	}
	if m.Completed+m.Skipped != m.Requested {
		return core.NewValidationError("synthesis_manifest", "completed plus skipped must equal requested")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("synthesis_manifest", "fingerprint cannot be empty")
	}
	return nil
}

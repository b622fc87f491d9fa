package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"gometa/domain/core"
	"gometa/domain/meta"
	"gometa/domain/synthesis"
	"gometa/internal"
	"gometa/internal/config"
	apperrors "gometa/internal/errors"
	"gometa/ports"
)

// SynthesisService coordinates pooling analyses and their audit trail.
// Every completed or skipped analysis leaves a ledger artifact, and every
// batch closes with a manifest accounting for all of its requests. The
// ledger is optional: with a nil ledger nothing is persisted, and every
// outcome is still computed and returned.
type SynthesisService struct {
	cfg    config.SynthesisConfig
	ledger ports.LedgerWriterPort
	log    *internal.Logger
}

// NewSynthesisService creates a synthesis service
func NewSynthesisService(cfg config.SynthesisConfig, ledger ports.LedgerWriterPort, logger *internal.Logger) *SynthesisService {
	return &SynthesisService{
		cfg:    cfg,
		ledger: ledger,
		log:    logger.Named("SynthesisService"),
	}
}

// AnalysisRequest defines the inputs for one pooling analysis
type AnalysisRequest struct {
	AnalysisID core.AnalysisID // optional, will be generated if empty
	Label      string
	Studies    []meta.StudyRecord
	Measure    meta.EffectMeasure
	Method     meta.PoolingMethod
}

// AnalysisOutcome contains the complete output of one pooling analysis
type AnalysisOutcome struct {
	AnalysisID  core.AnalysisID          `json:"analysis_id"`
	Label       string                   `json:"label,omitempty"`
	Measure     meta.EffectMeasure       `json:"measure"`
	Method      meta.PoolingMethod       `json:"method"`
	Included    int                      `json:"included"`
	Excluded    int                      `json:"excluded"`
	Result      *meta.PooledResult       `json:"result,omitempty"`
	Skipped     bool                     `json:"skipped"`
	SkipCode    synthesis.SkipCode       `json:"skip_code,omitempty"`
	Fingerprint core.AnalysisFingerprint `json:"fingerprint"`
	RuntimeMs   int64                    `json:"runtime_ms"`
}

// RunAnalysis executes a single pooling analysis and stores its artifact.
// Validation and data-sufficiency failures return typed errors; callers
// that need skip accounting instead of errors should use RunBatch.
func (s *SynthesisService) RunAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisOutcome, error) {
	if req.AnalysisID == "" {
		req.AnalysisID = core.AnalysisID(core.NewID())
	}
	return s.runAnalysis(ctx, req.AnalysisID.String(), req)
}

// runAnalysis pools one request, storing artifacts under the given ledger
// scope (the batch ID, or the analysis ID for standalone runs).
func (s *SynthesisService) runAnalysis(ctx context.Context, scope string, req AnalysisRequest) (*AnalysisOutcome, error) {
	startTime := time.Now()

	measure, err := meta.ParseMeasure(req.Measure.String())
	if err != nil {
		cause := fmt.Errorf("analysis %s: %w: %q", req.AnalysisID, core.ErrUnknownMeasure, req.Measure)
		return nil, s.skip(ctx, scope, req, synthesis.SkipUnknownMeasure, cause)
	}
	method, err := meta.ParseMethod(req.Method.String())
	if err != nil {
		cause := fmt.Errorf("analysis %s: %w: %q", req.AnalysisID, core.ErrUnknownMethod, req.Method)
		return nil, s.skip(ctx, scope, req, synthesis.SkipUnknownMethod, cause)
	}

	if len(req.Studies) < s.cfg.MinStudies {
		cause := fmt.Errorf("analysis %s: %w: %d studies, minimum %d",
			req.AnalysisID, core.ErrInsufficientData, len(req.Studies), s.cfg.MinStudies)
		return nil, s.skip(ctx, scope, req, synthesis.SkipTooFewStudies, cause)
	}

	effects := meta.NormalizeStudies(req.Studies, measure)
	result := meta.PoolEffects(effects, method)
	if result == nil {
		cause := fmt.Errorf("analysis %s: %w under measure %s",
			req.AnalysisID, core.ErrNoPoolableStudies, measure)
		return nil, s.skip(ctx, scope, req, synthesis.SkipNothingPoolable, cause)
	}

	fingerprint := synthesis.ComputeAnalysisFingerprint(req.Studies, measure, method)
	runtimeMs := time.Since(startTime).Milliseconds()

	outcome := &AnalysisOutcome{
		AnalysisID:  req.AnalysisID,
		Label:       req.Label,
		Measure:     measure,
		Method:      method,
		Included:    len(effects),
		Excluded:    len(req.Studies) - len(effects),
		Result:      result,
		Fingerprint: fingerprint,
		RuntimeMs:   runtimeMs,
	}

	if s.cfg.StoreArtifacts && s.ledger != nil {
		artifact := (&synthesis.PooledAnalysisArtifact{
			AnalysisID:  req.AnalysisID,
			Label:       req.Label,
			Measure:     measure,
			Method:      method,
			Included:    outcome.Included,
			Excluded:    outcome.Excluded,
			Result:      result,
			Fingerprint: fingerprint,
			RuntimeMs:   runtimeMs,
			CreatedAt:   core.Now(),
		}).ToCoreArtifact()
		if err := s.ledger.StoreArtifact(ctx, scope, artifact); err != nil {
			return nil, apperrors.LedgerError(
				fmt.Sprintf("failed to store pooled analysis %s", req.AnalysisID), err)
		}
	}

	s.log.Info("Pooled analysis %s (%s/%s): %d studies, effect %.4f [%.4f, %.4f]",
		req.AnalysisID, measure, method, outcome.Included,
		result.Effect, result.CILower, result.CIUpper)

	return outcome, nil
}

// skip records a skipped analysis in the ledger and returns the typed
// error for the caller. Artifact storage here is best effort: losing a
// skip marker must not mask the underlying reason.
func (s *SynthesisService) skip(ctx context.Context, scope string, req AnalysisRequest, code synthesis.SkipCode, cause error) error {
	s.log.Warn("Skipping analysis %s: %v", req.AnalysisID, cause)

	if s.cfg.StoreArtifacts && s.ledger != nil {
		artifact := (&synthesis.SkippedAnalysisArtifact{
			AnalysisID: req.AnalysisID,
			Label:      req.Label,
			Code:       code,
			Detail:     cause.Error(),
			CreatedAt:  core.Now(),
		}).ToCoreArtifact()
		if err := s.ledger.StoreArtifact(ctx, scope, artifact); err != nil {
			s.log.Error("Failed to store skip artifact for %s: %v", req.AnalysisID, err)
		}
	}

	return apperrors.WithCode(appCodeForSkip(code), cause)
}

// appCodeForSkip maps a skip classification onto the error code surface
func appCodeForSkip(code synthesis.SkipCode) string {
	switch code {
	case synthesis.SkipUnknownMeasure, synthesis.SkipUnknownMethod:
		return apperrors.CodeInvalidInput
	default:
		return apperrors.CodeInsufficientData
	}
}

// skipCodeForError classifies a runAnalysis error for batch accounting.
// Returns "" for infrastructure errors, which are never skips.
func skipCodeForError(err error) synthesis.SkipCode {
	switch {
	case errors.Is(err, core.ErrUnknownMeasure):
		return synthesis.SkipUnknownMeasure
	case errors.Is(err, core.ErrUnknownMethod):
		return synthesis.SkipUnknownMethod
	case errors.Is(err, core.ErrNoPoolableStudies):
		return synthesis.SkipNothingPoolable
	case errors.Is(err, core.ErrInsufficientData):
		return synthesis.SkipTooFewStudies
	default:
		return ""
	}
}

// BatchRequest defines a batch of pooling analyses to run together
type BatchRequest struct {
	BatchID  core.BatchID // optional, will be generated if empty
	Analyses []AnalysisRequest
}

// BatchResult contains the complete output of a batch run
type BatchResult struct {
	BatchID     core.BatchID          `json:"batch_id"`
	Outcomes    []*AnalysisOutcome    `json:"outcomes"` // request order, including skips
	Manifest    core.Artifact         `json:"manifest"`
	Fingerprint core.BatchFingerprint `json:"fingerprint"`
	Completed   int                   `json:"completed"`
	Skipped     int                   `json:"skipped"`
	RuntimeMs   int64                 `json:"runtime_ms"`
}

// RunBatch executes a batch of analyses with bounded concurrency and
// stores a manifest accounting for every request. Invalid or
// underpowered requests become skips, never batch failures; only
// infrastructure errors (ledger writes, cancellation) fail the batch.
func (s *SynthesisService) RunBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	startTime := time.Now()

	batchID := req.BatchID
	if batchID == "" {
		batchID = core.BatchID(core.NewID())
	}

	// Assign IDs up front so artifacts, outcomes and the manifest agree.
	analyses := make([]AnalysisRequest, len(req.Analyses))
	copy(analyses, req.Analyses)
	for i := range analyses {
		if analyses[i].AnalysisID == "" {
			analyses[i].AnalysisID = core.AnalysisID(core.NewID())
		}
	}

	s.log.Info("Starting batch %s: %d analyses, max %d concurrent",
		batchID, len(analyses), s.cfg.MaxConcurrent)

	sem := semaphore.NewWeighted(s.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	outcomes := make([]*AnalysisOutcome, len(analyses))
	runErrs := make([]error, len(analyses))

	for i := range analyses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				runErrs[i] = fmt.Errorf("failed to acquire semaphore: %w", err)
				return
			}
			defer sem.Release(1)
			outcomes[i], runErrs[i] = s.runAnalysis(ctx, batchID.String(), analyses[i])
		}(i)
	}
	wg.Wait()

	// Convert classified errors into skip outcomes; anything else aborts.
	manifest := synthesis.NewSynthesisManifest(batchID, len(analyses))
	fingerprints := make([]core.AnalysisFingerprint, len(analyses))
	for i, ar := range analyses {
		fingerprints[i] = synthesis.ComputeAnalysisFingerprint(ar.Studies, ar.Measure, ar.Method)

		if runErrs[i] == nil {
			manifest.RecordCompletion()
			continue
		}
		code := skipCodeForError(runErrs[i])
		if code == "" {
			return nil, fmt.Errorf("batch %s failed at analysis %s: %w", batchID, ar.AnalysisID, runErrs[i])
		}
		manifest.RecordSkip(ar.AnalysisID, code)
		outcomes[i] = &AnalysisOutcome{
			AnalysisID:  ar.AnalysisID,
			Label:       ar.Label,
			Measure:     ar.Measure,
			Method:      ar.Method,
			Skipped:     true,
			SkipCode:    code,
			Fingerprint: fingerprints[i],
		}
	}

	manifest.Fingerprint = synthesis.NewBatchFingerprint(fingerprints, s.cfg.CodeVersion)
	manifest.RuntimeMs = time.Since(startTime).Milliseconds()
	if err := manifest.Validate(); err != nil {
		return nil, apperrors.Wrap(err, "batch manifest failed validation")
	}

	// The manifest is persisted whenever a ledger is present, even when
	// per-analysis artifacts are disabled; it is the batch's replay record.
	manifestArtifact := manifest.ToCoreArtifact()
	if s.ledger != nil {
		if err := s.ledger.StoreArtifact(ctx, batchID.String(), manifestArtifact); err != nil {
			return nil, apperrors.LedgerError(
				fmt.Sprintf("failed to store manifest for batch %s", batchID), err)
		}
	}

	s.log.Info("Finished batch %s: %d completed, %d skipped in %dms",
		batchID, manifest.Completed, manifest.Skipped, manifest.RuntimeMs)

	return &BatchResult{
		BatchID:     batchID,
		Outcomes:    outcomes,
		Manifest:    manifestArtifact,
		Fingerprint: manifest.Fingerprint.Fingerprint,
		Completed:   manifest.Completed,
		Skipped:     manifest.Skipped,
		RuntimeMs:   manifest.RuntimeMs,
	}, nil
}

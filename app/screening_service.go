package app

import (
	"context"
	"fmt"

	"gometa/domain/core"
	"gometa/domain/library"
	"gometa/internal"
	"gometa/internal/config"
	apperrors "gometa/internal/errors"
	"gometa/ports"
)

// ScreeningService reconciles overlapping database exports before
// extraction. Its dedupe report lands in the ledger next to the pooling
// artifacts so the whole review pipeline shares one audit trail.
type ScreeningService struct {
	cfg    config.DedupeConfig
	ledger ports.LedgerWriterPort
	log    *internal.Logger
}

// NewScreeningService creates a screening service
func NewScreeningService(cfg config.DedupeConfig, ledger ports.LedgerWriterPort, logger *internal.Logger) *ScreeningService {
	return &ScreeningService{
		cfg:    cfg,
		ledger: ledger,
		log:    logger.Named("ScreeningService"),
	}
}

// DedupeRequest defines one screening pass over imported references
type DedupeRequest struct {
	ScreenID   core.ID // optional, will be generated if empty
	References []library.Reference
}

// DedupeReferences removes duplicate references and stores the audit
// report when a ledger is present. The surviving set is returned in
// input order.
func (s *ScreeningService) DedupeReferences(ctx context.Context, req DedupeRequest) (*library.DedupeResult, error) {
	screenID := req.ScreenID
	if screenID == "" {
		screenID = core.NewID()
	}

	dedupe := &library.Deduplicator{
		FuzzyThreshold: s.cfg.FuzzyThreshold,
		YearTolerance:  s.cfg.YearTolerance,
	}
	result := dedupe.Dedupe(req.References)

	if s.ledger != nil {
		report := (&library.DedupeReportArtifact{
			Stats:          result.Stats,
			Duplicates:     result.Duplicates,
			FuzzyThreshold: s.cfg.FuzzyThreshold,
			YearTolerance:  s.cfg.YearTolerance,
			CreatedAt:      core.Now(),
		}).ToCoreArtifact()
		if err := s.ledger.StoreArtifact(ctx, screenID.String(), report); err != nil {
			return nil, apperrors.LedgerError(
				fmt.Sprintf("failed to store dedupe report for screen %s", screenID), err)
		}
	}

	s.log.Info("Screened %d references: %d unique, %d removed",
		result.Stats.Total, result.Stats.Unique, result.Stats.Removed)

	return &result, nil
}

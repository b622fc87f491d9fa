package synthesis

import (
	"testing"

	"gometa/domain/core"
	"gometa/domain/meta"
)

func sampleStudies() []meta.StudyRecord {
	return []meta.StudyRecord{
		meta.NewContinuousStudy("alpha", 30, 5.0, 2.0, 30, 3.0, 2.0),
		meta.NewBinaryStudy("bravo", 12, 40, 8, 40),
	}
}

func TestAnalysisFingerprint_Deterministic(t *testing.T) {
	fp1 := ComputeAnalysisFingerprint(sampleStudies(), meta.MeasureMD, meta.MethodFixed)
	fp2 := ComputeAnalysisFingerprint(sampleStudies(), meta.MeasureMD, meta.MethodFixed)

	if fp1 != fp2 {
		t.Errorf("identical inputs produced different fingerprints: %s vs %s", fp1, fp2)
	}
	if fp1 == "" {
		t.Error("fingerprint should not be empty")
	}
}

func TestAnalysisFingerprint_Unique(t *testing.T) {
	base := ComputeAnalysisFingerprint(sampleStudies(), meta.MeasureMD, meta.MethodFixed)

	variants := map[string]core.AnalysisFingerprint{
		"different measure": ComputeAnalysisFingerprint(sampleStudies(), meta.MeasureSMD, meta.MethodFixed),
		"different method":  ComputeAnalysisFingerprint(sampleStudies(), meta.MeasureMD, meta.MethodRandom),
	}

	edited := sampleStudies()
	edited[0] = meta.NewContinuousStudy("alpha", 30, 5.1, 2.0, 30, 3.0, 2.0)
	variants["edited study"] = ComputeAnalysisFingerprint(edited, meta.MeasureMD, meta.MethodFixed)

	reordered := sampleStudies()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	variants["reordered studies"] = ComputeAnalysisFingerprint(reordered, meta.MeasureMD, meta.MethodFixed)

	for name, fp := range variants {
		if fp == base {
			t.Errorf("%s should change the fingerprint", name)
		}
	}
}

func TestAnalysisFingerprint_AbsentVsZero(t *testing.T) {
	zero := 0.0
	withZero := []meta.StudyRecord{{Label: "s", Effect: &zero, SE: &zero}}
	withNil := []meta.StudyRecord{{Label: "s"}}

	a := ComputeAnalysisFingerprint(withZero, meta.MeasureHR, meta.MethodFixed)
	b := ComputeAnalysisFingerprint(withNil, meta.MeasureHR, meta.MethodFixed)
	if a == b {
		t.Error("absent fields must not collide with zero values")
	}
}

func TestBatchFingerprint_Deterministic(t *testing.T) {
	fps := []core.AnalysisFingerprint{"aaa", "bbb"}

	fp1 := NewBatchFingerprint(fps, "v0.1.0")
	fp2 := NewBatchFingerprint(fps, "v0.1.0")
	if fp1.Fingerprint != fp2.Fingerprint {
		t.Error("identical batches produced different fingerprints")
	}

	reordered := NewBatchFingerprint([]core.AnalysisFingerprint{"bbb", "aaa"}, "v0.1.0")
	if reordered.Fingerprint == fp1.Fingerprint {
		t.Error("analysis order is part of the batch identity")
	}

	bumped := NewBatchFingerprint(fps, "v0.2.0")
	if bumped.Fingerprint == fp1.Fingerprint {
		t.Error("code version is part of the batch identity")
	}
}

func TestSynthesisManifest_Accounting(t *testing.T) {
	m := NewSynthesisManifest(core.BatchID("batch-1"), 3)
	m.RecordCompletion()
	m.RecordCompletion()
	m.RecordSkip(core.AnalysisID("an-3"), SkipTooFewStudies)
	m.Fingerprint = NewBatchFingerprint([]core.AnalysisFingerprint{"aaa", "bbb"}, "v0.1.0")

	if err := m.Validate(); err != nil {
		t.Errorf("complete manifest should validate: %v", err)
	}
	if m.Completed != 2 || m.Skipped != 1 {
		t.Errorf("counts = %d/%d, want 2/1", m.Completed, m.Skipped)
	}
	if m.SkipReasons["an-3"] != SkipTooFewStudies {
		t.Errorf("SkipReasons = %v, want an-3 -> too_few_studies", m.SkipReasons)
	}

	artifact := m.ToCoreArtifact()
	if artifact.Kind != core.ArtifactSynthesisManifest {
		t.Errorf("artifact kind = %q, want synthesis manifest", artifact.Kind)
	}
	if artifact.ID.IsEmpty() {
		t.Error("artifact should get a generated ID")
	}
}

func TestSynthesisManifest_ValidateRejectsGaps(t *testing.T) {
	fp := NewBatchFingerprint([]core.AnalysisFingerprint{"aaa"}, "v0.1.0")

	missing := NewSynthesisManifest("", 1)
	missing.RecordCompletion()
	missing.Fingerprint = fp
	if missing.Validate() == nil {
		t.Error("empty batch ID should fail validation")
	}

	unbalanced := NewSynthesisManifest(core.BatchID("batch-1"), 2)
	unbalanced.RecordCompletion()
	unbalanced.Fingerprint = fp
	if unbalanced.Validate() == nil {
		t.Error("unaccounted request should fail validation")
	}

	unsealed := NewSynthesisManifest(core.BatchID("batch-1"), 1)
	unsealed.RecordCompletion()
	if unsealed.Validate() == nil {
		t.Error("missing fingerprint should fail validation")
	}
}

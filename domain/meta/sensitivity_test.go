package meta

import "testing"

// Four mean-difference studies, three clustered near 2.0 and one outlier
// at 10.0, all with identical variance 4/30 + 4/30.
func outlierStudySet() []StudyRecord {
	return []StudyRecord{
		NewContinuousStudy("alpha", 30, 5.0, 2.0, 30, 3.0, 2.0),
		NewContinuousStudy("bravo", 30, 6.0, 2.0, 30, 4.0, 2.0),
		NewContinuousStudy("charlie", 30, 7.0, 2.0, 30, 5.0, 2.0),
		NewContinuousStudy("delta", 30, 13.0, 2.0, 30, 3.0, 2.0),
	}
}

func TestLeaveOneOutFlagsOutlier(t *testing.T) {
	rows := LeaveOneOut(outlierStudySet(), MeasureMD, MethodFixed)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	for i, row := range rows {
		if row.Index != i {
			t.Errorf("row %d: Index = %d, want %d", i, row.Index, i)
		}
		if row.Result == nil {
			t.Fatalf("row %d: nil result with 3 studies remaining", i)
		}
		if row.Result.DF != 2 {
			t.Errorf("row %d: DF = %d, want 2", i, row.Result.DF)
		}
		assertWeightsSumTo100(t, row.Result.Weights)
	}

	if rows[3].Label != "delta" {
		t.Errorf("last row label = %q, want delta", rows[3].Label)
	}
	if !almostEqual(rows[3].Omitted.Effect, 10.0, 1e-12) {
		t.Errorf("omitted outlier effect = %v, want 10", rows[3].Omitted.Effect)
	}

	// Equal variances, so each leave-one-out pool is the plain average of
	// the remaining effects.
	if !almostEqual(rows[3].Result.Effect, 2.0, 1e-9) {
		t.Errorf("pool without outlier = %v, want 2.0", rows[3].Result.Effect)
	}
	if !almostEqual(rows[0].Result.Effect, 14.0/3.0, 1e-9) {
		t.Errorf("pool without alpha = %v, want %v", rows[0].Result.Effect, 14.0/3.0)
	}
	if rows[0].Result.Effect-rows[3].Result.Effect < 2.0 {
		t.Errorf("omitting the outlier should move the estimate: with=%v without=%v",
			rows[0].Result.Effect, rows[3].Result.Effect)
	}
}

func TestLeaveOneOutPairAndSingleton(t *testing.T) {
	pair := []StudyRecord{
		NewContinuousStudy("alpha", 30, 5.0, 2.0, 30, 3.0, 2.0),
		NewContinuousStudy("bravo", 30, 7.0, 2.0, 30, 3.0, 2.0),
	}

	rows := LeaveOneOut(pair, MeasureMD, MethodFixed)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Omitting one study leaves the other as a single-study pass-through.
	if rows[0].Result == nil || rows[0].Result.DF != 0 {
		t.Fatalf("row 0: expected single-study result, got %+v", rows[0].Result)
	}
	if !almostEqual(rows[0].Result.Effect, 4.0, 1e-9) {
		t.Errorf("row 0 result = %v, want the other study's 4.0", rows[0].Result.Effect)
	}
	if !almostEqual(rows[1].Result.Effect, 2.0, 1e-9) {
		t.Errorf("row 1 result = %v, want the other study's 2.0", rows[1].Result.Effect)
	}

	single := pair[:1]
	rows = LeaveOneOut(single, MeasureMD, MethodFixed)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Result != nil {
		t.Errorf("omitting the only study must leave a nil result, got %+v", rows[0].Result)
	}
	if !almostEqual(rows[0].Omitted.Effect, 2.0, 1e-9) {
		t.Errorf("omitted effect = %v, want 2.0", rows[0].Omitted.Effect)
	}
}

func TestLeaveOneOutSkipsNonPoolable(t *testing.T) {
	records := []StudyRecord{
		NewContinuousStudy("alpha", 30, 5.0, 2.0, 30, 3.0, 2.0),
		{Label: "broken"},
		NewContinuousStudy("charlie", 30, 7.0, 2.0, 30, 3.0, 2.0),
	}

	rows := LeaveOneOut(records, MeasureMD, MethodFixed)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Index != 0 || rows[1].Index != 2 {
		t.Errorf("row indices = %d, %d, want 0, 2", rows[0].Index, rows[1].Index)
	}
	if rows[0].Label != "alpha" || rows[1].Label != "charlie" {
		t.Errorf("row labels = %q, %q, want alpha, charlie", rows[0].Label, rows[1].Label)
	}
}

func TestCumulativeTracksAccumulation(t *testing.T) {
	records := []StudyRecord{
		NewContinuousStudy("trial-1990", 20, 3.0, 2.0, 20, 2.0, 2.0),
		NewContinuousStudy("trial-1995", 40, 5.0, 2.0, 40, 3.0, 2.0),
		NewContinuousStudy("trial-2001", 80, 6.0, 2.0, 80, 3.0, 2.0),
	}

	rows := Cumulative(records, MeasureMD, MethodFixed)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	for i, row := range rows {
		if row.Index != i {
			t.Errorf("row %d: Index = %d, want %d", i, row.Index, i)
		}
		if row.Studies != i+1 {
			t.Errorf("row %d: Studies = %d, want %d", i, row.Studies, i+1)
		}
		if row.Result == nil {
			t.Fatalf("row %d: nil result", i)
		}
	}

	// First row is the first study alone.
	if rows[0].Result.DF != 0 || !almostEqual(rows[0].Result.Effect, 1.0, 1e-9) {
		t.Errorf("row 0 = %+v, want single-study effect 1.0", rows[0].Result)
	}

	// Second row pools variances 0.4 and 0.2: (2.5*1 + 5*2) / 7.5.
	if !almostEqual(rows[1].Result.Effect, 12.5/7.5, 1e-9) {
		t.Errorf("row 1 effect = %v, want %v", rows[1].Result.Effect, 12.5/7.5)
	}
	if rows[1].Result.DF != 1 {
		t.Errorf("row 1 DF = %d, want 1", rows[1].Result.DF)
	}

	// The final row is the full pool.
	full := Pool(records, MeasureMD, MethodFixed)
	if full == nil {
		t.Fatal("full pool returned nil")
	}
	last := rows[2].Result
	if !almostEqual(last.Effect, full.Effect, 1e-15) || !almostEqual(last.SE, full.SE, 1e-15) {
		t.Errorf("last row (%v, %v) diverges from full pool (%v, %v)",
			last.Effect, last.SE, full.Effect, full.SE)
	}
	if !almostEqual(last.Q, full.Q, 1e-15) || last.DF != full.DF {
		t.Errorf("last row heterogeneity (Q=%v DF=%d) diverges from full pool (Q=%v DF=%d)",
			last.Q, last.DF, full.Q, full.DF)
	}
}

func TestCumulativeSkipsNonPoolable(t *testing.T) {
	records := []StudyRecord{
		{Label: "broken"},
		NewContinuousStudy("alpha", 30, 5.0, 2.0, 30, 3.0, 2.0),
	}

	rows := Cumulative(records, MeasureMD, MethodFixed)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Index != 1 || rows[0].Studies != 1 {
		t.Errorf("row = %+v, want Index 1 Studies 1", rows[0])
	}
}

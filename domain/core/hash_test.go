package core

import "testing"

// TestFingerprintIsEmpty tests fingerprint emptiness checks
func TestFingerprintIsEmpty(t *testing.T) {
	if !AnalysisFingerprint("").IsEmpty() {
		t.Error("Expected empty analysis fingerprint to be empty")
	}
	if !BatchFingerprint("").IsEmpty() {
		t.Error("Expected empty batch fingerprint to be empty")
	}

	if NewAnalysisFingerprint([]byte("canonical-studies")).IsEmpty() {
		t.Error("Expected constructed analysis fingerprint to not be empty")
	}
	if NewBatchFingerprint([]byte("ordered-fingerprints")).IsEmpty() {
		t.Error("Expected constructed batch fingerprint to not be empty")
	}
}

// TestFingerprintString tests fingerprint string conversion
func TestFingerprintString(t *testing.T) {
	h := NewHash([]byte("payload"))
	if AnalysisFingerprint(h).String() != h.String() {
		t.Error("Analysis fingerprint should render its underlying hash")
	}
	if BatchFingerprint(h).String() != h.String() {
		t.Error("Batch fingerprint should render its underlying hash")
	}
}

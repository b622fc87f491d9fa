package library

import "testing"

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1001/jama.2020.1234", "10.1001/jama.2020.1234"},
		{"DOI:10.1001/JAMA.2020.1234", "10.1001/jama.2020.1234"},
		{"https://doi.org/10.1001/jama.2020.1234", "10.1001/jama.2020.1234"},
		{"  http://dx.doi.org/10.5555/x ", "10.5555/x"},
		{"", ""},
		{"   ", ""},
	}
	for _, test := range tests {
		if got := NormalizeDOI(test.in); got != test.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The STAR*D Trial.", "the star d trial"},
		{"  Vitamin--D  and    COVID-19!!", "vitamin d and covid 19"},
		{"Effects of exercise", "effects of exercise"},
		{"", ""},
		{"...", ""},
		{"β-Blockers in heart failure", "β blockers in heart failure"},
	}
	for _, test := range tests {
		if got := NormalizeTitle(test.in); got != test.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestReferenceHasDOI(t *testing.T) {
	if !(Reference{DOI: "doi:10.1/x"}).HasDOI() {
		t.Error("prefixed DOI should count")
	}
	if (Reference{DOI: "  "}).HasDOI() {
		t.Error("blank DOI should not count")
	}
}

func TestNewReference(t *testing.T) {
	ref := NewReference("Aspirin for primary prevention", 2018)
	if ref.ID == "" {
		t.Error("expected a generated ID")
	}
	if ref.Title != "Aspirin for primary prevention" || ref.Year != 2018 {
		t.Errorf("unexpected fields: %+v", ref)
	}
}

package model

import "testing"

func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity Severity
		want     string
	}{
		{name: "low", severity: SeverityLow, want: "LOW"},
		{name: "medium", severity: SeverityMedium, want: "MEDIUM"},
		{name: "high", severity: SeverityHigh, want: "HIGH"},
		{name: "critical", severity: SeverityCritical, want: "CRITICAL"},
		{name: "unknown", severity: Severity(99), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity levels must be ordered low < medium < high < critical")
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Severity
	}{
		{name: "critical", input: "CRITICAL", want: SeverityCritical},
		{name: "high", input: "HIGH", want: SeverityHigh},
		{name: "medium", input: "MEDIUM", want: SeverityMedium},
		{name: "low", input: "LOW", want: SeverityLow},
		{name: "unknown falls back to low", input: "bogus", want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseSeverity(tt.input); got != tt.want {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSeverityRoundTrip(t *testing.T) {
	t.Parallel()

	for _, severity := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if got := ParseSeverity(severity.String()); got != severity {
			t.Errorf("ParseSeverity(%q) = %v, want %v", severity.String(), got, severity)
		}
	}
}

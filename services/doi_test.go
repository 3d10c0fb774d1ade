package services

import (
	"reflect"
	"testing"
)

func TestCleanDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain doi untouched",
			input: "10.1371/journal.pone.0123456",
			want:  "10.1371/journal.pone.0123456",
		},
		{
			name:  "url prefix stripped",
			input: "https://doi.org/10.1371/journal.pone.0123456",
			want:  "10.1371/journal.pone.0123456",
		},
		{
			name:  "trailing sentence period stripped",
			input: "10.1371/journal.pone.0123456.",
			want:  "10.1371/journal.pone.0123456",
		},
		{
			name:  "trailing punctuation run stripped",
			input: "10.1016/s0140-6736(20)30183-5.;",
			want:  "10.1016/s0140-6736(20)30183-5",
		},
		{
			name:  "surrounding whitespace",
			input: "  10.5555/12345678 ",
			want:  "10.5555/12345678",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDOI(tt.input); got != tt.want {
				t.Errorf("CleanDOI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractDOIs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "doi in running text with trailing period",
			text: "This study, doi: 10.1371/journal.pone.0123456. It was replicated later,",
			want: []string{"10.1371/journal.pone.0123456"},
		},
		{
			name: "url form",
			text: "Available at https://doi.org/10.5555/12345678, accessed 2024",
			want: []string{"10.5555/12345678"},
		},
		{
			name: "duplicates collapse, order preserved",
			text: "10.1000/first, then 10.2000/second, then 10.1000/first again",
			want: []string{"10.1000/first", "10.2000/second"},
		},
		{
			name: "no doi",
			text: "no identifiers here, just prose",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDOIs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractDOIs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDeepScanDOIs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "hyphenation at line break joined",
			text: "doi 10.1371/jour-\nnal.pone.0123456,",
			want: []string{"10.1371/journal.pone.0123456"},
		},
		{
			name: "hyphenation with trailing space",
			text: "doi 10.1371/jour- \nnal.pone.0123456,",
			want: []string{"10.1371/journal.pone.0123456"},
		},
		{
			name: "whitespace inside doi collapsed",
			text: "see 10.1017/ S0033291714000129, for details",
			want: []string{"10.1017/S0033291714000129"},
		},
		{
			name: "intact doi still found",
			text: "cite 10.5555/12345678, please",
			want: []string{"10.5555/12345678"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepScanDOIs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeepScanDOIs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSuspiciousDOI(t *testing.T) {
	tests := []struct {
		name string
		doi  string
		want bool
	}{
		{
			name: "placeholder marker",
			doi:  "10.1234/xxxxx.2020",
			want: true,
		},
		{
			name: "insert-here marker",
			doi:  "10.1234/insert-doi-here",
			want: true,
		},
		{
			name: "reserved test prefix",
			doi:  "10.0001/fake-entry-123",
			want: true,
		},
		{
			name: "truncated elsevier stub",
			doi:  "10.1016/j",
			want: true,
		},
		{
			name: "too short",
			doi:  "10.1234/abc",
			want: true,
		},
		{
			name: "empty",
			doi:  "",
			want: true,
		},
		{
			name: "real doi",
			doi:  "10.1371/journal.pone.0123456",
			want: false,
		},
		{
			name: "short but above the length floor",
			doi:  "10.5555/123456",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuspiciousDOI(tt.doi); got != tt.want {
				t.Errorf("IsSuspiciousDOI(%q) = %v, want %v", tt.doi, got, tt.want)
			}
		})
	}
}

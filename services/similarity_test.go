package services

import (
	"testing"
)

func TestScoreNamesCascade(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical after normalization",
			a:    "Juan Pérez",
			b:    "juan perez",
			want: 1.0,
		},
		{
			name: "missing middle name",
			a:    "Juan Alberto Pérez",
			b:    "Juan Pérez",
			want: 0.95,
		},
		{
			name: "double surname cited short",
			a:    "Juan Pérez Soto",
			b:    "Juan Soto",
			want: 0.95,
		},
		{
			name: "initial only citation form",
			a:    "Juan Pérez",
			b:    "J. Perez",
			want: 0.85,
		},
		{
			name: "substring containment",
			a:    "Ana María Rojas Soto",
			b:    "María Rojas",
			want: 0.90,
		},
		{
			name: "empty input",
			a:    "",
			b:    "Juan Pérez",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreNames(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("ScoreNames(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreNamesSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Juan Alberto Pérez", "Juan Pérez"},
		{"Juan Pérez", "J. Perez"},
		{"Ana María Rojas Soto", "María Rojas"},
		{"Carlos Gómez", "Karla Gomes"},
		{"Pedro Salazar", "Pablo Salas"},
	}
	for _, p := range pairs {
		ab := ScoreNames(p[0], p[1])
		ba := ScoreNames(p[1], p[0])
		if ab != ba {
			t.Errorf("ScoreNames not symmetric for (%q, %q): %v != %v", p[0], p[1], ab, ba)
		}
	}
}

func TestScoreNamesReflexive(t *testing.T) {
	for _, name := range []string{"Juan Pérez", "María José Rojas", "X Y"} {
		if got := ScoreNames(name, name); got != 1.0 {
			t.Errorf("ScoreNames(%q, %q) = %v, want 1.0", name, name, got)
		}
	}
}

func TestScoreNamesFuzzyFallback(t *testing.T) {
	// No cascade rule applies here; the sequence ratio must stay strictly
	// below the rule scores so fuzzy evidence never outranks structural
	// evidence.
	got := ScoreNames("Carlos Gómez", "Karla Torres")
	if got <= 0 || got >= 0.85 {
		t.Errorf("expected fuzzy score in (0, 0.85), got %v", got)
	}
}

func TestScoreNamesMultibyteInitials(t *testing.T) {
	// ø and æ survive normalization (no combining mark to strip) and share
	// their first UTF-8 byte, so the initials rule has to compare runes.
	if got := ScoreNames("Ø. Hansen", "Øystein Hansen"); got != 0.85 {
		t.Errorf("equal non-ASCII initials: got %v, want 0.85", got)
	}
	if got := ScoreNames("Øystein Hansen", "Æsa Hansen"); got >= 0.85 {
		t.Errorf("distinct non-ASCII initials must not clear the initials rule, got %v", got)
	}
}

func TestSequenceRatio(t *testing.T) {
	if got := sequenceRatio("abc", "abc"); got != 1.0 {
		t.Errorf("sequenceRatio identical = %v, want 1.0", got)
	}
	if got := sequenceRatio("abc", "xyz"); got != 0 {
		t.Errorf("sequenceRatio disjoint = %v, want 0", got)
	}
	// 2*M/T with M=4 ("abcd"), T=9.
	if got := sequenceRatio("abcd", "abcdx"); got != 8.0/9.0 {
		t.Errorf("sequenceRatio = %v, want %v", got, 8.0/9.0)
	}
}

func TestTitlesMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "identical",
			a:    "Prevalence of hypertension in rural Chile",
			b:    "Prevalence of hypertension in rural Chile",
			want: true,
		},
		{
			name: "case and punctuation differences",
			a:    "Prevalence of Hypertension in Rural Chile.",
			b:    "prevalence of hypertension in rural chile",
			want: true,
		},
		{
			name: "subtitle dropped by one source",
			a:    "Water governance in the Atacama: a systematic review",
			b:    "Water governance in the Atacama",
			want: true,
		},
		{
			name: "unrelated titles",
			a:    "Prevalence of hypertension in rural Chile",
			b:    "zzzz qqqq kkkk",
			want: false,
		},
		{
			name: "empty side never matches",
			a:    "",
			b:    "Prevalence of hypertension in rural Chile",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitlesMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("TitlesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

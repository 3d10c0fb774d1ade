package services

import (
	"regexp"
	"strings"
)

var (
	// Strikte DOI-Form; deckt URL- und Roh-Schreibweise ab.
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+`)

	// Deep-Scan-Variante: toleriert Whitespace, wie er bei Blocksatz- und
	// mehrspaltigen PDF-Extraktionen mitten im DOI auftaucht.
	doiPatternLoose = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:a-zA-Z0-9\s]+`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Platzhalter-Muster, die auf einen kaputten oder erfundenen DOI hindeuten.
var doiTrashMarkers = []string{"xxxxx", "10.000", "insert", "placeholder"}

// CleanDOI normalisiert einen DOI-Kandidaten: doi.org-Präfix und angehängte
// Satzzeichen entfernen. Der Punkt am Satzende gehört nie zum DOI.
func CleanDOI(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "doi.org/"); idx != -1 {
		s = s[idx+len("doi.org/"):]
	}
	return strings.TrimRight(s, ".,;:/")
}

// ExtractDOIs liefert bereinigte DOI-Kandidaten in Dokumentreihenfolge,
// ohne Duplikate.
func ExtractDOIs(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range doiPattern.FindAllString(text, -1) {
		clean := CleanDOI(m)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}

// DeepScanDOIs findet auch DOIs, die der PDF-Umbruch zerrissen hat:
// Silbentrennungen am Zeilenende werden zusammengezogen, dann wird mit dem
// Whitespace-toleranten Muster gesucht, Whitespace im Treffer entfernt und
// das Ergebnis gegen das strikte Muster revalidiert.
func DeepScanDOIs(text string) []string {
	t := strings.ReplaceAll(text, "- \n", "")
	t = strings.ReplaceAll(t, "-\n", "")

	var out []string
	seen := map[string]bool{}
	for _, m := range doiPatternLoose.FindAllString(t, -1) {
		joined := whitespacePattern.ReplaceAllString(m, "")
		strict := doiPattern.FindString(joined)
		if strict == "" {
			continue
		}
		clean := CleanDOI(strict)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}

// IsSuspiciousDOI meldet, ob ein DOI wie ein Platzhalter oder ein
// Trunkierungs-Artefakt aussieht. Kurze echte DOIs existieren; Verdacht ist
// deshalb nur ein Trigger, der Aufrufer muss vor einer Reparatur unabhängig
// verifizieren.
func IsSuspiciousDOI(doi string) bool {
	d := strings.ToLower(strings.TrimSpace(doi))
	if d == "" {
		return true
	}
	for _, marker := range doiTrashMarkers {
		if strings.Contains(d, marker) {
			return true
		}
	}
	if strings.HasSuffix(d, "/j") {
		return true
	}
	return len(d) < 14
}

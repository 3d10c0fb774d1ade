package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticsRemover zerlegt nach NFD und entfernt kombinierende Zeichen
// (Akzente, Tilden), bevor wieder nach NFC komponiert wird.
var diacriticsRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName kanonisiert einen Anzeigenamen: Diakritika entfernen,
// Kleinschreibung, Interpunktion durch Leerzeichen ersetzen, Whitespace
// kollabieren. Die Funktion ist idempotent; "José María" und "Jose Maria"
// landen auf derselben Form.
func NormalizeName(name string) string {
	s, _, err := transform.String(diacriticsRemover, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NameVariants erzeugt gebräuchliche Zitierformen eines Namens. Konvention:
// das letzte Token ist der Nachname, alles davor sind Vornamen. Mit weniger
// als zwei Tokens gibt es zu wenig Information für Varianten.
func NameVariants(name string) []string {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) < 2 {
		return nil
	}
	given := parts[:len(parts)-1]
	surname := parts[len(parts)-1]
	initial := string([]rune(given[0])[0])

	variants := []string{
		initial + ". " + surname,
		initial + " " + surname,
		surname + " " + initial + ".",
		surname + ", " + strings.Join(given, " "),
		surname,
		NormalizeName(name),
	}
	return dedupStrings(variants)
}

// dedupStrings entfernt Duplikate und behält die Reihenfolge bei.
func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

package services

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"scholar-hand/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var orcidPattern = regexp.MustCompile(`\d{4}-\d{4}-\d{4}-\d{3}[0-9X]`)

// Autorenlisten und ORCIDs stehen auf der ersten Seite; mehr Text erhöht
// nur die Chance auf Treffer aus dem Literaturverzeichnis.
const linkTextWindow = 3000

// LinkCandidate ist ein berechneter Autorschafts-Vorschlag vor der Persistenz.
type LinkCandidate struct {
	PersonID uint   `json:"person_id"`
	Score    int    `json:"score"`
	Method   string `json:"method"`
}

// Linker verknüpft Publikationen mit den Personen des Rosters.
type Linker struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	Threshold float64
}

// NewLinker erstellt einen neuen Linker.
func NewLinker(db *gorm.DB, logger *zap.Logger, threshold float64) *Linker {
	if threshold <= 0 {
		threshold = DefaultLinkThreshold
	}
	return &Linker{DB: db, Logger: logger, Threshold: threshold}
}

// ExtractORCIDs findet ORCID-förmige Identifier im Text, dedupliziert in
// Reihenfolge des Auftretens.
func ExtractORCIDs(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range orcidPattern.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// ComputeLinks berechnet die Link-Menge einer Publikation rein aus
// Autorenzeile, Volltext und Roster; keine Seiteneffekte. Ein im Text
// gefundener ORCID schlägt jede Namens-Evidenz. Pro Person entsteht
// höchstens ein Kandidat, deterministisch nach PersonID sortiert.
func (l *Linker) ComputeLinks(pub *models.Publication, fullText string, roster []models.Person) []LinkCandidate {
	search := pub.Authors
	if fullText != "" {
		sample := fullText
		if len(sample) > linkTextWindow {
			sample = sample[:linkTextWindow]
		}
		search = search + "\n" + sample
	}

	byPerson := map[uint]LinkCandidate{}

	orcids := ExtractORCIDs(search)
	if len(orcids) > 0 {
		want := make(map[string]bool, len(orcids))
		for _, id := range orcids {
			want[id] = true
		}
		for _, p := range roster {
			if p.ORCID != nil && want[*p.ORCID] {
				byPerson[p.ID] = LinkCandidate{PersonID: p.ID, Score: 100, Method: models.MatchMethodORCID}
			}
		}
	}

	candidates := candidateNames(search)
	for _, p := range roster {
		if _, ok := byPerson[p.ID]; ok {
			continue
		}
		best := LinkCandidate{PersonID: p.ID}
		bestScore := 0.0
		for _, cand := range candidates {
			for _, variant := range personVariants(&p) {
				score := ScoreNames(cand, variant)
				if score < l.Threshold || score <= bestScore {
					continue
				}
				bestScore = score
				best.Score = int(math.Round(score * 100))
				best.Method = methodForScore(score)
			}
		}
		if best.Score > 0 {
			byPerson[p.ID] = best
		}
	}

	out := make([]LinkCandidate, 0, len(byPerson))
	for _, c := range byPerson {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonID < out[j].PersonID })
	return out
}

// Relink ersetzt alle nicht-manuellen Links einer Publikation vollständig
// durch die neu berechnete Menge. Wiederholte Läufe konvergieren dadurch,
// statt Duplikate anzusammeln; manuelle Links bleiben unangetastet.
func (l *Linker) Relink(pub *models.Publication, fullText string, roster []models.Person) ([]models.AuthorshipLink, error) {
	candidates := l.ComputeLinks(pub, fullText, roster)

	var links []models.AuthorshipLink
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("publication_id = ? AND method <> ?", pub.ID, models.MatchMethodManual).
			Delete(&models.AuthorshipLink{}).Error; err != nil {
			return err
		}

		var manual []models.AuthorshipLink
		if err := tx.Where("publication_id = ? AND method = ?", pub.ID, models.MatchMethodManual).
			Find(&manual).Error; err != nil {
			return err
		}
		manualFor := make(map[uint]bool, len(manual))
		for _, m := range manual {
			manualFor[m.PersonID] = true
		}

		for _, c := range candidates {
			if manualFor[c.PersonID] {
				continue
			}
			link := models.AuthorshipLink{
				PersonID:      c.PersonID,
				PublicationID: pub.ID,
				Score:         c.Score,
				Method:        c.Method,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			links = append(links, link)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(links) == 0 {
		l.Logger.Info("Keine Autorschafts-Links gefunden.", zap.Uint("publication_id", pub.ID))
	} else {
		l.Logger.Info("Autorschafts-Links neu berechnet.",
			zap.Uint("publication_id", pub.ID), zap.Int("links", len(links)))
	}
	return links, nil
}

// personVariants liefert die Vergleichsformen einer Person: voller Name plus
// gecachte bzw. frisch erzeugte Zitierformen.
func personVariants(p *models.Person) []string {
	variants := []string{p.FullName}
	if p.NameVariations != "" {
		for _, v := range strings.Split(p.NameVariations, "|") {
			if v = strings.TrimSpace(v); v != "" {
				variants = append(variants, v)
			}
		}
		return variants
	}
	return append(variants, NameVariants(p.FullName)...)
}

func methodForScore(score float64) string {
	switch {
	case score >= 1.0:
		return models.MatchMethodExact
	case score == 0.85:
		return models.MatchMethodInitials
	default:
		return models.MatchMethodFuzzy
	}
}

// nameTokenPattern akzeptiert großgeschriebene Namens-Tokens inklusive
// Initialen ("J.") und Bindestrich-Namen.
var nameTokenPattern = regexp.MustCompile(`^\p{Lu}[\p{L}.'-]*$`)

// candidateNames gruppiert aufeinanderfolgende großgeschriebene Tokens zu
// 2-3 Token langen Namens-Spannen. Kommas und Semikola trennen Autoren.
func candidateNames(text string) []string {
	fields := strings.Fields(text)

	var runs [][]string
	var cur []string
	flush := func() {
		if len(cur) >= 2 {
			runs = append(runs, cur)
		}
		cur = nil
	}
	for _, f := range fields {
		token := strings.Trim(f, "()[]")
		sep := strings.HasSuffix(token, ",") || strings.HasSuffix(token, ";")
		token = strings.TrimRight(token, ",;")
		if token == "" || !nameTokenPattern.MatchString(token) {
			flush()
			continue
		}
		cur = append(cur, token)
		if sep {
			flush()
		}
	}
	flush()

	var out []string
	seen := map[string]bool{}
	for _, run := range runs {
		for i := 0; i < len(run)-1; i++ {
			for span := 2; span <= 3 && i+span <= len(run); span++ {
				cand := strings.Join(run[i:i+span], " ")
				if seen[cand] {
					continue
				}
				seen[cand] = true
				out = append(out, cand)
			}
		}
	}
	return out
}

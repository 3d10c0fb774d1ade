package services

import (
	"context"

	"scholar-hand/models"
	"scholar-hand/providers"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ausgänge eines Reparaturversuchs.
const (
	RepairStatusRepaired      = "repaired"
	RepairStatusExonerated    = "exonerated"
	RepairStatusNoBetterDOI   = "no_better_doi_found"
	RepairStatusNoFullText    = "no_fulltext"
	RepairStatusNotSuspicious = "not_suspicious"
	RepairStatusError         = "error"
)

// Kandidaten unterhalb dieser Länge sind meist selbst Trunkierungs-
// Artefakte aus dem PDF.
const minCandidateLength = 15

// RepairOutcome ist das Ergebnis eines Reparaturversuchs.
type RepairOutcome struct {
	PublicationID uint   `json:"publication_id"`
	OldDOI        string `json:"old_doi,omitempty"`
	NewDOI        string `json:"new_doi,omitempty"`
	Status        string `json:"status"`
}

// DocumentStore liefert den extrahierten Volltext einer Publikation.
// Ein fehlendes Objekt ist kein Fehler, sondern "kein Text vorhanden".
type DocumentStore interface {
	FetchText(ctx context.Context, key string) (string, bool, error)
}

// RepairOrchestrator ersetzt verdächtige DOIs durch unabhängig verifizierte
// Kandidaten aus dem Volltext.
type RepairOrchestrator struct {
	DB     *gorm.DB
	Index  providers.Index
	Docs   DocumentStore
	Logger *zap.Logger
}

// NewRepairOrchestrator erstellt einen neuen RepairOrchestrator.
func NewRepairOrchestrator(db *gorm.DB, index providers.Index, docs DocumentStore, logger *zap.Logger) *RepairOrchestrator {
	return &RepairOrchestrator{DB: db, Index: index, Docs: docs, Logger: logger}
}

// Repair prüft eine Publikation mit verdächtigem DOI. Verifiziert der
// verdächtige DOI unabhängig, wird er entlastet und nicht angefasst; das
// schützt vor falsch-positiven Verdachtsmustern. Ein Ersatz-Kandidat wird
// nur übernommen, wenn der Index ihn bestätigt UND der gemeldete Titel zum
// bekannten Titel passt; sonst stammt er vermutlich aus dem
// Literaturverzeichnis.
func (r *RepairOrchestrator) Repair(ctx context.Context, pub *models.Publication) RepairOutcome {
	outcome := RepairOutcome{PublicationID: pub.ID}
	if pub.CanonicalDOI == nil {
		outcome.Status = RepairStatusNotSuspicious
		return outcome
	}
	outcome.OldDOI = *pub.CanonicalDOI
	if !IsSuspiciousDOI(outcome.OldDOI) {
		outcome.Status = RepairStatusNotSuspicious
		return outcome
	}
	log := r.Logger.With(zap.Uint("publication_id", pub.ID), zap.String("doi", outcome.OldDOI))

	// Entlastungs-Check: kurze echte DOIs existieren.
	if res := r.Index.LookupWork(ctx, CleanDOI(outcome.OldDOI)); res.Found {
		log.Info("Verdächtiger DOI unabhängig bestätigt, keine Reparatur.")
		outcome.Status = RepairStatusExonerated
		return outcome
	}

	if pub.FullTextKey == "" {
		outcome.Status = RepairStatusNoFullText
		return outcome
	}
	text, ok, err := r.Docs.FetchText(ctx, pub.FullTextKey)
	if err != nil {
		log.Warn("Volltext nicht abrufbar.", zap.Error(err))
		outcome.Status = RepairStatusNoFullText
		return outcome
	}
	if !ok {
		outcome.Status = RepairStatusNoFullText
		return outcome
	}

	candidate, found := r.findReplacement(ctx, pub, text)
	if !found {
		outcome.Status = RepairStatusNoBetterDOI
		return outcome
	}

	updates := map[string]interface{}{
		"canonical_doi": candidate,
		"doi_status":    models.DOIStatusRepaired,
		"source_url":    "https://doi.org/" + candidate,
	}
	if err := r.DB.Model(&models.Publication{}).Where("id = ?", pub.ID).Updates(updates).Error; err != nil {
		log.Error("Reparatur konnte nicht gespeichert werden.", zap.Error(err))
		outcome.Status = RepairStatusError
		return outcome
	}
	pub.CanonicalDOI = &candidate
	pub.DOIStatus = models.DOIStatusRepaired

	log.Info("DOI repariert.", zap.String("new_doi", candidate))
	outcome.NewDOI = candidate
	outcome.Status = RepairStatusRepaired
	return outcome
}

// findReplacement sucht im Volltext nach einem verifizierbaren Ersatz-DOI.
// Der erste Kandidat, den der Index bestätigt und dessen Titel passt,
// gewinnt. Liefert der Volltext nichts Belastbares, wird der Index zuletzt
// per Titelsuche befragt; auch dieser Treffer zählt nur bei passendem Titel.
func (r *RepairOrchestrator) findReplacement(ctx context.Context, pub *models.Publication, text string) (string, bool) {
	old := CleanDOI(*pub.CanonicalDOI)
	for _, candidate := range DeepScanDOIs(text) {
		if candidate == old || len(candidate) < minCandidateLength {
			continue
		}
		res := r.Index.LookupWork(ctx, candidate)
		if !res.Found || res.Work == nil {
			continue
		}
		if !TitlesMatch(pub.Title, res.Work.Title) {
			continue
		}
		return candidate, true
	}

	work, ok := r.Index.SearchByTitle(ctx, pub.Title)
	if !ok || work.DOI == "" {
		return "", false
	}
	candidate := CleanDOI(work.DOI)
	if candidate == "" || candidate == old || !TitlesMatch(pub.Title, work.Title) {
		return "", false
	}
	return candidate, true
}

// RepairBatch versucht, bis zu limit verdächtige Publikationen zu
// reparieren; limit <= 0 bedeutet alle.
func (r *RepairOrchestrator) RepairBatch(ctx context.Context, limit int) ([]RepairOutcome, error) {
	var pubs []models.Publication
	if err := r.DB.Where("canonical_doi IS NOT NULL").Order("id").Find(&pubs).Error; err != nil {
		return nil, err
	}

	var outcomes []RepairOutcome
	for i := range pubs {
		if pubs[i].CanonicalDOI == nil || !IsSuspiciousDOI(*pubs[i].CanonicalDOI) {
			continue
		}
		outcomes = append(outcomes, r.Repair(ctx, &pubs[i]))
		if limit > 0 && len(outcomes) >= limit {
			break
		}
	}
	return outcomes, nil
}

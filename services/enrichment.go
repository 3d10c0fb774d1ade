package services

import (
	"context"
	"strings"
	"time"

	"scholar-hand/models"
	"scholar-hand/providers"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Höflichkeitspause zwischen sequenziellen Index-Aufrufen beim Sync.
const defaultSyncDelay = 100 * time.Millisecond

// SyncDetail ist das Ergebnis für eine einzelne Person.
type SyncDetail struct {
	PersonID  uint   `json:"person_id"`
	Name      string `json:"name"`
	ORCID     string `json:"orcid"`
	Status    string `json:"status"`
	HIndex    int    `json:"h_index,omitempty"`
	Citations int    `json:"citations,omitempty"`
}

// SyncSummary fasst einen Kennzahlen-Sync zusammen.
type SyncSummary struct {
	TotalProcessed int          `json:"total_processed"`
	Updated        int          `json:"updated"`
	Errors         int          `json:"errors"`
	Details        []SyncDetail `json:"details"`
}

// EnrichmentService synchronisiert bibliometrische Kennzahlen und
// Namens-Metadaten über die externen Register.
type EnrichmentService struct {
	DB       *gorm.DB
	Index    providers.Index
	Registry providers.Registry
	Logger   *zap.Logger

	// Kennzahlen jünger als diese Schwelle werden nicht erneut geholt.
	SyncThreshold time.Duration
	Delay         time.Duration
}

// NewEnrichmentService erstellt einen neuen EnrichmentService.
func NewEnrichmentService(db *gorm.DB, index providers.Index, registry providers.Registry, logger *zap.Logger, thresholdDays int) *EnrichmentService {
	if thresholdDays <= 0 {
		thresholdDays = 30
	}
	return &EnrichmentService{
		DB:            db,
		Index:         index,
		Registry:      registry,
		Logger:        logger,
		SyncThreshold: time.Duration(thresholdDays) * 24 * time.Hour,
		Delay:         defaultSyncDelay,
	}
}

// SyncPersonMetrics holt für alle aktiven Personen mit ORCID die aktuellen
// Kennzahlen vom Index. Kürzlich synchronisierte Personen werden
// übersprungen, außer force ist gesetzt. Fehler einzelner Personen brechen
// den Lauf nie ab.
func (e *EnrichmentService) SyncPersonMetrics(ctx context.Context, force bool) (SyncSummary, error) {
	query := e.DB.Where("active = ? AND orcid IS NOT NULL AND orcid <> ''", true)
	if !force {
		cutoff := time.Now().Add(-e.SyncThreshold)
		query = query.Where("last_metrics_sync IS NULL OR last_metrics_sync < ?", cutoff)
	}
	var persons []models.Person
	if err := query.Order("id").Find(&persons).Error; err != nil {
		return SyncSummary{}, err
	}

	summary := SyncSummary{TotalProcessed: len(persons)}
	for i := range persons {
		p := &persons[i]
		detail := SyncDetail{PersonID: p.ID, Name: p.FullName, ORCID: *p.ORCID}

		res := e.Index.AuthorMetricsByORCID(ctx, *p.ORCID)
		if !res.Found {
			detail.Status = res.StatusTag
			summary.Errors++
			summary.Details = append(summary.Details, detail)
		} else {
			m := res.Metrics
			updates := map[string]interface{}{
				"citation_count":    m.CitedByCount,
				"h_index":           m.HIndex,
				"i10_index":         m.I10Index,
				"work_count":        m.WorksCount,
				"last_metrics_sync": time.Now(),
			}
			if err := e.DB.Model(&models.Person{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
				e.Logger.Error("Kennzahlen konnten nicht gespeichert werden.",
					zap.Uint("person_id", p.ID), zap.Error(err))
				detail.Status = "db_error"
				summary.Errors++
			} else {
				detail.Status = "updated"
				detail.HIndex = m.HIndex
				detail.Citations = m.CitedByCount
				summary.Updated++
			}
			summary.Details = append(summary.Details, detail)
		}

		if e.Delay > 0 && i < len(persons)-1 {
			select {
			case <-time.After(e.Delay):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}
	}

	e.Logger.Info("Kennzahlen-Sync abgeschlossen.",
		zap.Int("total", summary.TotalProcessed),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors))
	return summary, nil
}

// EnrichPersonFromRegistry gleicht den Anzeigenamen mit dem öffentlichen
// Register ab und füllt fehlende Namens-Varianten auf. Weicht der
// registrierte Name vom Roster-Namen ab, werden dessen Zitierformen
// zusätzlich aufgenommen.
func (e *EnrichmentService) EnrichPersonFromRegistry(ctx context.Context, p *models.Person) error {
	if p.ORCID == nil || *p.ORCID == "" {
		return nil
	}
	record, err := e.Registry.FetchRecord(ctx, *p.ORCID)
	if err != nil {
		return err
	}

	variants := NameVariants(p.FullName)
	if record.DisplayName != "" && NormalizeName(record.DisplayName) != NormalizeName(p.FullName) {
		variants = append(variants, record.DisplayName)
		variants = append(variants, NameVariants(record.DisplayName)...)
	}
	joined := strings.Join(dedupStrings(variants), "|")
	if joined == "" || joined == p.NameVariations {
		return nil
	}

	if err := e.DB.Model(&models.Person{}).Where("id = ?", p.ID).
		Update("name_variations", joined).Error; err != nil {
		return err
	}
	p.NameVariations = joined

	e.Logger.Info("Namens-Varianten aktualisiert.",
		zap.Uint("person_id", p.ID), zap.String("registered_name", record.DisplayName))
	return nil
}

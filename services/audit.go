package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"scholar-hand/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Verifier is the part of the verification client the coordinator needs.
type Verifier interface {
	Verify(ctx context.Context, doi string, strategy string) VerifyOutcome
}

// AuditDetail is the per-publication outcome of a batch audit.
type AuditDetail struct {
	PublicationID uint   `json:"publication_id"`
	Title         string `json:"title"`
	DOI           string `json:"doi,omitempty"`
	Status        string `json:"status"`
	Tag           string `json:"tag,omitempty"`
	Source        string `json:"source,omitempty"`
	Skipped       bool   `json:"skipped,omitempty"`
}

// AuditSummary aggregates a whole batch run.
type AuditSummary struct {
	TotalChecked    int            `json:"total_checked"`
	Valid           int            `json:"valid"`
	Broken          int            `json:"broken"`
	Blocked         int            `json:"blocked"`
	Errors          int            `json:"errors"`
	Skipped         int            `json:"skipped"`
	SourceBreakdown map[string]int `json:"source_breakdown"`
	Details         []AuditDetail  `json:"details"`
}

// AuditCoordinator fans publications out over a bounded worker pool.
type AuditCoordinator struct {
	DB       *gorm.DB
	Verifier Verifier
	Logger   *zap.Logger
	Workers  int
}

// NewAuditCoordinator creates a new coordinator; workers defaults to 10.
func NewAuditCoordinator(db *gorm.DB, verifier Verifier, logger *zap.Logger, workers int) *AuditCoordinator {
	if workers <= 0 {
		workers = 10
	}
	return &AuditCoordinator{DB: db, Verifier: verifier, Logger: logger, Workers: workers}
}

// auditResult pairs a publication index with its verification outcome.
type auditResult struct {
	outcome VerifyOutcome
	skipped bool
}

// collectOutcomes runs one verification per publication over the bounded
// pool. Exactly one result per input, independent of worker interleaving.
// Publications that already left pending are skipped, never downgraded.
func (a *AuditCoordinator) collectOutcomes(ctx context.Context, pubs []models.Publication, strategy string) []auditResult {
	results := make([]auditResult, len(pubs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.Workers)
	for i := range pubs {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			pub := &pubs[i]
			if pub.CanonicalDOI == nil || pub.DOIStatus != models.DOIStatusPending {
				results[i] = auditResult{skipped: true}
				return
			}
			results[i] = auditResult{outcome: a.Verifier.Verify(ctx, *pub.CanonicalDOI, strategy)}
		}(i)
	}
	wg.Wait()
	return results
}

// AuditBatch verifies each publication concurrently and applies the state
// machine afterwards. Row updates are collected in memory and committed once
// after all workers finish; each record stands on its own, so one bad unit
// cannot corrupt the rest of the batch.
func (a *AuditCoordinator) AuditBatch(ctx context.Context, pubs []models.Publication, strategy string) (AuditSummary, error) {
	results := a.collectOutcomes(ctx, pubs, strategy)

	summary := AuditSummary{
		TotalChecked:    len(pubs),
		SourceBreakdown: map[string]int{},
		Details:         make([]AuditDetail, 0, len(pubs)),
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		for i := range pubs {
			pub := &pubs[i]
			detail := AuditDetail{PublicationID: pub.ID, Title: truncate(pub.Title, 60)}
			if pub.CanonicalDOI != nil {
				detail.DOI = *pub.CanonicalDOI
			}

			if results[i].skipped {
				detail.Skipped = true
				detail.Status = pub.DOIStatus
				summary.Skipped++
				summary.Details = append(summary.Details, detail)
				continue
			}

			outcome := results[i].outcome
			detail.Status = outcome.Status
			detail.Tag = outcome.Tag
			detail.Source = outcome.Source
			summary.SourceBreakdown[outcome.Source]++

			switch {
			case outcome.Valid:
				summary.Valid++
			case outcome.Status == models.DOIStatusBlocked:
				summary.Blocked++
			case strings.HasPrefix(outcome.Tag, "error_"):
				summary.Errors++
			default:
				summary.Broken++
			}

			if outcome.Status != pub.DOIStatus && models.CanTransitionDOIStatus(pub.DOIStatus, outcome.Status) {
				updates := map[string]interface{}{"doi_status": outcome.Status}
				if outcome.Work != nil {
					if data, err := json.Marshal(outcome.Work); err == nil {
						updates["metrics_data"] = data
						updates["metrics_last_updated"] = time.Now()
					}
				}
				if err := tx.Model(&models.Publication{}).Where("id = ?", pub.ID).
					Updates(updates).Error; err != nil {
					return err
				}
				pub.DOIStatus = outcome.Status
			}
			summary.Details = append(summary.Details, detail)
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	a.Logger.Info("Batch-Audit abgeschlossen.",
		zap.Int("total", summary.TotalChecked),
		zap.Int("valid", summary.Valid),
		zap.Int("broken", summary.Broken),
		zap.Int("blocked", summary.Blocked),
		zap.Int("errors", summary.Errors),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// AuditPending loads all pending publications with a DOI and audits them.
func (a *AuditCoordinator) AuditPending(ctx context.Context, strategy string) (AuditSummary, error) {
	var pubs []models.Publication
	if err := a.DB.Where("canonical_doi IS NOT NULL AND doi_status = ?", models.DOIStatusPending).
		Order("id").Find(&pubs).Error; err != nil {
		return AuditSummary{}, err
	}
	return a.AuditBatch(ctx, pubs, strategy)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

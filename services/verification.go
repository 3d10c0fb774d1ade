package services

import (
	"context"
	"strings"

	"scholar-hand/models"
	"scholar-hand/providers"

	"go.uber.org/zap"
)

// Verifikationsstrategien.
const (
	StrategyOpenAlex = "openalex"
	StrategyHTTP     = "http"
	StrategyHybrid   = "hybrid"
)

// VerifyOutcome ist das strukturierte Ergebnis einer DOI-Verifikation.
// Status ist der Ziel-DOIStatus laut Zustandsmaschine; bei Provider-Fehlern
// bleibt er "pending", damit der Datensatz später erneut geprüft wird.
type VerifyOutcome struct {
	DOI      string          `json:"doi"`
	Valid    bool            `json:"valid"`
	Status   string          `json:"status"`
	Tag      string          `json:"tag"`
	Source   string          `json:"source"`
	FinalURL string          `json:"final_url,omitempty"`
	Work     *providers.Work `json:"work,omitempty"`
}

// VerificationClient kombiniert den primären Index und den HTTP-Resolver.
type VerificationClient struct {
	Index    providers.Index
	Resolver providers.Resolver
	Logger   *zap.Logger
}

// NewVerificationClient erstellt einen neuen VerificationClient.
func NewVerificationClient(index providers.Index, res providers.Resolver, logger *zap.Logger) *VerificationClient {
	return &VerificationClient{Index: index, Resolver: res, Logger: logger}
}

// Verify prüft einen DOI gemäß Strategie. Hybrid fällt nur bei einem
// definitiven "nicht gefunden" des Index auf den HTTP-Check zurück; jede
// andere Index-Antwort ist endgültig, damit ein API-Ausfall nie als
// "nicht gefunden" maskiert wird.
func (v *VerificationClient) Verify(ctx context.Context, doi string, strategy string) VerifyOutcome {
	doi = CleanDOI(doi)
	if doi == "" {
		return VerifyOutcome{Status: models.DOIStatusBroken, Tag: "empty_doi", Source: "none"}
	}
	if strategy == "" {
		strategy = StrategyHybrid
	}

	if strategy == StrategyOpenAlex || strategy == StrategyHybrid {
		res := v.Index.LookupWork(ctx, doi)
		if res.Found {
			return VerifyOutcome{
				DOI:    doi,
				Valid:  true,
				Status: models.DOIStatusValidOpenAlex,
				Tag:    res.StatusTag,
				Source: v.Index.Name(),
				Work:   res.Work,
			}
		}
		if strategy == StrategyOpenAlex || res.StatusTag != "not_found_openalex" {
			return VerifyOutcome{
				DOI:    doi,
				Status: statusForTag(res.StatusTag),
				Tag:    res.StatusTag,
				Source: v.Index.Name(),
			}
		}
		// Definitiv nicht im Index: HTTP-Fallback.
	}

	res := v.Resolver.Resolve(ctx, doi)
	outcome := VerifyOutcome{
		DOI:      doi,
		Tag:      res.StatusTag,
		Source:   v.Resolver.Name(),
		FinalURL: res.FinalURL,
	}
	switch {
	case res.Valid:
		outcome.Valid = true
		outcome.Status = models.DOIStatusValidHTTP
	case res.Blocked:
		outcome.Status = models.DOIStatusBlocked
	default:
		outcome.Status = statusForTag(res.StatusTag)
	}
	return outcome
}

// statusForTag übersetzt einen Provider-Tag in den Ziel-Status. Verbindungs-
// und API-Fehler sind kein Urteil über den DOI: der Status bleibt pending.
func statusForTag(tag string) string {
	if strings.HasPrefix(tag, "error_") {
		return models.DOIStatusPending
	}
	return models.DOIStatusBroken
}

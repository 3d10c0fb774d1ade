package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"scholar-hand/config"
	"scholar-hand/providers"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Client implementiert providers.Index gegen die OpenAlex-API.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen OpenAlex-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (c *Client) Name() string {
	return "openalex"
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	// Polite-Pool-Konvention: Kontakt-Adresse im User-Agent.
	req.Header.Set("User-Agent", fmt.Sprintf("scholar-hand (mailto:%s)", c.Config.OpenAlexMailto))
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// LookupWork prüft Existenz und Metadaten eines DOI. Netzwerkfehler brechen
// nichts ab, sondern werden als error_openalex_connection gemeldet; über
// Fallbacks entscheidet der Aufrufer.
func (c *Client) LookupWork(ctx context.Context, doi string) providers.LookupResult {
	endpoint := fmt.Sprintf("%s/works/https://doi.org/%s?mailto=%s",
		c.Config.OpenAlexBaseURL, url.PathEscape(doi), url.QueryEscape(c.Config.OpenAlexMailto))
	log := c.Logger.With(zap.String("doi", doi))

	var result providers.LookupResult
	err := providers.WithRetry(ctx, providers.DefaultRetryPolicy, func() (bool, error) {
		req, err := c.newRequest(ctx, endpoint)
		if err != nil {
			return false, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var wr WorkResponse
			if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
				return false, err
			}
			result = providers.LookupResult{Found: true, StatusTag: "valid_openalex", Work: mapWork(&wr)}
			return false, nil
		case resp.StatusCode == http.StatusNotFound:
			result = providers.LookupResult{Found: false, StatusTag: "not_found_openalex"}
			return false, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return true, fmt.Errorf("openalex rate limit (429)")
		default:
			result = providers.LookupResult{Found: false, StatusTag: fmt.Sprintf("error_openalex_%d", resp.StatusCode)}
			return false, nil
		}
	})
	if err != nil {
		log.Warn("OpenAlex-Abfrage fehlgeschlagen.", zap.Error(err))
		return providers.LookupResult{Found: false, StatusTag: "error_openalex_connection"}
	}
	return result
}

// SearchByTitle sucht das beste Werk zu einem Titel. Sehr kurze Titel liefern
// zu viele falsche Treffer und werden übersprungen.
func (c *Client) SearchByTitle(ctx context.Context, title string) (*providers.Work, bool) {
	if len(title) < 10 {
		return nil, false
	}
	endpoint := fmt.Sprintf("%s/works?filter=title.search:%s&per_page=1&mailto=%s",
		c.Config.OpenAlexBaseURL, url.QueryEscape(title), url.QueryEscape(c.Config.OpenAlexMailto))

	var work *providers.Work
	err := providers.WithRetry(ctx, providers.DefaultRetryPolicy, func() (bool, error) {
		req, err := c.newRequest(ctx, endpoint)
		if err != nil {
			return false, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return true, fmt.Errorf("openalex rate limit (429)")
		}
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("openalex title search failed with status: %d", resp.StatusCode)
		}
		var list WorksListResponse
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			return false, err
		}
		if len(list.Results) > 0 {
			work = mapWork(&list.Results[0])
		}
		return false, nil
	})
	if err != nil {
		c.Logger.Warn("OpenAlex-Titelsuche fehlgeschlagen.", zap.String("title", title), zap.Error(err))
		return nil, false
	}
	return work, work != nil
}

// AuthorMetricsByORCID liefert die Kennzahlen einer Person über ihre ORCID.
func (c *Client) AuthorMetricsByORCID(ctx context.Context, orcid string) providers.AuthorResult {
	endpoint := fmt.Sprintf("%s/authors/https://orcid.org/%s?mailto=%s",
		c.Config.OpenAlexBaseURL, url.PathEscape(orcid), url.QueryEscape(c.Config.OpenAlexMailto))
	log := c.Logger.With(zap.String("orcid", orcid))

	var result providers.AuthorResult
	err := providers.WithRetry(ctx, providers.DefaultRetryPolicy, func() (bool, error) {
		req, err := c.newRequest(ctx, endpoint)
		if err != nil {
			return false, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var ar AuthorResponse
			if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
				return false, err
			}
			result = providers.AuthorResult{
				Found:     true,
				StatusTag: "valid_openalex",
				Metrics: &providers.AuthorMetrics{
					ORCID:        orcid,
					DisplayName:  ar.DisplayName,
					WorksCount:   ar.WorksCount,
					CitedByCount: ar.CitedByCount,
					HIndex:       ar.SummaryStats.HIndex,
					I10Index:     ar.SummaryStats.I10Index,
				},
			}
			return false, nil
		case resp.StatusCode == http.StatusNotFound:
			result = providers.AuthorResult{Found: false, StatusTag: "not_found_openalex"}
			return false, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return true, fmt.Errorf("openalex rate limit (429)")
		default:
			result = providers.AuthorResult{Found: false, StatusTag: fmt.Sprintf("error_openalex_%d", resp.StatusCode)}
			return false, nil
		}
	})
	if err != nil {
		log.Warn("OpenAlex-Autorenabfrage fehlgeschlagen.", zap.Error(err))
		return providers.AuthorResult{Found: false, StatusTag: "error_openalex_connection"}
	}
	return result
}

func mapWork(wr *WorkResponse) *providers.Work {
	title := wr.DisplayName
	if title == "" {
		title = wr.Title
	}
	return &providers.Work{
		DOI:             wr.DOI,
		Title:           title,
		PublicationYear: wr.PublicationYear,
		CitedByCount:    wr.CitedByCount,
		JournalName:     wr.PrimaryLocation.Source.DisplayName,
		ISSN:            wr.PrimaryLocation.Source.ISSNL,
		OpenAlexID:      wr.ID,
		IsOA:            wr.OpenAccess.IsOA,
		OAStatus:        wr.OpenAccess.OAStatus,
		Language:        wr.Language,
	}
}

package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"scholar-hand/config"
	"scholar-hand/providers"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Browser-nahe Header reduzieren falsche 403-Antworten der Verlagsseiten.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9,es;q=0.8",
}

// Client folgt doi.org-Redirects bis zum HTTP-Endstatus.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Resolver-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (c *Client) Name() string {
	return "http"
}

// Resolve prüft die Erreichbarkeit eines DOI über den Resolver. 403 heißt
// "wahrscheinlich gültig, Anti-Bot-Schutz" und wird getrennt von echten
// Fehlstatus gemeldet.
func (c *Client) Resolve(ctx context.Context, doi string) providers.ResolveResult {
	target := fmt.Sprintf("%s/%s", c.Config.DOIResolverBaseURL, doi)
	log := c.Logger.With(zap.String("doi", doi))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return providers.ResolveResult{StatusTag: "error_http_connection"}
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Debug("Resolver-Check fehlgeschlagen.", zap.Error(err))
		return providers.ResolveResult{StatusTag: "error_http_connection"}
	}
	defer resp.Body.Close()
	// Body verwerfen, damit die Verbindung wiederverwendet werden kann.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	status := resp.StatusCode
	finalURL := resp.Request.URL.String()
	switch {
	case status == http.StatusForbidden:
		return providers.ResolveResult{Blocked: true, StatusTag: "blocked_403", HTTPStatus: status, FinalURL: finalURL}
	case status >= 200 && status < 400:
		return providers.ResolveResult{Valid: true, StatusTag: "valid_http", HTTPStatus: status, FinalURL: finalURL}
	default:
		return providers.ResolveResult{StatusTag: fmt.Sprintf("broken_http_%d", status), HTTPStatus: status, FinalURL: finalURL}
	}
}

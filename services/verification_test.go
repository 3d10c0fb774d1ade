package services

import (
	"context"
	"testing"

	"scholar-hand/models"
	"scholar-hand/providers"

	"go.uber.org/zap"
)

type fakeIndex struct {
	result providers.LookupResult
	calls  int
}

func (f *fakeIndex) LookupWork(ctx context.Context, doi string) providers.LookupResult {
	f.calls++
	return f.result
}

func (f *fakeIndex) SearchByTitle(ctx context.Context, title string) (*providers.Work, bool) {
	return nil, false
}

func (f *fakeIndex) AuthorMetricsByORCID(ctx context.Context, orcid string) providers.AuthorResult {
	return providers.AuthorResult{}
}

func (f *fakeIndex) Name() string { return "openalex" }

type fakeResolver struct {
	result providers.ResolveResult
	calls  int
}

func (f *fakeResolver) Resolve(ctx context.Context, doi string) providers.ResolveResult {
	f.calls++
	return f.result
}

func (f *fakeResolver) Name() string { return "http" }

func newTestVerifier(index *fakeIndex, res *fakeResolver) *VerificationClient {
	return NewVerificationClient(index, res, zap.NewNop())
}

func TestVerifyHybridPrimaryHit(t *testing.T) {
	index := &fakeIndex{result: providers.LookupResult{
		Found:     true,
		StatusTag: "valid_openalex",
		Work:      &providers.Work{Title: "Some Work", CitedByCount: 7},
	}}
	res := &fakeResolver{}

	outcome := newTestVerifier(index, res).Verify(context.Background(), "10.1371/journal.pone.0123456", StrategyHybrid)

	if !outcome.Valid {
		t.Errorf("expected valid outcome")
	}
	if outcome.Status != models.DOIStatusValidOpenAlex {
		t.Errorf("status = %q, want %q", outcome.Status, models.DOIStatusValidOpenAlex)
	}
	if outcome.Work == nil || outcome.Work.CitedByCount != 7 {
		t.Errorf("expected work metadata to be carried through")
	}
	if res.calls != 0 {
		t.Errorf("resolver must not be called on a primary hit")
	}
}

func TestVerifyHybridFallsBackOnNotFound(t *testing.T) {
	index := &fakeIndex{result: providers.LookupResult{Found: false, StatusTag: "not_found_openalex"}}
	res := &fakeResolver{result: providers.ResolveResult{Valid: true, StatusTag: "valid_http", HTTPStatus: 200, FinalURL: "https://publisher.example/article"}}

	outcome := newTestVerifier(index, res).Verify(context.Background(), "10.5555/12345678", StrategyHybrid)

	if res.calls != 1 {
		t.Fatalf("expected exactly one resolver call, got %d", res.calls)
	}
	if !outcome.Valid || outcome.Status != models.DOIStatusValidHTTP {
		t.Errorf("outcome = %+v, want valid_http", outcome)
	}
	if outcome.FinalURL != "https://publisher.example/article" {
		t.Errorf("final URL not carried through: %q", outcome.FinalURL)
	}
}

func TestVerifyHybridNoFallbackOnPrimaryError(t *testing.T) {
	// An index outage must not masquerade as "not found": no fallback,
	// status stays pending so the record is retried later.
	index := &fakeIndex{result: providers.LookupResult{Found: false, StatusTag: "error_openalex_connection"}}
	res := &fakeResolver{}

	outcome := newTestVerifier(index, res).Verify(context.Background(), "10.5555/12345678", StrategyHybrid)

	if res.calls != 0 {
		t.Errorf("resolver must not be called on a primary error")
	}
	if outcome.Valid {
		t.Errorf("expected invalid outcome")
	}
	if outcome.Status != models.DOIStatusPending {
		t.Errorf("status = %q, want %q", outcome.Status, models.DOIStatusPending)
	}
	if outcome.Tag != "error_openalex_connection" {
		t.Errorf("tag = %q, want error_openalex_connection", outcome.Tag)
	}
}

func TestVerifyBlockedResolver(t *testing.T) {
	index := &fakeIndex{result: providers.LookupResult{Found: false, StatusTag: "not_found_openalex"}}
	res := &fakeResolver{result: providers.ResolveResult{Blocked: true, StatusTag: "blocked_403", HTTPStatus: 403}}

	outcome := newTestVerifier(index, res).Verify(context.Background(), "10.5555/12345678", StrategyHybrid)

	if outcome.Valid {
		t.Errorf("blocked must not count as valid")
	}
	if outcome.Status != models.DOIStatusBlocked {
		t.Errorf("status = %q, want %q", outcome.Status, models.DOIStatusBlocked)
	}
}

func TestVerifyOpenAlexOnlyNotFoundIsBroken(t *testing.T) {
	index := &fakeIndex{result: providers.LookupResult{Found: false, StatusTag: "not_found_openalex"}}
	res := &fakeResolver{}

	outcome := newTestVerifier(index, res).Verify(context.Background(), "10.5555/12345678", StrategyOpenAlex)

	if res.calls != 0 {
		t.Errorf("resolver must not be called for the openalex strategy")
	}
	if outcome.Status != models.DOIStatusBroken {
		t.Errorf("status = %q, want %q", outcome.Status, models.DOIStatusBroken)
	}
}

func TestVerifyHTTPOnlyBroken(t *testing.T) {
	index := &fakeIndex{}
	res := &fakeResolver{result: providers.ResolveResult{StatusTag: "broken_http_404", HTTPStatus: 404}}

	outcome := newTestVerifier(index, res).Verify(context.Background(), "10.5555/12345678", StrategyHTTP)

	if index.calls != 0 {
		t.Errorf("index must not be called for the http strategy")
	}
	if outcome.Status != models.DOIStatusBroken {
		t.Errorf("status = %q, want %q", outcome.Status, models.DOIStatusBroken)
	}
	if outcome.Tag != "broken_http_404" {
		t.Errorf("tag = %q, want broken_http_404", outcome.Tag)
	}
}

func TestVerifyEmptyDOI(t *testing.T) {
	outcome := newTestVerifier(&fakeIndex{}, &fakeResolver{}).Verify(context.Background(), "   ", StrategyHybrid)
	if outcome.Valid || outcome.Tag != "empty_doi" {
		t.Errorf("outcome = %+v, want empty_doi", outcome)
	}
}

func TestCanTransitionDOIStatus(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.DOIStatusPending, models.DOIStatusValidOpenAlex, true},
		{models.DOIStatusPending, models.DOIStatusValidHTTP, true},
		{models.DOIStatusPending, models.DOIStatusBlocked, true},
		{models.DOIStatusPending, models.DOIStatusBroken, true},
		{models.DOIStatusPending, models.DOIStatusRepaired, false},
		{models.DOIStatusBroken, models.DOIStatusRepaired, true},
		{models.DOIStatusBroken, models.DOIStatusPending, false},
		// A verified DOI is never downgraded by routine audits.
		{models.DOIStatusValidOpenAlex, models.DOIStatusBroken, false},
		{models.DOIStatusValidHTTP, models.DOIStatusBroken, false},
		{models.DOIStatusRepaired, models.DOIStatusBroken, false},
		{models.DOIStatusBlocked, models.DOIStatusBroken, false},
	}
	for _, tt := range tests {
		if got := models.CanTransitionDOIStatus(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionDOIStatus(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

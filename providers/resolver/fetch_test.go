package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scholar-hand/config"

	"go.uber.org/zap"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Config{DOIResolverBaseURL: baseURL}, zap.NewNop())
}

func TestResolveValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := testClient(srv.URL).Resolve(context.Background(), "10.5555/12345678")

	if !result.Valid {
		t.Errorf("expected valid, got %+v", result)
	}
	if result.StatusTag != "valid_http" {
		t.Errorf("tag = %q, want valid_http", result.StatusTag)
	}
	if result.HTTPStatus != http.StatusOK {
		t.Errorf("status = %d, want 200", result.HTTPStatus)
	}
}

func TestResolveFollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()
	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/article", http.StatusFound)
	}))
	defer hop.Close()

	result := testClient(hop.URL).Resolve(context.Background(), "10.5555/12345678")

	if !result.Valid {
		t.Fatalf("expected valid after redirect, got %+v", result)
	}
	if result.FinalURL != final.URL+"/article" {
		t.Errorf("final URL = %q, want %q", result.FinalURL, final.URL+"/article")
	}
}

func TestResolveBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := testClient(srv.URL).Resolve(context.Background(), "10.5555/12345678")

	if result.Valid {
		t.Errorf("blocked must not be valid")
	}
	if !result.Blocked {
		t.Errorf("expected blocked flag")
	}
	if result.StatusTag != "blocked_403" {
		t.Errorf("tag = %q, want blocked_403", result.StatusTag)
	}
}

func TestResolveBroken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	result := testClient(srv.URL).Resolve(context.Background(), "10.5555/gone")

	if result.Valid || result.Blocked {
		t.Errorf("expected broken, got %+v", result)
	}
	if result.StatusTag != "broken_http_404" {
		t.Errorf("tag = %q, want broken_http_404", result.StatusTag)
	}
}

func TestResolveConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	result := testClient(srv.URL).Resolve(context.Background(), "10.5555/12345678")

	if result.StatusTag != "error_http_connection" {
		t.Errorf("tag = %q, want error_http_connection", result.StatusTag)
	}
}

package papyrus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPFetcherBasic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 pretend"))
	}))
	defer srv.Close()

	data, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL+"/doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4 pretend" {
		t.Errorf("unexpected body: %q", data)
	}
}

func TestHTTPFetcher404Terminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Kind != KindDownload || e.Status != 404 {
		t.Errorf("got kind %v status %d, want download 404", e.Kind, e.Status)
	}
	if !e.Terminal() {
		t.Error("404 downloads must be terminal")
	}
}

func TestHTTPFetcher500Retryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Terminal() {
		t.Error("500 downloads must stay retryable")
	}
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Kind != KindDownload || e.Status != 0 {
		t.Errorf("got kind %v status %d, want download with no status", e.Kind, e.Status)
	}
	if e.Terminal() {
		t.Error("transport failures must stay retryable")
	}
}

func TestHTTPFetcherSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(FetchMaxBytes(1024)).Fetch(context.Background(), srv.URL)
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindDownload {
		t.Fatalf("expected download error for oversized body, got %v", err)
	}

	data, err := NewHTTPFetcher(FetchMaxBytes(4096)).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("within-limit fetch failed: %v", err)
	}
	if len(data) != 2048 {
		t.Errorf("len = %d, want 2048", len(data))
	}
}

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	if _, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	if gotUA != fetchUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, fetchUserAgent)
	}
}

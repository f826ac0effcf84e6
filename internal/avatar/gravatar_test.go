package avatar

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestURLForNormalizesEmail(t *testing.T) {
	t.Parallel()

	p := New()
	a := p.URLFor("Alice@Example.COM ")
	b := p.URLFor("alice@example.com")
	if a != b {
		t.Fatalf("normalization mismatch: %q vs %q", a, b)
	}
	if !strings.Contains(a, "?d=404") {
		t.Fatalf("missing d=404 parameter: %q", a)
	}
}

func TestResolveFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL+"/avatar/", srv.Client())
	url, err := p.Resolve("alice@example.com")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !strings.HasPrefix(url, srv.URL) {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestResolveMissing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL+"/avatar/", srv.Client())
	if _, err := p.Resolve("nobody@example.com"); err == nil {
		t.Fatal("expected error for missing avatar")
	}
}

func TestResolveServerDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	p := NewWithBaseURL(srv.URL+"/avatar/", nil)
	if _, err := p.Resolve("alice@example.com"); err == nil {
		t.Fatal("expected error when avatar host is unreachable")
	}
}

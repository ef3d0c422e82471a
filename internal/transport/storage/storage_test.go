package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/retry"
)

func fastRetry() retry.Policy {
	return retry.Policy{MaxRetries: 1, Timeout: time.Second, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func TestHTTPStore_Fetch(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	s, err := NewHTTPStore(HTTPConfig{BaseURL: srv.URL + "/", Bucket: "docs", APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}

	data, err := s.Fetch(context.Background(), "uploads/1700000000 report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "%PDF-1.4 body" {
		t.Errorf("unexpected body %q", data)
	}
	if gotPath != "/storage/v1/object/docs/uploads/1700000000%20report.pdf" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestHTTPStore_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	s, _ := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, Bucket: "docs"})
	_, err := s.Fetch(context.Background(), "missing.pdf")
	if !errors.Is(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestHTTPStore_ServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, Bucket: "docs", Retry: fastRetry()})
	_, err := s.Fetch(context.Background(), "a.pdf")
	if err == nil || errors.Is(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected generic error, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts for 5xx, got %d", got)
	}
}

func TestHTTPStore_RetriesDroppedConnection(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("response writer cannot hijack")
				return
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	s, _ := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, Bucket: "docs", Retry: fastRetry()})
	data, err := s.Fetch(context.Background(), "a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected body %q", data)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestHTTPStore_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	s, _ := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, Bucket: "docs", Retry: fastRetry()})
	data, err := s.Fetch(context.Background(), "a.pdf")
	if err != nil || string(data) != "hello" {
		t.Fatalf("expected hello, got %q, %v", data, err)
	}
}

func TestHTTPStore_ClientErrorsNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusBadRequest, http.StatusForbidden} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "no", code)
		}))

		s, _ := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, Bucket: "docs", Retry: fastRetry()})
		if _, err := s.Fetch(context.Background(), "a.pdf"); err == nil {
			t.Errorf("status %d: expected error", code)
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("status %d: expected 1 attempt, got %d", code, got)
		}
		srv.Close()
	}
}

func TestHTTPStore_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	s, _ := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, Bucket: "docs", MaxBytes: 4})
	if _, err := s.Fetch(context.Background(), "a.pdf"); err == nil {
		t.Fatal("expected size error")
	}
}

func TestNewHTTPStore_Validation(t *testing.T) {
	if _, err := NewHTTPStore(HTTPConfig{Bucket: "docs"}); err == nil {
		t.Error("expected error for missing base url")
	}
	if _, err := NewHTTPStore(HTTPConfig{BaseURL: "http://x"}); err == nil {
		t.Error("expected error for missing bucket")
	}
}

func TestFSStore_Fetch(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "uploads"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "uploads", "a.txt"), []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	data, err := s.Fetch(context.Background(), "uploads/a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected data %q", data)
	}

	if _, err := s.Fetch(context.Background(), "uploads/missing.txt"); !errors.Is(err, domain.ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	for _, key := range []string{"../etc/passwd", "/etc/passwd", "a/../../b", ""} {
		if _, err := s.Fetch(context.Background(), key); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Fetch(%q): expected ErrInvalidInput, got %v", key, err)
		}
	}
}

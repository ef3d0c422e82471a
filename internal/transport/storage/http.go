// Package storage fetches uploaded documents from the blob store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/retry"
)

// DefaultMaxBytes caps a downloaded document.
const DefaultMaxBytes = int64(50 * 1024 * 1024)

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 60 * time.Second

// HTTPConfig configures an HTTP object storage client.
type HTTPConfig struct {
	BaseURL  string
	Bucket   string
	APIKey   string
	MaxBytes int64
	// Retry covers each Fetch. A zero policy means one retry with DefaultTimeout per attempt.
	Retry      retry.Policy
	HTTPClient *http.Client
}

// HTTPStore downloads objects via GET {base}/storage/v1/object/{bucket}/{key}.
type HTTPStore struct {
	base     string
	bucket   string
	apiKey   string
	maxBytes int64
	policy   retry.Policy
	client   *http.Client
}

// NewHTTPStore validates cfg and builds the client.
func NewHTTPStore(cfg HTTPConfig) (*HTTPStore, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("storage base url is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	s := &HTTPStore{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		bucket:   cfg.Bucket,
		apiKey:   cfg.APIKey,
		maxBytes: cfg.MaxBytes,
		policy:   cfg.Retry,
		client:   cfg.HTTPClient,
	}
	if s.policy == (retry.Policy{}) {
		s.policy = retry.DefaultPolicy()
		s.policy.Timeout = DefaultTimeout
	}
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultMaxBytes
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	return s, nil
}

// Fetch returns the object's bytes. A 404 maps to domain.ErrBlobNotFound.
// Network failures, 429 and 5xx replies are retried under the store's policy.
func (s *HTTPStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, domain.ErrBlobNotFound
	}

	var body []byte
	err := retry.Do(ctx, s.policy, isTransient, func(ctx context.Context) error {
		var err error
		body, err = s.fetchOnce(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *HTTPStore) fetchOnce(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w", key, domain.ErrBlobNotFound)
	case resp.StatusCode != http.StatusOK:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: %w", key, &statusError{code: resp.StatusCode, detail: strings.TrimSpace(string(detail))})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("fetch %s: object exceeds %d bytes", key, s.maxBytes)
	}
	return body, nil
}

// statusError is a non-200, non-404 reply from the object store.
type statusError struct {
	code   int
	detail string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.detail)
}

// isTransient retries network failures, 429 and 5xx. Other 4xx replies are final.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	return retry.IsTransient(err)
}

func (s *HTTPStore) objectURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.base + "/storage/v1/object/" + url.PathEscape(s.bucket) + "/" + strings.Join(segments, "/")
}

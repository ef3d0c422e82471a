package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/v1/documents/{key}/context", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/abc/context", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/v1/documents/{key}/context", "200"))
	if got < 1 {
		t.Errorf("http_requests_total = %f, want >= 1", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/created", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/silent", func(http.ResponseWriter, *http.Request) {})

	tests := []struct {
		path, status string
	}{
		{"/created", "201"},
		{"/missing", "404"},
		{"/silent", "200"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.status)); v < 1 {
				t.Errorf("requests_total{%s,%s} = %f", tc.path, tc.status, v)
			}
		})
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()
}

func TestPipelineMetrics(t *testing.T) {
	before := testutil.ToFloat64(RetrievalStageTotal.WithLabelValues("3"))
	RetrievalStageTotal.WithLabelValues("3").Inc()
	if got := testutil.ToFloat64(RetrievalStageTotal.WithLabelValues("3")); got != before+1 {
		t.Errorf("retrieval_stage_total{3} = %f, want %f", got, before+1)
	}
}

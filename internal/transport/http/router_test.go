package httptransport_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httptransport "finvoice/internal/transport/http"
	"finvoice/pkg/testutil"
)

func TestRouterOperationalEndpoints(t *testing.T) {
	testutil.Given(t, "a router with no module handlers", func(t *testing.T) {
		router := httptransport.NewRouter()

		testutil.When(t, "calling GET /healthz", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "it should report ok", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
				if !strings.Contains(rec.Body.String(), `"ok"`) {
					t.Fatalf("expected ok body, got %q", rec.Body.String())
				}
			})
		})

		testutil.When(t, "calling GET /metrics", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "it should serve the metrics exposition", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
			})
		})
	})
}

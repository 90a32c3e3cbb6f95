package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle/internal/platform/metrics"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	authmw "raffle/pkg/platform/middleware/auth"
	"raffle/pkg/requestcontext"
)

type stubVerifier struct {
	caller id.Identity
	err    error
}

func (v stubVerifier) VerifyRequest(token, _, _ string, _ []byte) (*authmw.SignatureClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &authmw.SignatureClaims{Caller: v.caller, JTI: token, ExpiresAt: time.Now().Add(time.Minute)}, nil
}

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, requestcontext.Caller(r.Context()).String())
	})
}

func newRouter(t *testing.T, verifier authmw.SignatureVerifier, health map[string]HealthCheck) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(RouterDeps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Verifier: verifier,
		Health:   health,
		Modules:  []RouteRegistrar{whoami{}},
	})
}

func TestRouter_Healthz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		router := newRouter(t, stubVerifier{}, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var body healthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"])
	})

	t.Run("failing check degrades", func(t *testing.T) {
		router := newRouter(t, stubVerifier{}, map[string]HealthCheck{
			"redis": func(context.Context) error {
				return dErrors.New(dErrors.CodeInternal, "redis unreachable")
			},
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		var body healthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "redis unreachable", body.Checks["redis"])
	})
}

func TestRouter_Metrics(t *testing.T) {
	router := newRouter(t, stubVerifier{}, nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestRouter_SignedModuleRoutes(t *testing.T) {
	var caller id.Identity
	caller[0] = 7

	t.Run("verified caller reaches module", func(t *testing.T) {
		router := newRouter(t, stubVerifier{caller: caller}, nil)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Signature token-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, caller.String(), rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		router := newRouter(t, stubVerifier{err: dErrors.New(dErrors.CodeUnauthorized, "bad signature")}, nil)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Signature token-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unsigned passes through", func(t *testing.T) {
		router := newRouter(t, stubVerifier{err: errors.New("unused")}, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, id.Identity{}.String(), rr.Body.String())
	})
}

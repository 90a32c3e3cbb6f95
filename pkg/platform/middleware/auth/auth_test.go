package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/requestcontext"
)

var caller = id.Identity{0xa1}

type stubVerifier struct {
	claims   *SignatureClaims
	err      error
	gotToken string
	gotBody  string
	gotPath  string
}

func (v *stubVerifier) VerifyRequest(token, method, path string, body []byte) (*SignatureClaims, error) {
	v.gotToken = token
	v.gotPath = method + " " + path
	v.gotBody = string(body)
	return v.claims, v.err
}

type stubReplay struct {
	fresh bool
	err   error
}

func (r stubReplay) Consume(context.Context, string, time.Time) (bool, error) {
	return r.fresh, r.err
}

func run(t *testing.T, verifier SignatureVerifier, replay ReplayGuard, req *http.Request) (*httptest.ResponseRecorder, id.Identity, string) {
	t.Helper()
	var gotCaller id.Identity
	var gotBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller = requestcontext.Caller(r.Context())
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()
	VerifySignature(verifier, replay, logger)(next).ServeHTTP(w, req)
	return w, gotCaller, gotBody
}

func TestVerifySignature(t *testing.T) {
	validClaims := &SignatureClaims{Caller: caller, JTI: "jti", ExpiresAt: time.Now().Add(time.Minute)}

	t.Run("unsigned requests pass through without caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/raffles", nil)
		w, got, _ := run(t, &stubVerifier{}, nil, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, got.IsZero())
	})

	t.Run("verified caller reaches handler with body intact", func(t *testing.T) {
		verifier := &stubVerifier{claims: validClaims}
		req := httptest.NewRequest(http.MethodPost, "/v1/raffles/1/entries", strings.NewReader(`{"amount":100}`))
		req.Header.Set("Authorization", "Signature tok")

		w, got, body := run(t, verifier, stubReplay{fresh: true}, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, caller, got)
		assert.Equal(t, `{"amount":100}`, body)
		assert.Equal(t, "tok", verifier.gotToken)
		assert.Equal(t, "POST /v1/raffles/1/entries", verifier.gotPath)
		assert.Equal(t, `{"amount":100}`, verifier.gotBody)
	})

	t.Run("bearer scheme rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/raffles", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w, _, _ := run(t, &stubVerifier{claims: validClaims}, nil, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/raffles", nil)
		req.Header.Set("Authorization", "Signature tok")
		verifier := &stubVerifier{err: dErrors.New(dErrors.CodeUnauthorized, "signature is invalid")}
		w, _, _ := run(t, verifier, nil, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "signature is invalid")
	})

	t.Run("replayed signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/raffles", nil)
		req.Header.Set("Authorization", "Signature tok")
		w, _, _ := run(t, &stubVerifier{claims: validClaims}, stubReplay{fresh: false}, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("replay store failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/raffles", nil)
		req.Header.Set("Authorization", "Signature tok")
		w, _, _ := run(t, &stubVerifier{claims: validClaims}, stubReplay{err: errors.New("redis down")}, req)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "redis down")
	})
}

package auth

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/httputil"
	"raffle/pkg/requestcontext"
)

// SignatureVerifier checks a signed-request token against the request it
// arrived with.
type SignatureVerifier interface {
	VerifyRequest(token, method, path string, body []byte) (*SignatureClaims, error)
}

// ReplayGuard consumes token ids so each signed request is accepted once.
type ReplayGuard interface {
	Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
}

// SignatureClaims is what the middleware needs from a verified token.
type SignatureClaims struct {
	Caller    id.Identity
	JTI       string
	ExpiresAt time.Time
}

const signaturePrefix = "Signature "

// VerifySignature authenticates signed requests and places the verified caller
// in the request context. Requests without an Authorization header pass
// through unauthenticated; handlers that need a caller reject them.
func VerifySignature(verifier SignatureVerifier, replay ReplayGuard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)
			token, ok := strings.CutPrefix(authHeader, signaturePrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - unsupported authorization scheme",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body too large"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			claims, err := verifier.VerifyRequest(token, r.Method, r.URL.Path, body)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid signature",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			if replay != nil {
				fresh, err := replay.Consume(ctx, claims.JTI, claims.ExpiresAt)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check signature replay",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate signature"))
					return
				}
				if !fresh {
					logger.WarnContext(ctx, "unauthorized access - signature replayed",
						"jti", claims.JTI,
						"caller", claims.Caller,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "signature has already been used"))
					return
				}
			}

			ctx = requestcontext.WithCaller(ctx, claims.Caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	id "raffle/pkg/domain"
	"raffle/pkg/requestcontext"
)

// Keypair is a test participant with its signing key.
type Keypair struct {
	Identity id.Identity
	Private  ed25519.PrivateKey
}

// NewKeypair generates a fresh ed25519 identity.
func NewKeypair(t *testing.T) Keypair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err, "failed to generate key")
	identity, err := id.IdentityFromPublicKey(pub)
	require.NoError(t, err, "failed to derive identity")
	return Keypair{Identity: identity, Private: priv}
}

// WithCaller adds a verified caller to the request context.
// This simulates what the signature middleware does for signed requests.
func WithCaller(req *http.Request, caller id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithTime pins the request time seen by handlers.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

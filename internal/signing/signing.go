// Package signing issues and verifies signed requests: compact EdDSA JWS
// tokens bound to one HTTP method, path and body, signed by the caller's
// ed25519 key. The verified subject is the caller identity.
package signing

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
)

// DefaultMaxSkew bounds both clock drift on iat and token lifetime.
const DefaultMaxSkew = 5 * time.Minute

// Scheme is the Authorization header scheme for signed requests.
const Scheme = "Signature"

// Claims binds a token to a single request.
type Claims struct {
	Method   string `json:"htm"`
	Path     string `json:"htu"`
	BodyHash string `json:"bdh"`
	jwt.RegisteredClaims
}

// Verified is the outcome of a successful verification.
type Verified struct {
	Caller    id.Identity
	JTI       string
	ExpiresAt time.Time
}

// BodyHash returns the hex sha256 of body, as carried in the bdh claim.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Signer produces tokens for one key.
type Signer struct {
	key      ed25519.PrivateKey
	identity id.Identity
	ttl      time.Duration
	now      func() time.Time
}

type SignerOption func(*Signer)

// WithTTL sets how long issued tokens stay valid.
func WithTTL(ttl time.Duration) SignerOption {
	return func(s *Signer) {
		s.ttl = ttl
	}
}

// WithSignerClock overrides the signer's clock.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

func NewSigner(key ed25519.PrivateKey, opts ...SignerOption) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "signing key must be an ed25519 private key")
	}
	identity, err := id.IdentityFromPublicKey(key.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	s := &Signer{
		key:      key,
		identity: identity,
		ttl:      time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Identity returns the caller identity tokens from this signer verify as.
func (s *Signer) Identity() id.Identity {
	return s.identity
}

// Sign returns a compact JWS for method, path and body.
func (s *Signer) Sign(method, path string, body []byte) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		Method:   method,
		Path:     path,
		BodyHash: BodyHash(body),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.identity.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.key)
}

// AuthorizationHeader returns the header value for a signed request.
func (s *Signer) AuthorizationHeader(method, path string, body []byte) (string, error) {
	token, err := s.Sign(method, path, body)
	if err != nil {
		return "", err
	}
	return Scheme + " " + token, nil
}

// Verifier checks signed-request tokens. The key comes from the sub claim.
type Verifier struct {
	maxSkew time.Duration
	now     func() time.Time
}

type VerifierOption func(*Verifier)

func WithMaxSkew(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.maxSkew = d
	}
}

// WithVerifierClock overrides the verifier's clock.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{
		maxSkew: DefaultMaxSkew,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the token's signature, freshness and binding to the request.
func (v *Verifier) Verify(token, method, path string, body []byte) (*Verified, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature is required")
	}

	var claims Claims
	var caller id.Identity
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*Claims)
		if !ok {
			return nil, jwt.ErrTokenInvalidClaims
		}
		parsed, err := id.ParseIdentity(c.Subject)
		if err != nil {
			return nil, err
		}
		caller = parsed
		return caller.PublicKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature jti is required")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature iat and exp are required")
	}

	now := v.now()
	iat := claims.IssuedAt.Time
	exp := claims.ExpiresAt.Time
	if iat.After(now.Add(v.maxSkew)) || iat.Before(now.Add(-v.maxSkew)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature issued outside the allowed window")
	}
	if !exp.After(now) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature has expired")
	}
	if exp.Sub(iat) > v.maxSkew {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature lifetime is too long")
	}

	if claims.Method != method || claims.Path != path {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature does not match request")
	}
	if claims.BodyHash != BodyHash(body) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "signature does not match request body")
	}

	return &Verified{
		Caller:    caller,
		JTI:       claims.ID,
		ExpiresAt: exp,
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrEd25519Verification):
		return dErrors.New(dErrors.CodeUnauthorized, "signature is invalid")
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return dErrors.New(dErrors.CodeUnauthorized, "signature algorithm is not accepted")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return dErrors.New(dErrors.CodeUnauthorized, "signature is malformed")
	default:
		return dErrors.New(dErrors.CodeUnauthorized, "invalid signature")
	}
}

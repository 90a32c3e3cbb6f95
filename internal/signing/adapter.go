package signing

import (
	authmw "raffle/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims converts a verification result for the auth middleware.
func ToMiddlewareClaims(v *Verified) *authmw.SignatureClaims {
	return &authmw.SignatureClaims{
		Caller:    v.Caller,
		JTI:       v.JTI,
		ExpiresAt: v.ExpiresAt,
	}
}

// VerifierAdapter exposes a Verifier through the middleware interface.
type VerifierAdapter struct {
	verifier *Verifier
}

func NewVerifierAdapter(verifier *Verifier) *VerifierAdapter {
	return &VerifierAdapter{verifier: verifier}
}

func (a *VerifierAdapter) VerifyRequest(token, method, path string, body []byte) (*authmw.SignatureClaims, error) {
	verified, err := a.verifier.Verify(token, method, path, body)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(verified), nil
}

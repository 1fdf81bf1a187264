// Package auth provides TokenVerifier implementations for the admission
// gate.
package auth

import (
	"context"

	"github.com/luciancaetano/chathub"
)

// StaticVerifier accepts exactly one pre-shared token. It is the simplest
// useful verifier for deployments without an external auth service.
type StaticVerifier struct {
	token string
}

// NewStaticVerifier returns a verifier for the given pre-shared token.
func NewStaticVerifier(token string) *StaticVerifier {
	return &StaticVerifier{token: token}
}

// Verify accepts the pre-shared token and rejects everything else.
func (v *StaticVerifier) Verify(ctx context.Context, token string) (chathub.Verification, error) {
	if token == v.token {
		return chathub.Verification{Accepted: true}, nil
	}
	return chathub.Verification{Accepted: false, Reason: "invalid token"}, nil
}

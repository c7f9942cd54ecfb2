/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oauth2client

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierEntropy gives a 75 character verifier, within the 43 to 128 characters PKCE allows.
const verifierEntropy = 56

// PKCE is the proof key of an authorization code request.
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// NewPKCE returns a PKCE with a random verifier and its S256 challenge.
func NewPKCE() (*PKCE, error) {
	b := make([]byte, verifierEntropy)

	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}

	return pkceFromVerifier(base64.RawURLEncoding.EncodeToString(b)), nil
}

func pkceFromVerifier(verifier string) *PKCE {
	sum := sha256.Sum256([]byte(verifier))

	return &PKCE{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
		Method:    CodeChallengeMethodS256,
	}
}

// Matches reports whether verifier is the one the challenge was derived from.
func (p *PKCE) Matches(verifier string) bool {
	return pkceFromVerifier(verifier).Challenge == p.Challenge
}

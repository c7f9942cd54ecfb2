/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoctx

import (
	"crypto"
	"encoding/base64"
	"fmt"

	"github.com/go-jose/go-jose/v3"
)

// Thumbprint returns the RFC 7638 SHA-256 thumbprint of key, base64url encoded.
func Thumbprint(key *jose.JSONWebKey) (string, error) {
	if key == nil {
		return "", fmt.Errorf("missing key")
	}

	pub := key.Public()

	tp, err := pub.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("compute thumbprint: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(tp), nil
}

// SameThumbprint reports whether a and b are the same public key. It also returns
// both thumbprints for diagnostics.
func SameThumbprint(a, b *jose.JSONWebKey) (bool, string, string, error) {
	ta, err := Thumbprint(a)
	if err != nil {
		return false, "", "", err
	}

	tb, err := Thumbprint(b)
	if err != nil {
		return false, "", "", err
	}

	return ta == tb, ta, tb, nil
}

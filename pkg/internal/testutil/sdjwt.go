/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
)

// Disclosure is an encoded SD-JWT disclosure with its digest.
type Disclosure struct {
	Raw    string
	Digest string
}

// NewDisclosure encodes an object property disclosure.
func NewDisclosure(t *testing.T, salt, name string, value interface{}) Disclosure {
	t.Helper()

	return encodeDisclosure(t, []interface{}{salt, name, value})
}

// NewArrayDisclosure encodes an array element disclosure.
func NewArrayDisclosure(t *testing.T, salt string, value interface{}) Disclosure {
	t.Helper()

	return encodeDisclosure(t, []interface{}{salt, value})
}

func encodeDisclosure(t *testing.T, parts []interface{}) Disclosure {
	t.Helper()

	b, err := json.Marshal(parts)
	require.NoError(t, err)

	raw := base64.RawURLEncoding.EncodeToString(b)

	return Disclosure{Raw: raw, Digest: cryptoctx.SHA256Base64URL(raw)}
}

// Digests returns the digests of ds, in order.
func Digests(ds ...Disclosure) []interface{} {
	out := make([]interface{}, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Digest)
	}

	return out
}

// SignedSDJWT signs claims as an issuer JWT and appends the disclosures in combined format.
func (s *Signer) SignedSDJWT(t *testing.T, claims map[string]interface{}, ds ...Disclosure) string {
	t.Helper()

	if _, ok := claims["_sd_alg"]; !ok {
		claims["_sd_alg"] = "sha-256"
	}

	jwt := s.SignedJWT(t, claims, cryptoctx.WithType("dc+sd-jwt"))

	parts := []string{jwt}
	for _, d := range ds {
		parts = append(parts, d.Raw)
	}

	return strings.Join(parts, "~") + "~"
}

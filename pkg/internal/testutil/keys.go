/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/kms/local"
)

// Signer is a P-256 key held by an in-memory key store.
type Signer struct {
	Store   *local.Store
	Tag     string
	Key     *jose.JSONWebKey
	Context cryptoctx.Context
}

// NewSigner generates a key under tag in a fresh store.
func NewSigner(t *testing.T, tag string) *Signer {
	t.Helper()

	return NewSignerInStore(t, local.New(), tag)
}

// NewSignerInStore generates a key under tag in store.
func NewSignerInStore(t *testing.T, store *local.Store, tag string) *Signer {
	t.Helper()

	key, err := store.Generate(context.Background(), tag)
	require.NoError(t, err)

	return &Signer{Store: store, Tag: tag, Key: key, Context: store.Context(tag)}
}

// JWKS returns the public key as a single element key set.
func (s *Signer) JWKS() []jose.JSONWebKey {
	return []jose.JSONWebKey{s.Key.Public()}
}

// SignedJWT signs claims with the signer key.
func (s *Signer) SignedJWT(t *testing.T, claims interface{}, opts ...cryptoctx.SignOpt) string {
	t.Helper()

	jwt, err := cryptoctx.SignJWT(context.Background(), s.Context, claims, opts...)
	require.NoError(t, err)

	return jwt
}

// PublicJWK returns the public key as a generic JSON object, as embedded in cnf claims.
func (s *Signer) PublicJWK(t *testing.T) map[string]interface{} {
	t.Helper()

	b, err := json.Marshal(s.Key.Public())
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))

	return m
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination cryptoctx_mocks_test.go -package cryptoctx_test -source=cryptoctx.go -mock_names Context=MockContext,KeyStore=MockKeyStore

package cryptoctx

import (
	"context"
	"errors"

	"github.com/go-jose/go-jose/v3"
)

// ErrKeyNotFound is returned by a KeyStore when no key is bound to the requested tag.
var ErrKeyNotFound = errors.New("key not found")

// Context is the signing capability bound to a single key tag. Sign returns
// ES256 signatures in raw r||s form, as used by JWS.
type Context interface {
	PublicKey(ctx context.Context) (*jose.JSONWebKey, error)
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

// KeyStore manages the key lifecycle behind key tags.
type KeyStore interface {
	Generate(ctx context.Context, tag string) (*jose.JSONWebKey, error)
	Delete(ctx context.Context, tag string) error
	Context(tag string) Context
}

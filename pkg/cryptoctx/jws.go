/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoctx

import (
	"context"
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

// opaqueSigner adapts a Context to go-jose. The public key is resolved up front
// because go-jose asks for it without a context.
type opaqueSigner struct {
	ctx context.Context //nolint:containedctx
	cc  Context
	pub *jose.JSONWebKey
}

func (s *opaqueSigner) Public() *jose.JSONWebKey {
	return s.pub
}

func (s *opaqueSigner) Algs() []jose.SignatureAlgorithm {
	return []jose.SignatureAlgorithm{jose.ES256}
}

func (s *opaqueSigner) SignPayload(payload []byte, alg jose.SignatureAlgorithm) ([]byte, error) {
	if alg != jose.ES256 {
		return nil, fmt.Errorf("unsupported signature algorithm %s", alg)
	}

	return s.cc.Sign(s.ctx, payload)
}

type signOpts struct {
	typ      string
	embedJWK bool
	omitKID  bool
	headers  map[string]interface{}
}

// SignOpt configures the protected header of a signed JWT.
type SignOpt func(o *signOpts)

// WithType sets the typ header.
func WithType(typ string) SignOpt {
	return func(o *signOpts) { o.typ = typ }
}

// WithEmbeddedJWK puts the public key in the jwk header instead of referencing it by kid.
func WithEmbeddedJWK() SignOpt {
	return func(o *signOpts) { o.embedJWK = true }
}

// WithoutKeyID leaves the kid header out.
func WithoutKeyID() SignOpt {
	return func(o *signOpts) { o.omitKID = true }
}

// WithHeader adds an extra protected header.
func WithHeader(key string, value interface{}) SignOpt {
	return func(o *signOpts) {
		if o.headers == nil {
			o.headers = map[string]interface{}{}
		}

		o.headers[key] = value
	}
}

// SignJWT signs claims with the key behind cc and returns the compact serialization.
func SignJWT(ctx context.Context, cc Context, claims interface{}, opts ...SignOpt) (string, error) {
	o := &signOpts{}
	for _, opt := range opts {
		opt(o)
	}

	pub, err := cc.PublicKey(ctx)
	if err != nil {
		return "", fmt.Errorf("get public key: %w", err)
	}

	key := *pub
	if o.omitKID {
		key.KeyID = ""
	}

	signerOpts := &jose.SignerOptions{EmbedJWK: o.embedJWK}
	if o.typ != "" {
		signerOpts = signerOpts.WithType(jose.ContentType(o.typ))
	}

	for k, v := range o.headers {
		signerOpts = signerOpts.WithHeader(jose.HeaderKey(k), v)
	}

	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.ES256,
		Key:       &opaqueSigner{ctx: ctx, cc: cc, pub: &key},
	}, signerOpts)
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}

	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}

	return token, nil
}

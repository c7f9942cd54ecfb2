/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoctx

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"
)

// Token is a decoded compact JWS.
type Token struct {
	Raw     string
	Header  jose.Header
	Payload []byte
}

// Type returns the typ header.
func (t *Token) Type() string {
	typ, _ := t.Header.ExtraHeaders[jose.HeaderType].(string)

	return typ
}

// Claims unmarshals the payload into v.
func (t *Token) Claims(v interface{}) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("decode jwt payload: %w", err)
	}

	return nil
}

// Decode parses a compact JWS without verifying it.
func Decode(raw string) (*Token, error) {
	jws, err := jose.ParseSigned(raw)
	if err != nil {
		return nil, fmt.Errorf("parse jws: %w", err)
	}

	if len(jws.Signatures) != 1 {
		return nil, fmt.Errorf("expected one signature, got %d", len(jws.Signatures))
	}

	return &Token{
		Raw:     raw,
		Header:  jws.Signatures[0].Protected,
		Payload: jws.UnsafePayloadWithoutVerification(),
	}, nil
}

// ErrNoMatchingKey is returned by Verify when the kid in the header matches none of the keys.
var ErrNoMatchingKey = errors.New("no key matches the token kid")

// Verify checks the signature of raw with the key whose kid matches the token header.
// When the header has no kid and exactly one key is given, that key is used.
func Verify(raw string, keys []jose.JSONWebKey) (*Token, error) {
	jws, err := jose.ParseSigned(raw)
	if err != nil {
		return nil, fmt.Errorf("parse jws: %w", err)
	}

	if len(jws.Signatures) != 1 {
		return nil, fmt.Errorf("expected one signature, got %d", len(jws.Signatures))
	}

	header := jws.Signatures[0].Protected

	key, ok := lo.Find(keys, func(k jose.JSONWebKey) bool {
		return header.KeyID != "" && k.KeyID == header.KeyID
	})
	if !ok {
		if header.KeyID != "" || len(keys) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrNoMatchingKey, header.KeyID)
		}

		key = keys[0]
	}

	payload, err := jws.Verify(key.Public())
	if err != nil {
		return nil, fmt.Errorf("verify jws: %w", err)
	}

	return &Token{Raw: raw, Header: header, Payload: payload}, nil
}

// VerifyWithKey checks the signature of raw with a single key, ignoring the kid header.
func VerifyWithKey(raw string, key *jose.JSONWebKey) (*Token, error) {
	jws, err := jose.ParseSigned(raw)
	if err != nil {
		return nil, fmt.Errorf("parse jws: %w", err)
	}

	payload, err := jws.Verify(key.Public())
	if err != nil {
		return nil, fmt.Errorf("verify jws: %w", err)
	}

	return &Token{Raw: raw, Header: jws.Signatures[0].Protected, Payload: payload}, nil
}

// SHA256Base64URL hashes value with SHA-256 and encodes it base64url without padding.
func SHA256Base64URL(value string) string {
	sum := sha256.Sum256([]byte(value))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wia decodes wallet instance attestations.
package wia

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
)

// Claims are the payload claims of a wallet instance attestation.
type Claims struct {
	Issuer     string `json:"iss"`
	Subject    string `json:"sub"`
	IssuedAt   int64  `json:"iat"`
	Expiration int64  `json:"exp"`
	CNF        struct {
		JWK json.RawMessage `json:"jwk"`
	} `json:"cnf"`
}

// Attestation is a decoded wallet instance attestation. The signature is not checked; the
// attestation is verified by the issuer it is presented to.
type Attestation struct {
	Raw    string
	Claims Claims

	key *jose.JSONWebKey
}

// Decode parses raw and the key in its cnf claim.
func Decode(raw string) (*Attestation, error) {
	tok, err := cryptoctx.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode wallet instance attestation: %w", err)
	}

	a := &Attestation{Raw: raw}
	if err = tok.Claims(&a.Claims); err != nil {
		return nil, err
	}

	if len(a.Claims.CNF.JWK) == 0 {
		return nil, errors.New("wallet instance attestation has no cnf.jwk")
	}

	var key jose.JSONWebKey
	if err = key.UnmarshalJSON(a.Claims.CNF.JWK); err != nil {
		return nil, fmt.Errorf("decode cnf.jwk: %w", err)
	}

	a.key = &key

	return a, nil
}

// ConfirmationKey returns cnf.jwk.
func (a *Attestation) ConfirmationKey() *jose.JSONWebKey {
	return a.key
}

// KeyID returns the kid of cnf.jwk.
func (a *Attestation) KeyID() string {
	return a.key.KeyID
}

// ExpiresAt returns the exp claim.
func (a *Attestation) ExpiresAt() time.Time {
	return time.Unix(a.Claims.Expiration, 0)
}

// Expired reports whether the attestation is expired at now.
func (a *Attestation) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt())
}

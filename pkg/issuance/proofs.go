/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/walleterr"
	"github.com/trustbloc/iowallet/pkg/wia"
)

// JWT types of the proofs sent by the wallet.
const (
	TypeDPoP                   = "dpop+jwt"
	TypeClientAttestationPoP   = "jwt-client-attestation-pop"
	TypeCredentialRequestProof = "openid4vci-proof+jwt"
)

const (
	headerDPoP                 = "DPoP"
	headerClientAttestation    = "OAuth-Client-Attestation"
	headerClientAttestationPoP = "OAuth-Client-Attestation-PoP"

	authorizationSchemeDPoP = "DPoP"
	proofTypeJWT            = "jwt"
)

type dpopClaims struct {
	HTM        string `json:"htm"`
	HTU        string `json:"htu"`
	JTI        string `json:"jti"`
	IssuedAt   int64  `json:"iat"`
	Expiration int64  `json:"exp"`
	ATH        string `json:"ath,omitempty"`
}

type popClaims struct {
	Issuer     string `json:"iss"`
	Audience   string `json:"aud"`
	JTI        string `json:"jti"`
	IssuedAt   int64  `json:"iat"`
	Expiration int64  `json:"exp"`
}

type nonceProofClaims struct {
	Issuer     string `json:"iss"`
	Audience   string `json:"aud"`
	Nonce      string `json:"nonce"`
	IssuedAt   int64  `json:"iat"`
	Expiration int64  `json:"exp"`
}

// dpopProof signs a DPoP proof for a request to htu. ath binds the proof to accessToken when set.
func (s *Service) dpopProof(ctx context.Context, cc cryptoctx.Context, htu, accessToken string) (string, error) {
	now := s.now()

	claims := &dpopClaims{
		HTM:        http.MethodPost,
		HTU:        htu,
		JTI:        uuid.NewString(),
		IssuedAt:   now.Unix(),
		Expiration: now.Add(dpopProofTTL).Unix(),
	}

	if accessToken != "" {
		claims.ATH = cryptoctx.SHA256Base64URL(accessToken)
	}

	proof, err := cryptoctx.SignJWT(ctx, cc, claims,
		cryptoctx.WithType(TypeDPoP), cryptoctx.WithEmbeddedJWK(), cryptoctx.WithoutKeyID())
	if err != nil {
		return "", fmt.Errorf("sign dpop proof: %w", err)
	}

	return proof, nil
}

// clientAttestationPoP proves possession of the key the wallet attestation is bound to. The
// signing key must be the attested one.
func (s *Service) clientAttestationPoP(
	ctx context.Context,
	cc cryptoctx.Context,
	attestation *wia.Attestation,
	audience string,
) (string, error) {
	pub, err := cc.PublicKey(ctx)
	if err != nil {
		return "", fmt.Errorf("get wallet instance key: %w", err)
	}

	same, expected, got, err := cryptoctx.SameThumbprint(attestation.ConfirmationKey(), pub)
	if err != nil {
		return "", err
	}

	if !same {
		return "", walleterr.NewHolderBindingError(expected, got).WithComponent(walleterr.TokenComponent)
	}

	now := s.now()

	pop, err := cryptoctx.SignJWT(ctx, cc, &popClaims{
		Issuer:     attestation.KeyID(),
		Audience:   audience,
		JTI:        uuid.NewString(),
		IssuedAt:   now.Unix(),
		Expiration: now.Add(attestationPoPTTL).Unix(),
	}, cryptoctx.WithType(TypeClientAttestationPoP))
	if err != nil {
		return "", fmt.Errorf("sign client attestation pop: %w", err)
	}

	return pop, nil
}

// nonceProof signs the proof of possession of the credential key.
func (s *Service) nonceProof(ctx context.Context, cc cryptoctx.Context, nonce, clientID, audience string) (string, error) {
	now := s.now()

	proof, err := cryptoctx.SignJWT(ctx, cc, &nonceProofClaims{
		Issuer:     clientID,
		Audience:   audience,
		Nonce:      nonce,
		IssuedAt:   now.Unix(),
		Expiration: now.Add(nonceProofTTL).Unix(),
	}, cryptoctx.WithType(TypeCredentialRequestProof), cryptoctx.WithEmbeddedJWK(), cryptoctx.WithoutKeyID())
	if err != nil {
		return "", fmt.Errorf("sign credential request proof: %w", err)
	}

	return proof, nil
}

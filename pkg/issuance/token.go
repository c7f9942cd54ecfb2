/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"golang.org/x/oauth2"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/oauth2client"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/walleterr"
	"github.com/trustbloc/iowallet/pkg/wia"
)

// TokenContext holds the keys used to obtain an access token. The DPoP key bound to DPoPKeyTag
// is replaced with a fresh one for every token request.
type TokenContext struct {
	WalletInstanceAttestation string
	WIACryptoContext          cryptoctx.Context
	KeyStore                  cryptoctx.KeyStore
	DPoPKeyTag                string
}

// AccessTokenResult is the token endpoint response.
type AccessTokenResult struct {
	AccessToken          string                `json:"access_token"`
	TokenType            string                `json:"token_type"`
	ExpiresIn            int64                 `json:"expires_in,omitempty"`
	AuthorizationDetails []AuthorizationDetail `json:"authorization_details,omitempty"`
	CNonce               string                `json:"c_nonce,omitempty"`
}

// AuthorizeAccess redeems the authorization code for a DPoP bound access token.
func (s *Service) AuthorizeAccess(
	ctx context.Context,
	conf *issuer.Config,
	code, clientID, redirectURI, codeVerifier string,
	tc TokenContext,
) (*AccessTokenResult, error) {
	header, err := s.tokenRequestHeader(ctx, conf, tc)
	if err != nil {
		return nil, err
	}

	tok, err := s.oauth2Client.Exchange(ctx, oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint:    oauth2.Endpoint{TokenURL: conf.TokenEndpoint},
	}, code, header, oauth2client.SetAuthURLParam("code_verifier", codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}

	return s.tokenResult(tok, oauth2client.GrantTypeAuthorizationCode)
}

// AuthorizePreAuthorizedAccess redeems a pre-authorized code from a credential offer. txCode is
// sent when the offer requires a transaction code. Credential offers do not exist in 1.0.0.
func (s *Service) AuthorizePreAuthorizedAccess(
	ctx context.Context,
	conf *issuer.Config,
	preAuthorizedCode, txCode string,
	tc TokenContext,
) (*AccessTokenResult, error) {
	if s.version == protocol.V1_0_0 {
		return nil, walleterr.NewUnimplementedFeatureError("issuance.AuthorizePreAuthorizedAccess",
			s.version.String())
	}

	header, err := s.tokenRequestHeader(ctx, conf, tc)
	if err != nil {
		return nil, err
	}

	tok, err := s.oauth2Client.ExchangePreAuthorizedCode(ctx, conf.TokenEndpoint, preAuthorizedCode, txCode,
		header)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}

	return s.tokenResult(tok, oauth2client.GrantTypePreAuthorizedCode)
}

func (s *Service) tokenRequestHeader(ctx context.Context, conf *issuer.Config, tc TokenContext) (http.Header, error) {
	attestation, err := wia.Decode(tc.WalletInstanceAttestation)
	if err != nil {
		return nil, walleterr.NewValidationError(err).WithComponent(walleterr.TokenComponent)
	}

	dpopKey, err := cryptoctx.RegenerateKey(ctx, tc.KeyStore, tc.DPoPKeyTag)
	if err != nil {
		return nil, fmt.Errorf("dpop key: %w", err)
	}

	dpop, err := s.dpopProof(ctx, dpopKey, conf.TokenEndpoint, "")
	if err != nil {
		return nil, err
	}

	pop, err := s.clientAttestationPoP(ctx, tc.WIACryptoContext, attestation, conf.CredentialIssuer)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set(headerDPoP, dpop)
	header.Set(headerClientAttestation, tc.WalletInstanceAttestation)
	header.Set(headerClientAttestationPoP, pop)

	return header, nil
}

func (s *Service) tokenResult(tok *oauth2.Token, grantType string) (*AccessTokenResult, error) {
	result := &AccessTokenResult{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}

	if v, ok := tok.Extra("expires_in").(float64); ok {
		result.ExpiresIn = int64(v)
	}

	if v, ok := tok.Extra("c_nonce").(string); ok {
		result.CNonce = v
	}

	if raw := tok.Extra("authorization_details"); raw != nil {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode authorization_details: %w", err)
		}

		if err = json.Unmarshal(b, &result.AuthorizationDetails); err != nil {
			return nil, walleterr.NewValidationError(fmt.Errorf("token response validation failed: %w", err)).
				WithComponent(walleterr.TokenComponent)
		}
	}

	if s.version == protocol.V1_3_3 && len(result.AuthorizationDetails) == 0 {
		return nil, walleterr.NewValidationError(
			errors.New("access token without authorization_details is not supported")).
			WithComponent(walleterr.TokenComponent)
	}

	logger.Debug("Access token obtained",
		logfields.WithGrantType(grantType),
		logfields.WithAuthorizationDetails(result.AuthorizationDetails))

	return result, nil
}

// SelectAuthorizationDetail returns the authorization detail granted for configID. When
// identifier is set the detail must also list it among its credential identifiers.
func SelectAuthorizationDetail(result *AccessTokenResult, configID, identifier string) (*AuthorizationDetail, error) {
	detail, ok := lo.Find(result.AuthorizationDetails, func(d AuthorizationDetail) bool {
		return d.CredentialConfigurationID == configID &&
			(identifier == "" || lo.Contains(d.CredentialIdentifiers, identifier))
	})
	if !ok {
		return nil, walleterr.NewConfigurationError(walleterr.ReasonConfigurationMismatch,
			fmt.Errorf("the access token response does not grant %s", configID)).
			WithComponent(walleterr.TokenComponent).
			WithIncorrectValue(configID)
	}

	return &detail, nil
}

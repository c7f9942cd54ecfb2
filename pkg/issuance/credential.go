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
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// CredentialRequest names the credential to obtain. Identifier is the credential identifier
// granted by the token endpoint; when set it is sent instead of the configuration id.
type CredentialRequest struct {
	ConfigurationID string
	Identifier      string
}

// CredentialContext holds the keys used by the credential request.
type CredentialContext struct {
	DPoPCryptoContext       cryptoctx.Context
	CredentialCryptoContext cryptoctx.Context
}

// CredentialResult is an issued credential, not yet verified.
type CredentialResult struct {
	Credential     string `json:"credential"`
	Format         string `json:"format"`
	NotificationID string `json:"notification_id,omitempty"`
}

type nonceResponse struct {
	CNonce string `json:"c_nonce"`
}

type credentialProof struct {
	ProofType string `json:"proof_type"`
	JWT       string `json:"jwt"`
}

type credentialRequestBody struct {
	CredentialIdentifier      string          `json:"credential_identifier,omitempty"`
	CredentialConfigurationID string          `json:"credential_configuration_id,omitempty"`
	Proof                     credentialProof `json:"proof"`
}

type credentialResponse struct {
	Credentials []struct {
		Credential string `json:"credential"`
	} `json:"credentials"`
	NotificationID string `json:"notification_id"`
}

var credentialErrors = walleterr.NewIssuerErrorMapper().
	Handle(http.StatusCreated, walleterr.StatusHandler{
		Code:    walleterr.CredentialIssuingNotSynchronous,
		Message: "This credential cannot be issued synchronously. It will be available at a later time.",
	}).
	Handle(http.StatusForbidden, walleterr.StatusHandler{
		Code:    walleterr.CredentialInvalidStatus,
		Message: "Invalid status found for the given credential",
	}).
	Handle(http.StatusNotFound, walleterr.StatusHandler{
		Code:    walleterr.CredentialInvalidStatus,
		Message: "Invalid status found for the given credential",
	}).
	HandleAny(walleterr.StatusHandler{
		Code:    walleterr.CredentialRequestFailed,
		Message: "Unable to obtain the requested credential",
	})

// ObtainCredential requests the credential granted by token. The proof of possession is
// bound to a fresh nonce from the issuer nonce endpoint.
func (s *Service) ObtainCredential(
	ctx context.Context,
	conf *issuer.Config,
	token *AccessTokenResult,
	clientID string,
	req CredentialRequest,
	cc CredentialContext,
) (*CredentialResult, error) {
	credConf, err := conf.CredentialConfiguration(req.ConfigurationID)
	if err != nil {
		return nil, err
	}

	if len(token.AuthorizationDetails) > 0 {
		if _, err = SelectAuthorizationDetail(token, req.ConfigurationID, req.Identifier); err != nil {
			return nil, walleterr.NewValidationError(err).WithComponent(walleterr.CredentialComponent)
		}
	}

	nonce, err := s.requestNonce(ctx, conf, token)
	if err != nil {
		return nil, err
	}

	proof, err := s.nonceProof(ctx, cc.CredentialCryptoContext, nonce, clientID, conf.CredentialIssuer)
	if err != nil {
		return nil, err
	}

	dpop, err := s.dpopProof(ctx, cc.DPoPCryptoContext, conf.CredentialEndpoint, token.AccessToken)
	if err != nil {
		return nil, err
	}

	body := &credentialRequestBody{Proof: credentialProof{ProofType: proofTypeJWT, JWT: proof}}
	if req.Identifier != "" {
		body.CredentialIdentifier = req.Identifier
	} else {
		body.CredentialConfigurationID = req.ConfigurationID
	}

	header := http.Header{}
	header.Set(headerDPoP, dpop)
	header.Set("Authorization", authorizationSchemeDPoP+" "+token.AccessToken)

	start := time.Now()

	resp, err := httputil.PostJSON(ctx, s.httpClient, conf.CredentialEndpoint, body, header)

	s.metrics.CredentialRequestTime(time.Since(start))

	if err != nil {
		mapped := credentialErrors.Map(err)

		logger.Debug("Credential request failed", log.WithError(mapped),
			logfields.WithCredentialConfigurationID(req.ConfigurationID))

		return nil, mapped
	}

	var cr credentialResponse
	if err = json.Unmarshal(resp.Body, &cr); err != nil {
		return nil, walleterr.NewValidationError(fmt.Errorf("decode credential response: %w", err)).
			WithComponent(walleterr.CredentialComponent)
	}

	if len(cr.Credentials) == 0 || cr.Credentials[0].Credential == "" {
		return nil, walleterr.NewValidationError(errors.New("credential response has no credential")).
			WithComponent(walleterr.CredentialComponent)
	}

	logger.Debug("Credential obtained",
		logfields.WithCredentialConfigurationID(req.ConfigurationID),
		logfields.WithCredentialFormat(credConf.Format))

	return &CredentialResult{
		Credential:     cr.Credentials[0].Credential,
		Format:         credConf.Format,
		NotificationID: cr.NotificationID,
	}, nil
}

// requestNonce fetches a c_nonce. A nonce returned with the access token is used when the
// issuer publishes no nonce endpoint.
func (s *Service) requestNonce(ctx context.Context, conf *issuer.Config, token *AccessTokenResult) (string, error) {
	if conf.NonceEndpoint == "" {
		if token.CNonce != "" {
			return token.CNonce, nil
		}

		return "", walleterr.NewConfigurationError(walleterr.ReasonConfigurationMismatch,
			errors.New("issuer has no nonce_endpoint")).WithComponent(walleterr.CredentialComponent)
	}

	resp, err := httputil.PostJSON(ctx, s.httpClient, conf.NonceEndpoint, struct{}{}, nil)
	if err != nil {
		return "", err
	}

	var nr nonceResponse
	if err = json.Unmarshal(resp.Body, &nr); err != nil {
		return "", fmt.Errorf("decode nonce response: %w", err)
	}

	if nr.CNonce == "" {
		return "", walleterr.NewValidationError(errors.New("nonce response has no c_nonce")).
			WithComponent(walleterr.CredentialComponent)
	}

	return nr.CNonce, nil
}

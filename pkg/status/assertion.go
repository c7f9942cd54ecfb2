/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/google/uuid"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const (
	typeStatusAssertionRequest = "status-assertion-request+jwt"
	typeStatusAssertion        = "status-assertion+jwt"
	typeStatusAssertionError   = "status-assertion-error+jwt"

	hashAlgSHA256 = "sha-256"

	// TypeValid is the credential_status_type of a valid credential.
	TypeValid = "0x00"

	requestTTL = 5 * time.Minute
)

var assertionErrors = walleterr.NewIssuerErrorMapper().
	HandleAny(walleterr.StatusHandler{
		Code:    walleterr.StatusAttestationRequestFailed,
		Message: "Unable to obtain the status assertion for the given credential",
	})

type requestClaims struct {
	Issuer            string `json:"iss"`
	Audience          string `json:"aud"`
	JTI               string `json:"jti"`
	IssuedAt          int64  `json:"iat"`
	Expiration        int64  `json:"exp"`
	CredentialHash    string `json:"credential_hash"`
	CredentialHashAlg string `json:"credential_hash_alg"`
}

type assertionResponse struct {
	StatusAssertionResponses []string `json:"status_assertion_responses"`
}

// StatusDetail explains a status other than valid.
type StatusDetail struct {
	State       string `json:"state"`
	Description string `json:"description"`
}

type assertionClaims struct {
	Issuer                 string        `json:"iss"`
	CredentialStatusType   string        `json:"credential_status_type"`
	CredentialStatusDetail *StatusDetail `json:"credential_status_detail,omitempty"`
	CredentialHashAlg      string        `json:"credential_hash_alg"`
	CredentialHash         string        `json:"credential_hash"`
	CNF                    struct {
		JWK json.RawMessage `json:"jwk"`
	} `json:"cnf"`
	IssuedAt   int64 `json:"iat"`
	Expiration int64 `json:"exp"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ParsedStatusAssertion is a verified status assertion.
type ParsedStatusAssertion struct {
	Issuer                 string
	CredentialStatusType   string
	CredentialStatusDetail *StatusDetail
	CredentialHashAlg      string
	CredentialHash         string
	ConfirmationKey        *jose.JSONWebKey
	IssuedAt               time.Time
	Expiration             time.Time
}

// GetStatusAssertion requests a status assertion for credential from the status assertion
// endpoint of the issuer.
func (s *Service) GetStatusAssertion(
	ctx context.Context,
	conf *issuer.Config,
	credential, format string,
	sc Context,
) (string, error) {
	if conf.StatusAssertionEndpoint == "" {
		return "", walleterr.NewConfigurationError(walleterr.ReasonConfigurationMismatch,
			errors.New("status assertion endpoint not found in the issuer configuration")).
			WithComponent(walleterr.StatusComponent)
	}

	if _, err := holderKey(credential, format); err != nil {
		return "", err
	}

	wiaKey, err := sc.WIACryptoContext.PublicKey(ctx)
	if err != nil {
		return "", fmt.Errorf("get wallet instance key: %w", err)
	}

	now := s.now()

	pop, err := cryptoctx.SignJWT(ctx, sc.CredentialCryptoContext, &requestClaims{
		Issuer:            wiaKey.KeyID,
		Audience:          conf.StatusAssertionEndpoint,
		JTI:               uuid.NewString(),
		IssuedAt:          now.Unix(),
		Expiration:        now.Add(requestTTL).Unix(),
		CredentialHash:    credentialHash(credential),
		CredentialHashAlg: hashAlgSHA256,
	}, cryptoctx.WithType(typeStatusAssertionRequest))
	if err != nil {
		return "", fmt.Errorf("sign status assertion request: %w", err)
	}

	resp, err := httputil.PostJSON(ctx, s.httpClient, conf.StatusAssertionEndpoint,
		map[string][]string{"status_assertion_requests": {pop}}, http.Header{})
	if err != nil {
		return "", assertionErrors.Map(err)
	}

	var ar assertionResponse
	if err = json.Unmarshal(resp.Body, &ar); err != nil || len(ar.StatusAssertionResponses) == 0 {
		return "", validationError(errors.New("status assertion response has no status_assertion_responses"))
	}

	logger.Debug("Status assertion obtained", log.WithURL(conf.StatusAssertionEndpoint),
		logfields.WithCredentialFormat(format))

	return ar.StatusAssertionResponses[0], nil
}

// VerifyAndParseStatusAssertion verifies the signature of statusAssertion with the issuer keys,
// its binding to the key of credential and that the credential is valid. Errors reported by
// the issuer inside the assertion are returned as CredentialInvalidStatus issuer errors.
func (s *Service) VerifyAndParseStatusAssertion(
	conf *issuer.Config,
	statusAssertion, credential, format string,
) (*ParsedStatusAssertion, error) {
	tok, err := cryptoctx.Verify(statusAssertion, conf.SigningKeys())
	if err != nil {
		return nil, validationError(fmt.Errorf("verify status assertion: %w", err))
	}

	var claims assertionClaims
	if err = tok.Claims(&claims); err != nil {
		return nil, validationError(err)
	}

	switch tok.Type() {
	case typeStatusAssertionError:
		return nil, invalidStatus("The status assertion contains an error", claims.Error, claims.ErrorDescription)
	case typeStatusAssertion:
	default:
		return nil, validationError(fmt.Errorf("unexpected status assertion typ %q", tok.Type()))
	}

	if claims.CredentialHash != credentialHash(credential) {
		return nil, validationError(errors.New("status assertion is about another credential"))
	}

	var cnf jose.JSONWebKey
	if err = cnf.UnmarshalJSON(claims.CNF.JWK); err != nil {
		return nil, validationError(fmt.Errorf("decode cnf.jwk: %w", err))
	}

	holder, err := holderKey(credential, format)
	if err != nil {
		return nil, err
	}

	same, expected, got, err := cryptoctx.SameThumbprint(holder, &cnf)
	if err != nil {
		return nil, err
	}

	if !same {
		logger.Error("Status assertion is bound to another key", logfields.WithThumbprint(got))

		return nil, walleterr.NewHolderBindingError(expected, got).WithComponent(walleterr.StatusComponent)
	}

	if claims.CredentialStatusType != TypeValid {
		state, description := claims.CredentialStatusType, ""
		if d := claims.CredentialStatusDetail; d != nil {
			state, description = d.State, d.Description
		}

		return nil, invalidStatus("Invalid status found for the given credential", state, description)
	}

	return &ParsedStatusAssertion{
		Issuer:                 claims.Issuer,
		CredentialStatusType:   claims.CredentialStatusType,
		CredentialStatusDetail: claims.CredentialStatusDetail,
		CredentialHashAlg:      claims.CredentialHashAlg,
		CredentialHash:         claims.CredentialHash,
		ConfirmationKey:        &cnf,
		IssuedAt:               time.Unix(claims.IssuedAt, 0),
		Expiration:             time.Unix(claims.Expiration, 0),
	}, nil
}

func invalidStatus(message, reason, description string) error {
	return walleterr.NewIssuerResponseError(walleterr.CredentialInvalidStatus, http.StatusOK,
		errors.New(message)).
		WithComponent(walleterr.StatusComponent).
		WithDetail("error", reason).
		WithDetail("error_description", description)
}

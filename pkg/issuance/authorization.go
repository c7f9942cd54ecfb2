/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"
	"golang.org/x/oauth2"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/oauth2client"
	"github.com/trustbloc/iowallet/pkg/walleterr"
	"github.com/trustbloc/iowallet/pkg/wia"
)

// ProofType selects how the user proves possession of an identity document.
type ProofType string

const (
	ProofTypeNone    ProofType = "none"
	ProofTypeMRTDPoP ProofType = "mrtd-pop"
)

const typeRequestObject = "jwt"

// ProofPreferences configures the proof of possession requested during authorization.
type ProofPreferences struct {
	Type       ProofType
	IDPHinting string
}

// AuthorizationContext holds the wallet attestation and the key it is bound to.
type AuthorizationContext struct {
	WIACryptoContext          cryptoctx.Context
	WalletInstanceAttestation string
	RedirectURI               string
}

type requestObjectClaims struct {
	Issuer               string                `json:"iss"`
	Audience             string                `json:"aud"`
	JTI                  string                `json:"jti"`
	IssuedAt             int64                 `json:"iat"`
	Expiration           int64                 `json:"exp"`
	ClientID             string                `json:"client_id"`
	ResponseType         string                `json:"response_type"`
	ResponseMode         string                `json:"response_mode"`
	RedirectURI          string                `json:"redirect_uri"`
	State                string                `json:"state"`
	CodeChallenge        string                `json:"code_challenge"`
	CodeChallengeMethod  string                `json:"code_challenge_method"`
	AuthorizationDetails []AuthorizationDetail `json:"authorization_details"`
	Scope                string                `json:"scope,omitempty"`
}

// SelectResponseMode returns query for a single credential and form_post.jwt for more. The
// mode must be accepted by every requested credential and by the issuer.
func (s *Service) SelectResponseMode(conf *issuer.Config, credentialIDs []string) (string, error) {
	mode := issuer.ResponseModeFormPostJWT
	if len(credentialIDs) == 1 {
		mode = issuer.ResponseModeQuery
	}

	for _, id := range credentialIDs {
		if mode != issuer.ResponseModeQuery && s.queryOnly.MatchString(id) {
			return "", walleterr.NewConfigurationError(walleterr.ReasonIncompatibleResponseModes,
				fmt.Errorf("credential %s accepts only the %s response mode, %s is required for %v",
					id, issuer.ResponseModeQuery, mode, credentialIDs)).
				WithComponent(walleterr.AuthorizationComponent).
				WithIncorrectValue(id)
		}
	}

	if len(conf.ResponseModesSupported) > 0 && !lo.Contains(conf.ResponseModesSupported, mode) {
		return "", walleterr.NewConfigurationError(walleterr.ReasonIncompatibleResponseModes,
			fmt.Errorf("response mode %s is not supported by %s", mode, conf.CredentialIssuer)).
			WithComponent(walleterr.AuthorizationComponent).
			WithIncorrectValue(mode)
	}

	return mode, nil
}

// StartUserAuthorization pushes a signed authorization request for credentialIDs and returns the
// session to continue the flow with. Configuration errors are reported before any request.
func (s *Service) StartUserAuthorization(
	ctx context.Context,
	conf *issuer.Config,
	credentialIDs []string,
	proof ProofPreferences,
	ac AuthorizationContext,
) (*AuthorizationSession, error) {
	if len(credentialIDs) == 0 {
		return nil, walleterr.NewValidationError(errors.New("no credential requested")).
			WithComponent(walleterr.AuthorizationComponent)
	}

	responseMode, err := s.SelectResponseMode(conf, credentialIDs)
	if err != nil {
		return nil, err
	}

	details := make([]AuthorizationDetail, 0, len(credentialIDs)+1)
	scopes := make([]string, 0, len(credentialIDs))

	for _, id := range credentialIDs {
		cc, confErr := conf.CredentialConfiguration(id)
		if confErr != nil {
			return nil, confErr
		}

		details = append(details, AuthorizationDetail{
			Type:                      AuthorizationDetailTypeCredential,
			CredentialConfigurationID: id,
		})

		if cc.Scope != "" {
			scopes = append(scopes, cc.Scope)
		}
	}

	if proof.Type == ProofTypeMRTDPoP {
		details = append(details, AuthorizationDetail{
			Type:                 AuthorizationDetailTypeDocumentProof,
			IDPHinting:           proof.IDPHinting,
			ChallengeMethod:      challengeMethodMRTD,
			ChallengeRedirectURI: ac.RedirectURI,
		})
	}

	attestation, err := wia.Decode(ac.WalletInstanceAttestation)
	if err != nil {
		return nil, walleterr.NewValidationError(err).WithComponent(walleterr.AuthorizationComponent)
	}

	pub, err := ac.WIACryptoContext.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("get wallet instance key: %w", err)
	}

	if pub.KeyID == "" {
		return nil, walleterr.NewConfigurationError(walleterr.ReasonConfigurationMismatch,
			errors.New("wallet instance key has no kid")).WithComponent(walleterr.AuthorizationComponent)
	}

	clientID := pub.KeyID

	pkce, err := oauth2client.NewPKCE()
	if err != nil {
		return nil, err
	}

	session := NewAuthorizationSession(conf)
	session.ClientID = clientID
	session.CodeVerifier = pkce.Verifier
	session.CredentialDefinitions = details
	session.ResponseMode = responseMode
	session.RedirectURI = ac.RedirectURI
	session.State = uuid.NewString()

	now := s.now()

	requestObject, err := cryptoctx.SignJWT(ctx, ac.WIACryptoContext, &requestObjectClaims{
		Issuer:               clientID,
		Audience:             conf.CredentialIssuer,
		JTI:                  uuid.NewString(),
		IssuedAt:             now.Unix(),
		Expiration:           now.Add(requestObjectTTL).Unix(),
		ClientID:             clientID,
		ResponseType:         oauth2client.ResponseTypeCode,
		ResponseMode:         responseMode,
		RedirectURI:          ac.RedirectURI,
		State:                session.State,
		CodeChallenge:        pkce.Challenge,
		CodeChallengeMethod:  pkce.Method,
		AuthorizationDetails: details,
		Scope:                strings.Join(lo.Uniq(scopes), " "),
	}, cryptoctx.WithType(typeRequestObject))
	if err != nil {
		return nil, fmt.Errorf("sign request object: %w", err)
	}

	pop, err := s.clientAttestationPoP(ctx, ac.WIACryptoContext, attestation, conf.CredentialIssuer)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"response_type":         {oauth2client.ResponseTypeCode},
		"client_id":             {clientID},
		"code_challenge":        {pkce.Challenge},
		"code_challenge_method": {pkce.Method},
		"request":               {requestObject},
		"client_assertion_type": {oauth2client.ClientAssertionTypeJWTClientAttestation},
		"client_assertion":      {ac.WalletInstanceAttestation + "~" + pop},
	}

	par, err := s.oauth2Client.PushAuthorizationRequest(ctx, conf.PushedAuthorizationRequestEndpoint, form,
		http.Header{})
	if err != nil {
		return nil, fmt.Errorf("pushed authorization request: %w", err)
	}

	session.IssuerRequestURI = par.RequestURI

	if err = session.advance(StagePushed); err != nil {
		return nil, err
	}

	logger.Debug("Pushed authorization request accepted",
		logfields.WithCredentialIssuer(conf.CredentialIssuer),
		logfields.WithResponseMode(responseMode),
		logfields.WithClientID(clientID),
		logfields.WithRequestURI(par.RequestURI),
		log.WithURL(conf.PushedAuthorizationRequestEndpoint))

	return session, nil
}

// BuildAuthorizationURL returns the URL the user agent opens to authorize the pushed request.
func (s *Service) BuildAuthorizationURL(session *AuthorizationSession, idpHint string) (string, error) {
	if session.Stage() < StagePushed {
		return "", walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse,
			fmt.Errorf("authorization request has not been pushed"))
	}

	var opts []oauth2client.AuthCodeOption
	if idpHint != "" {
		opts = append(opts, oauth2client.SetAuthURLParam("idphint", idpHint))
	}

	return s.oauth2Client.AuthCodeURLWithPAR(oauth2.Config{
		ClientID: session.ClientID,
		Endpoint: oauth2.Endpoint{AuthURL: session.IssuerConf.AuthorizationEndpoint},
	}, session.IssuerRequestURI, opts...)
}

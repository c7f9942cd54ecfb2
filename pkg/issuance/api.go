/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"context"
	"crypto/x509"

	"github.com/trustbloc/iowallet/pkg/issuer"
)

// API is the issuance flow of one protocol version. Service implements it.
type API interface {
	SelectResponseMode(conf *issuer.Config, credentialIDs []string) (string, error)
	StartUserAuthorization(ctx context.Context, conf *issuer.Config, credentialIDs []string,
		proof ProofPreferences, ac AuthorizationContext) (*AuthorizationSession, error)
	BuildAuthorizationURL(session *AuthorizationSession, idpHint string) (string, error)
	CompleteUserAuthorizationWithQueryMode(redirectURL string) (*AuthorizationResult, error)
	GetRequestedCredentialToBePresented(ctx context.Context, session *AuthorizationSession) (*RequestObject, error)
	CompleteUserAuthorizationWithFormPostJWTMode(ctx context.Context, requestObject *RequestObject,
		conf *issuer.Config, pc PresentationContext) (*AuthorizationResult, error)
	AuthorizeAccess(ctx context.Context, conf *issuer.Config, code, clientID, redirectURI, codeVerifier string,
		tc TokenContext) (*AccessTokenResult, error)
	AuthorizePreAuthorizedAccess(ctx context.Context, conf *issuer.Config, preAuthorizedCode, txCode string,
		tc TokenContext) (*AccessTokenResult, error)
	ObtainCredential(ctx context.Context, conf *issuer.Config, token *AccessTokenResult, clientID string,
		req CredentialRequest, cc CredentialContext) (*CredentialResult, error)
	VerifyAndParseCredential(ctx context.Context, conf *issuer.Config, credential, configID string,
		vc VerifyContext, x509Root *x509.Certificate) (*VerifiedCredential, error)
}

var _ API = (*Service)(nil)

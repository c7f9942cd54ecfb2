/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -package issuance . Service

//nolint:lll
package issuance

import (
	"context"
	"crypto/x509"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/iowallet/pkg/issuance"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/observability/tracing/attributeutil"
)

type Service issuance.API

type Wrapper struct {
	svc    Service
	tracer trace.Tracer
}

func Wrap(svc Service, tracer trace.Tracer) *Wrapper {
	return &Wrapper{svc: svc, tracer: tracer}
}

func (w *Wrapper) SelectResponseMode(conf *issuer.Config, credentialIDs []string) (string, error) {
	return w.svc.SelectResponseMode(conf, credentialIDs)
}

func (w *Wrapper) StartUserAuthorization(
	ctx context.Context,
	conf *issuer.Config,
	credentialIDs []string,
	proof issuance.ProofPreferences,
	ac issuance.AuthorizationContext,
) (*issuance.AuthorizationSession, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.StartUserAuthorization")
	defer span.End()

	span.SetAttributes(attribute.String("credential_issuer", conf.CredentialIssuer))
	span.SetAttributes(attribute.String("credential_ids", strings.Join(credentialIDs, ",")))
	span.SetAttributes(attribute.String("proof_type", string(proof.Type)))

	session, err := w.svc.StartUserAuthorization(ctx, conf, credentialIDs, proof, ac)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("response_mode", session.ResponseMode))
	span.SetAttributes(attribute.String("request_uri", session.IssuerRequestURI))

	return session, nil
}

func (w *Wrapper) BuildAuthorizationURL(session *issuance.AuthorizationSession, idpHint string) (string, error) {
	return w.svc.BuildAuthorizationURL(session, idpHint)
}

func (w *Wrapper) CompleteUserAuthorizationWithQueryMode(redirectURL string) (*issuance.AuthorizationResult, error) {
	return w.svc.CompleteUserAuthorizationWithQueryMode(redirectURL)
}

func (w *Wrapper) GetRequestedCredentialToBePresented(ctx context.Context, session *issuance.AuthorizationSession) (*issuance.RequestObject, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.GetRequestedCredentialToBePresented")
	defer span.End()

	span.SetAttributes(attribute.String("request_uri", session.IssuerRequestURI))

	ro, err := w.svc.GetRequestedCredentialToBePresented(ctx, session)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attributeutil.JSON("dcql_query", ro.DCQLQuery))

	return ro, nil
}

func (w *Wrapper) CompleteUserAuthorizationWithFormPostJWTMode(
	ctx context.Context,
	requestObject *issuance.RequestObject,
	conf *issuer.Config,
	pc issuance.PresentationContext,
) (*issuance.AuthorizationResult, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.CompleteUserAuthorizationWithFormPostJWTMode")
	defer span.End()

	span.SetAttributes(attribute.String("response_uri", requestObject.ResponseURI))
	span.SetAttributes(attributeutil.JWTClaims("pid", pc.PID, attributeutil.WithRedacted("_sd"),
		attributeutil.WithRedacted("cnf")))

	return w.svc.CompleteUserAuthorizationWithFormPostJWTMode(ctx, requestObject, conf, pc)
}

func (w *Wrapper) AuthorizeAccess(
	ctx context.Context,
	conf *issuer.Config,
	code, clientID, redirectURI, codeVerifier string,
	tc issuance.TokenContext,
) (*issuance.AccessTokenResult, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.AuthorizeAccess")
	defer span.End()

	span.SetAttributes(attribute.String("token_endpoint", conf.TokenEndpoint))
	span.SetAttributes(attribute.String("client_id", clientID))

	res, err := w.svc.AuthorizeAccess(ctx, conf, code, clientID, redirectURI, codeVerifier, tc)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attributeutil.JSON("access_token_result", res,
		attributeutil.WithRedacted("access_token"), attributeutil.WithRedacted("c_nonce")))

	return res, nil
}

func (w *Wrapper) AuthorizePreAuthorizedAccess(
	ctx context.Context,
	conf *issuer.Config,
	preAuthorizedCode, txCode string,
	tc issuance.TokenContext,
) (*issuance.AccessTokenResult, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.AuthorizePreAuthorizedAccess")
	defer span.End()

	span.SetAttributes(attribute.String("token_endpoint", conf.TokenEndpoint))
	span.SetAttributes(attribute.Bool("tx_code", txCode != ""))

	return w.svc.AuthorizePreAuthorizedAccess(ctx, conf, preAuthorizedCode, txCode, tc)
}

func (w *Wrapper) ObtainCredential(
	ctx context.Context,
	conf *issuer.Config,
	token *issuance.AccessTokenResult,
	clientID string,
	req issuance.CredentialRequest,
	cc issuance.CredentialContext,
) (*issuance.CredentialResult, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.ObtainCredential")
	defer span.End()

	span.SetAttributes(attribute.String("credential_endpoint", conf.CredentialEndpoint))
	span.SetAttributes(attributeutil.JSON("credential_request", req))

	res, err := w.svc.ObtainCredential(ctx, conf, token, clientID, req, cc)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("format", res.Format))

	return res, nil
}

func (w *Wrapper) VerifyAndParseCredential(
	ctx context.Context,
	conf *issuer.Config,
	credential, configID string,
	vc issuance.VerifyContext,
	x509Root *x509.Certificate,
) (*issuance.VerifiedCredential, error) {
	ctx, span := w.tracer.Start(ctx, "issuance.VerifyAndParseCredential")
	defer span.End()

	span.SetAttributes(attribute.String("configuration_id", configID))
	span.SetAttributes(attribute.Bool("ignore_missing_attributes", vc.IgnoreMissingAttributes))

	return w.svc.VerifyAndParseCredential(ctx, conf, credential, configID, vc, x509Root)
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const (
	wellKnownCredentialIssuer    = "/.well-known/openid-credential-issuer"
	wellKnownAuthorizationServer = "/.well-known/oauth-authorization-server"
	wellKnownOpenIDConfiguration = "/.well-known/openid-configuration"
)

// EvaluateIssuerMetadataFromOffer returns the metadata of the offering issuer. When an evaluator
// with a trust anchor is configured, the config projected from the verified trust chain is
// returned and no well-known document is fetched. Otherwise the metadata of the issuer and of its
// authorization server is fetched.
func (r *Resolver) EvaluateIssuerMetadataFromOffer(ctx context.Context, offer *Offer) (*issuer.Config, error) {
	if r.evaluator != nil && r.evaluator.HasTrustAnchor() {
		return r.trustedMetadata(ctx, offer)
	}

	ciURL, err := wellKnownURL(offer.CredentialIssuer, wellKnownCredentialIssuer)
	if err != nil {
		return nil, walleterr.NewInvalidCredentialOfferError(err)
	}

	ci, err := httputil.Get(ctx, r.httpClient, ciURL, httputil.ContentTypeJSON)
	if err != nil {
		return nil, fmt.Errorf("fetch credential issuer metadata: %w", err)
	}

	if !gjson.ValidBytes(ci) {
		return nil, walleterr.NewValidationError(fmt.Errorf("invalid credential issuer metadata from %s", ciURL))
	}

	if issuerID := gjson.GetBytes(ci, "credential_issuer").String(); issuerID != offer.CredentialIssuer {
		return nil, walleterr.NewValidationError(
			fmt.Errorf("credential issuer metadata is for %q, the offer is from %q", issuerID, offer.CredentialIssuer)).
			WithURL(ciURL)
	}

	as, err := r.authorizationServerMetadata(ctx, r.authorizationServerURL(offer, ci))
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(ci, "jwks").Exists() {
		if ci, err = r.embedJWKS(ctx, ci, as); err != nil {
			return nil, err
		}
	}

	conf, err := issuer.ParseMetadata(r.version, ci, as)
	if err != nil {
		return nil, err
	}

	logger.Debug("Issuer metadata evaluated from credential offer",
		logfields.WithCredentialIssuer(conf.CredentialIssuer), log.WithURL(ciURL))

	return conf, nil
}

func (r *Resolver) trustedMetadata(ctx context.Context, offer *Offer) (*issuer.Config, error) {
	conf, err := r.evaluator.EvaluateIssuerTrust(ctx, offer.CredentialIssuer)
	if err != nil {
		return nil, err
	}

	if conf == nil {
		return nil, walleterr.NewValidationError(fmt.Errorf("no verified metadata for %s", offer.CredentialIssuer))
	}

	if conf.CredentialIssuer != offer.CredentialIssuer {
		return nil, walleterr.NewValidationError(
			fmt.Errorf("verified metadata is for %q, the offer is from %q", conf.CredentialIssuer, offer.CredentialIssuer))
	}

	logger.Debug("Issuer metadata taken from verified trust chain",
		logfields.WithCredentialIssuer(conf.CredentialIssuer))

	return conf, nil
}

func (r *Resolver) authorizationServerURL(offer *Offer, ci []byte) string {
	if grant, err := r.SelectGrantType(offer); err == nil && grant.AuthorizationServer != offer.CredentialIssuer {
		return grant.AuthorizationServer
	}

	if first := gjson.GetBytes(ci, "authorization_servers.0"); first.Exists() {
		return first.String()
	}

	return offer.CredentialIssuer
}

// authorizationServerMetadata tries the OAuth discovery document first and the OpenID one on 404.
// Metadata is optional: nil is returned when neither document exists.
func (r *Resolver) authorizationServerMetadata(ctx context.Context, base string) (json.RawMessage, error) {
	for _, path := range []string{wellKnownAuthorizationServer, wellKnownOpenIDConfiguration} {
		u, err := wellKnownURL(base, path)
		if err != nil {
			return nil, walleterr.NewInvalidCredentialOfferError(err)
		}

		body, err := httputil.Get(ctx, r.httpClient, u, httputil.ContentTypeJSON)
		if err == nil {
			return body, nil
		}

		var walletErr *walleterr.Error
		if errors.As(err, &walletErr) && walletErr.HTTPStatus == http.StatusNotFound {
			logger.Debug("Authorization server metadata not found", log.WithURL(u))

			continue
		}

		return nil, fmt.Errorf("fetch authorization server metadata: %w", err)
	}

	return nil, nil
}

// embedJWKS fetches the jwks_uri of the authorization server into the issuer metadata.
func (r *Resolver) embedJWKS(ctx context.Context, ci, as []byte) ([]byte, error) {
	jwksURI := gjson.GetBytes(as, "jwks_uri").String()
	if jwksURI == "" {
		return ci, nil
	}

	jwks, err := httputil.Get(ctx, r.httpClient, jwksURI, httputil.ContentTypeJSON)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	out, err := sjson.SetRawBytes(ci, "jwks", jwks)
	if err != nil {
		return nil, fmt.Errorf("embed jwks: %w", err)
	}

	return out, nil
}

// wellKnownURL inserts path between the origin and the path of base.
func wellKnownURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", base)
	}

	suffix := u.Path
	if suffix == "/" {
		suffix = ""
	}

	return u.Scheme + "://" + u.Host + path + suffix, nil
}

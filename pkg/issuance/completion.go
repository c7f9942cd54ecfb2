/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"
	"golang.org/x/net/html"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/sdjwt"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const authorizationResponseTTL = requestObjectTTL

// AuthorizationResult is a successful authorization response.
type AuthorizationResult struct {
	Code  string `json:"code"`
	State string `json:"state"`
	Iss   string `json:"iss,omitempty"`
}

type authorizationResponse struct {
	AuthorizationResult
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// DCQLClaim is a claim requested by a DCQL credential query.
type DCQLClaim struct {
	ID   string        `json:"id,omitempty"`
	Path []interface{} `json:"path"`
}

// DCQLCredential is a credential query of a DCQL query.
type DCQLCredential struct {
	ID     string                 `json:"id"`
	Format string                 `json:"format"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
	Claims []DCQLClaim            `json:"claims,omitempty"`
}

// DCQLQuery lists the credentials a verifier asks to be presented.
type DCQLQuery struct {
	Credentials []DCQLCredential `json:"credentials"`
}

// RequestObject is the request the issuer makes for the presentation of the PID.
type RequestObject struct {
	Issuer       string     `json:"iss"`
	ClientID     string     `json:"client_id"`
	ResponseURI  string     `json:"response_uri"`
	ResponseMode string     `json:"response_mode,omitempty"`
	ResponseType string     `json:"response_type,omitempty"`
	Nonce        string     `json:"nonce"`
	State        string     `json:"state"`
	DCQLQuery    *DCQLQuery `json:"dcql_query"`
}

// PresentationContext holds the PID presented to complete a form_post.jwt authorization.
type PresentationContext struct {
	WIACryptoContext cryptoctx.Context
	PID              string
	PIDCryptoContext cryptoctx.Context
}

type authorizationResponseClaims struct {
	State      string            `json:"state,omitempty"`
	VPToken    map[string]string `json:"vp_token"`
	IssuedAt   int64             `json:"iat"`
	Expiration int64             `json:"exp"`
}

type responseURIResult struct {
	RedirectURI string `json:"redirect_uri"`
}

// CompleteUserAuthorizationWithQueryMode parses the authorization response carried in the
// query of redirectURL.
func (s *Service) CompleteUserAuthorizationWithQueryMode(redirectURL string) (*AuthorizationResult, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse,
			fmt.Errorf("parse redirect url: %w", err))
	}

	q := u.Query()

	return parseAuthorizationResponse(&authorizationResponse{
		AuthorizationResult: AuthorizationResult{
			Code:  q.Get("code"),
			State: q.Get("state"),
			Iss:   q.Get("iss"),
		},
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
}

func parseAuthorizationResponse(resp *authorizationResponse) (*AuthorizationResult, error) {
	if resp.Code != "" && resp.State != "" {
		return &resp.AuthorizationResult, nil
	}

	if resp.Error != "" {
		logger.Warn("Identity provider returned an error", log.WithError(errors.New(resp.Error)))

		return nil, walleterr.NewAuthorizationIdpError(resp.Error, resp.ErrorDescription)
	}

	if resp.Code == "" {
		return nil, walleterr.NewAuthorizationError(walleterr.ReasonMissingCode,
			errors.New("authorization response has no code"))
	}

	return nil, walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse,
		errors.New("authorization response has no state"))
}

// GetRequestedCredentialToBePresented fetches the request object the issuer publishes for the
// pushed request of session.
func (s *Service) GetRequestedCredentialToBePresented(
	ctx context.Context,
	session *AuthorizationSession,
) (*RequestObject, error) {
	endpoint, err := httputil.WithQuery(session.IssuerConf.AuthorizationEndpoint, url.Values{
		"client_id":   {session.ClientID},
		"request_uri": {session.IssuerRequestURI},
	})
	if err != nil {
		return nil, err
	}

	body, err := httputil.Get(ctx, s.httpClient, endpoint, "")
	if err != nil {
		return nil, err
	}

	tok, err := cryptoctx.Decode(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, walleterr.NewValidationError(fmt.Errorf("decode request object: %w", err)).
			WithComponent(walleterr.AuthorizationComponent)
	}

	var ro RequestObject
	if err = tok.Claims(&ro); err != nil {
		return nil, walleterr.NewValidationError(err).WithComponent(walleterr.AuthorizationComponent)
	}

	var missing []string

	for name, present := range map[string]bool{
		"iss":          ro.Issuer != "",
		"client_id":    ro.ClientID != "",
		"response_uri": ro.ResponseURI != "",
		"nonce":        ro.Nonce != "",
		"state":        ro.State != "",
		"dcql_query":   ro.DCQLQuery != nil && len(ro.DCQLQuery.Credentials) > 0,
	} {
		if !present {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, walleterr.NewValidationError(fmt.Errorf("request object validation failed, missing: %s",
			strings.Join(missing, ", "))).
			WithComponent(walleterr.AuthorizationComponent)
	}

	return &ro, nil
}

// CompleteUserAuthorizationWithFormPostJWTMode presents the PID requested by requestObject,
// posts the signed authorization response and reads the authorization code from the form the
// issuer redirects to.
func (s *Service) CompleteUserAuthorizationWithFormPostJWTMode(
	ctx context.Context,
	requestObject *RequestObject,
	conf *issuer.Config,
	pc PresentationContext,
) (*AuthorizationResult, error) {
	if requestObject.DCQLQuery == nil {
		return nil, walleterr.NewValidationError(errors.New("request object has no dcql_query")).
			WithComponent(walleterr.AuthorizationComponent)
	}

	var signingKey *jose.JSONWebKey

	if s.version != protocol.V1_0_0 {
		key, ok := lo.Find(conf.Keys, func(k jose.JSONWebKey) bool { return k.Use == "sig" })
		if !ok {
			return nil, walleterr.NewConfigurationError(walleterr.ReasonConfigurationMismatch,
				errors.New("no signature key found in issuer metadata jwks")).
				WithComponent(walleterr.AuthorizationComponent)
		}

		signingKey = &key
	}

	vpToken, err := s.presentPID(ctx, requestObject, pc)
	if err != nil {
		return nil, err
	}

	now := s.now()

	response, err := cryptoctx.SignJWT(ctx, pc.WIACryptoContext, &authorizationResponseClaims{
		State:      requestObject.State,
		VPToken:    vpToken,
		IssuedAt:   now.Unix(),
		Expiration: now.Add(authorizationResponseTTL).Unix(),
	}, cryptoctx.WithType(typeRequestObject))
	if err != nil {
		return nil, fmt.Errorf("sign authorization response: %w", err)
	}

	resp, err := httputil.PostForm(ctx, s.httpClient, requestObject.ResponseURI,
		url.Values{"response": {response}}, http.Header{})
	if err != nil {
		return nil, err
	}

	var rr responseURIResult
	if err = json.Unmarshal(resp.Body, &rr); err != nil || rr.RedirectURI == "" {
		return nil, walleterr.NewValidationError(fmt.Errorf("response uri result has no redirect_uri")).
			WithComponent(walleterr.AuthorizationComponent)
	}

	page, err := httputil.Get(ctx, s.httpClient, rr.RedirectURI, "text/html")
	if err != nil {
		return nil, err
	}

	jwt, err := extractFormPostJWT(page)
	if err != nil {
		return nil, walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse, err)
	}

	var tok *cryptoctx.Token
	if signingKey != nil {
		tok, err = cryptoctx.VerifyWithKey(jwt, signingKey)
	} else {
		tok, err = cryptoctx.Decode(jwt)
	}

	if err != nil {
		return nil, walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse,
			fmt.Errorf("authorization response jwt: %w", err))
	}

	var ar authorizationResponse
	if err = tok.Claims(&ar); err != nil {
		return nil, walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse, err)
	}

	result, err := parseAuthorizationResponse(&ar)
	if err != nil {
		return nil, err
	}

	if requestObject.State != "" && result.State != requestObject.State {
		return nil, walleterr.NewAuthorizationError(walleterr.ReasonStateMismatch,
			errors.New("authorization response state does not match the request object"))
	}

	return result, nil
}

// presentPID answers the SD-JWT credential queries of the request object with the PID.
func (s *Service) presentPID(
	ctx context.Context,
	requestObject *RequestObject,
	pc PresentationContext,
) (map[string]string, error) {
	cred, err := sdjwt.Parse(pc.PID)
	if err != nil {
		return nil, walleterr.NewValidationError(fmt.Errorf("parse pid: %w", err)).
			WithComponent(walleterr.AuthorizationComponent)
	}

	vpToken := map[string]string{}

	for _, q := range requestObject.DCQLQuery.Credentials {
		if q.Format != issuer.FormatSDJWT && q.Format != issuer.FormatLegacySDJWT {
			continue
		}

		if !acceptsVCT(q, cred.VCT()) {
			continue
		}

		paths := lo.Map(q.Claims, func(c DCQLClaim, _ int) []interface{} { return c.Path })

		vp, presentErr := cred.Present(ctx, paths, sdjwt.KeyBinding{
			Audience: requestObject.ClientID,
			Nonce:    requestObject.Nonce,
			IssuedAt: s.now(),
		}, pc.PIDCryptoContext)
		if presentErr != nil {
			return nil, fmt.Errorf("present pid: %w", presentErr)
		}

		vpToken[q.ID] = vp
	}

	if len(vpToken) == 0 {
		return nil, walleterr.NewValidationError(errors.New("no credential query of the request object matches the pid")).
			WithComponent(walleterr.AuthorizationComponent)
	}

	logger.Debug("PID presentation prepared", logfields.WithClaimKeys(lo.Keys(vpToken)))

	return vpToken, nil
}

func acceptsVCT(q DCQLCredential, vct string) bool {
	values, ok := q.Meta["vct_values"].([]interface{})
	if !ok || len(values) == 0 {
		return true
	}

	return lo.Contains(values, interface{}(vct))
}

// extractFormPostJWT returns the value of the response input of a form_post.jwt page.
func extractFormPostJWT(page []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(page))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", errors.New("form_post.jwt page has no response input")
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			if t.Data != "input" {
				continue
			}

			var name, value string

			for _, a := range t.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}

			if name == "response" && value != "" {
				return strings.Join(strings.Fields(value), ""), nil
			}
		}
	}
}

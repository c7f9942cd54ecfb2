/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package oauth2client is the wallet side of the OAuth2 exchanges used during issuance.
package oauth2client

import (
	"net/http"

	"github.com/trustbloc/iowallet/internal/httputil"
)

const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypePreAuthorizedCode = "urn:ietf:params:oauth:grant-type:pre-authorized_code"

	ResponseTypeCode = "code"

	CodeChallengeMethodS256 = "S256"

	ClientAssertionTypeJWTClientAttestation = "urn:ietf:params:oauth:client-assertion-type:jwt-client-attestation"
)

// Client sends PAR and token requests through an injected HTTP client.
type Client struct {
	httpClient httputil.Client
}

// NewOAuth2Client returns a Client sending requests through httpClient.
func NewOAuth2Client(httpClient httputil.Client) *Client {
	return &Client{httpClient: httpClient}
}

// headerTransport lets x/oauth2 send through the injected client while adding proof headers.
type headerTransport struct {
	client httputil.Client
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	for k, v := range t.header {
		r.Header[k] = v
	}

	return t.client.Do(r)
}

func (c *Client) withHeader(header http.Header) *http.Client {
	return &http.Client{Transport: &headerTransport{client: c.httpClient, header: header}}
}

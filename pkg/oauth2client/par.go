/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oauth2client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/trustbloc/iowallet/internal/httputil"
)

// PARResponse is the response of a pushed authorization request.
type PARResponse struct {
	RequestURI string `json:"request_uri"`
	ExpiresIn  int    `json:"expires_in"`
}

// PushAuthorizationRequest posts form to parEndpoint and expects 201 with a request_uri.
func (c *Client) PushAuthorizationRequest(
	ctx context.Context,
	parEndpoint string,
	form url.Values,
	header http.Header,
) (*PARResponse, error) {
	resp, err := httputil.PostForm(ctx, c.httpClient, parEndpoint, form, header, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var par PARResponse
	if err = json.Unmarshal(resp.Body, &par); err != nil {
		return nil, fmt.Errorf("decode par response: %w", err)
	}

	if par.RequestURI == "" {
		return nil, fmt.Errorf("par response has no request_uri")
	}

	return &par, nil
}

// AuthCodeURLWithPAR returns the authorization endpoint URL referencing a pushed request.
func (c *Client) AuthCodeURLWithPAR(cfg oauth2.Config, requestURI string, opts ...AuthCodeOption) (string, error) {
	v := url.Values{
		"client_id":   {cfg.ClientID},
		"request_uri": {requestURI},
	}

	applyOptions(v, opts)

	return httputil.WithQuery(cfg.Endpoint.AuthURL, v)
}

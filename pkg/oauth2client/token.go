/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oauth2client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Exchange redeems an authorization code at the token endpoint of cfg. Client credentials are
// sent in the form; header carries the proof headers of the request.
func (c *Client) Exchange(
	ctx context.Context,
	cfg oauth2.Config,
	code string,
	header http.Header,
	opts ...AuthCodeOption,
) (*oauth2.Token, error) {
	cfg.Endpoint.AuthStyle = oauth2.AuthStyleInParams

	tok, err := cfg.Exchange(
		context.WithValue(ctx, oauth2.HTTPClient, c.withHeader(header)),
		code,
		oauth2Options(opts)...,
	)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, walleterr.NewUnexpectedStatusCodeError(cfg.Endpoint.TokenURL, re.Response.StatusCode,
				string(re.Body))
		}

		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	return tok, nil
}

// ExchangePreAuthorizedCode redeems a pre-authorized code, with the transaction code when set.
func (c *Client) ExchangePreAuthorizedCode(
	ctx context.Context,
	tokenURL string,
	preAuthorizedCode string,
	txCode string,
	header http.Header,
	opts ...AuthCodeOption,
) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type":          {GrantTypePreAuthorizedCode},
		"pre-authorized_code": {preAuthorizedCode},
	}

	if txCode != "" {
		form.Set("tx_code", txCode)
	}

	applyOptions(form, opts)

	resp, err := httputil.PostForm(ctx, c.httpClient, tokenURL, form, header)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err = json.Unmarshal(resp.Body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}

	var raw map[string]interface{}
	if err = json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}

	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return tok.WithExtra(raw), nil
}

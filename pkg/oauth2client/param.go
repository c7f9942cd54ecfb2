/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oauth2client

import (
	"net/url"

	"golang.org/x/oauth2"
)

// AuthCodeOption adds parameters to an authorization URL or a token request.
type AuthCodeOption func(url.Values)

// SetAuthURLParam sets key=value on the request.
func SetAuthURLParam(key, value string) AuthCodeOption {
	return func(v url.Values) { v.Set(key, value) }
}

func applyOptions(v url.Values, opts []AuthCodeOption) {
	for _, opt := range opts {
		opt(v)
	}
}

// oauth2Options turns opts into the options x/oauth2 sends with a token exchange.
func oauth2Options(opts []AuthCodeOption) []oauth2.AuthCodeOption {
	v := url.Values{}
	applyOptions(v, opts)

	res := make([]oauth2.AuthCodeOption, 0, len(v))

	for key := range v {
		res = append(res, oauth2.SetAuthURLParam(key, v.Get(key)))
	}

	return res
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/iowallet/pkg/credentialoffer"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const sampleOffer = `{
	"credential_issuer": "https://issuer.example.com",
	"credential_configuration_ids": ["PersonIdentificationData"],
	"grants": {
		"authorization_code": {"issuer_state": "state-1"},
		"urn:ietf:params:oauth:grant-type:pre-authorized_code": {
			"pre-authorized_code": "code-1",
			"tx_code": {"input_mode": "numeric", "length": 5}
		}
	}
}`

func newResolver(t *testing.T, client *http.Client, opts ...credentialoffer.Opt) credentialoffer.API {
	t.Helper()

	if client == nil {
		client = http.DefaultClient
	}

	api, err := credentialoffer.New(protocol.V1_3_3, client, opts...)
	require.NoError(t, err)

	return api
}

func offerURL(scheme string, params url.Values) string {
	return scheme + "://credential_offer?" + params.Encode()
}

func TestStartFlow(t *testing.T) {
	api := newResolver(t, nil)

	t.Run("inline offer round trip", func(t *testing.T) {
		for _, scheme := range credentialoffer.Schemes {
			ref, err := api.StartFlow(offerURL(scheme, url.Values{"credential_offer": {sampleOffer}}))
			require.NoError(t, err, scheme)
			require.NotNil(t, ref.Offer)
			require.Empty(t, ref.URI)

			var want credentialoffer.Offer
			require.NoError(t, json.Unmarshal([]byte(sampleOffer), &want))
			require.Equal(t, &want, ref.Offer)

			offer, err := api.ResolveCredentialOffer(context.Background(), ref)
			require.NoError(t, err)
			require.Same(t, ref.Offer, offer)
		}
	})

	t.Run("haip schemes", func(t *testing.T) {
		for _, scheme := range []string{"haip", "haip-vp", "haip-vci"} {
			ref, err := api.StartFlow(scheme + "://?" + url.Values{"credential_offer": {sampleOffer}}.Encode())
			require.NoError(t, err, scheme)
			require.NotNil(t, ref.Offer, scheme)
		}
	})

	t.Run("by reference", func(t *testing.T) {
		ref, err := api.StartFlow(offerURL("haip-vci", url.Values{
			"credential_offer_uri": {"https://issuer.example.com/offers/1"},
		}))
		require.NoError(t, err)
		require.Nil(t, ref.Offer)
		require.Equal(t, "https://issuer.example.com/offers/1", ref.URI)
	})

	tests := []struct {
		name     string
		url      string
		contains string
	}{
		{
			name:     "unsupported scheme",
			url:      offerURL("openid4vp", url.Values{"credential_offer": {sampleOffer}}),
			contains: "supported schemes",
		},
		{
			name: "both params",
			url: offerURL("openid-credential-offer", url.Values{
				"credential_offer":     {sampleOffer},
				"credential_offer_uri": {"https://issuer.example.com/offers/1"},
			}),
			contains: "only one of",
		},
		{
			name:     "no params",
			url:      "openid-credential-offer://?foo=bar",
			contains: "QR code does not contain valid params",
		},
		{
			name:     "offer is not json",
			url:      offerURL("openid-credential-offer", url.Values{"credential_offer": {"{not json"}}),
			contains: "decode credential offer",
		},
		{
			name:     "offer is an array",
			url:      offerURL("openid-credential-offer", url.Values{"credential_offer": {"[]"}}),
			contains: "must be a JSON object",
		},
		{
			name: "offer fails the schema",
			url: offerURL("openid-credential-offer", url.Values{"credential_offer": {
				`{"credential_issuer": "http://issuer.example.com", "credential_configuration_ids": [], "grants": {}}`,
			}}),
			contains: "validation error",
		},
		{
			name: "offer uri is not https",
			url: offerURL("openid-credential-offer", url.Values{
				"credential_offer_uri": {"http://issuer.example.com/offers/1"},
			}),
			contains: "must be an https url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := api.StartFlow(tt.url)
			require.Error(t, err)
			require.True(t, walleterr.IsKind(err, walleterr.InvalidQRCode))
			require.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestResolveCredentialOffer_ByReference(t *testing.T) {
	var requests atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/offers/valid", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)

		_, _ = w.Write([]byte(sampleOffer))
	})
	mux.HandleFunc("/offers/invalid", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"credential_issuer": "https://issuer.example.com"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := newResolver(t, srv.Client())

	offer, err := api.ResolveCredentialOffer(context.Background(),
		&credentialoffer.Reference{URI: srv.URL + "/offers/valid"})
	require.NoError(t, err)
	require.Equal(t, "https://issuer.example.com", offer.CredentialIssuer)
	require.Equal(t, int32(1), requests.Load())

	_, err = api.ResolveCredentialOffer(context.Background(),
		&credentialoffer.Reference{URI: srv.URL + "/offers/invalid"})
	require.Error(t, err)
	require.True(t, walleterr.IsKind(err, walleterr.InvalidCredentialOffer))
	require.Contains(t, err.Error(), "credential_configuration_ids")
}

func TestSelectGrantType(t *testing.T) {
	api := newResolver(t, nil)

	var offer credentialoffer.Offer
	require.NoError(t, json.Unmarshal([]byte(sampleOffer), &offer))

	t.Run("pre-authorized code is preferred", func(t *testing.T) {
		grant, err := api.SelectGrantType(&offer)
		require.NoError(t, err)
		require.Equal(t, credentialoffer.GrantPreAuthorizedCode, grant.Type)
		require.Equal(t, "code-1", grant.PreAuthorizedCode)
		require.Equal(t, 5, grant.TxCode.Length)
		require.Equal(t, offer.CredentialIssuer, grant.AuthorizationServer)
	})

	t.Run("authorization code", func(t *testing.T) {
		o := offer
		o.Grants.PreAuthorizedCode = nil
		o.Grants.AuthorizationCode.AuthorizationServer = "https://as.example.com"

		grant, err := api.SelectGrantType(&o)
		require.NoError(t, err)
		require.Equal(t, credentialoffer.GrantAuthorizationCode, grant.Type)
		require.Equal(t, "state-1", grant.IssuerState)
		require.Equal(t, "https://as.example.com", grant.AuthorizationServer)
	})

	t.Run("pre-authorized code without code", func(t *testing.T) {
		o := credentialoffer.Offer{Grants: credentialoffer.Grants{
			PreAuthorizedCode: &credentialoffer.PreAuthorizedCodeGrant{},
			AuthorizationCode: &credentialoffer.AuthorizationCodeGrant{},
		}}

		_, err := api.SelectGrantType(&o)
		require.Error(t, err)
		require.True(t, walleterr.IsKind(err, walleterr.InvalidCredentialOffer))
	})

	t.Run("no grants", func(t *testing.T) {
		_, err := api.SelectGrantType(&credentialoffer.Offer{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported or missing grant type")
	})
}

func TestNew(t *testing.T) {
	api, err := credentialoffer.New(protocol.V1_0_0, http.DefaultClient)
	require.NoError(t, err)

	_, err = api.StartFlow(offerURL("openid-credential-offer", url.Values{"credential_offer": {sampleOffer}}))
	require.Error(t, err)

	var walletErr *walleterr.Error
	require.True(t, errors.As(err, &walletErr))
	require.Equal(t, walleterr.UnimplementedFeature, walletErr.Kind)

	_, err = api.SelectGrantType(&credentialoffer.Offer{})
	require.True(t, walleterr.IsKind(err, walleterr.UnimplementedFeature))

	_, err = credentialoffer.New(protocol.Version("2.0.0"), http.DefaultClient)
	require.Error(t, err)
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/internal/testutil"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/kms/local"
)

const (
	pidID       = "PersonIdentificationData"
	mdlID       = "mDL"
	pidVCT      = "urn:eu.europa.ec.eudi:pid:1"
	mdlDocType  = "org.iso.18013.5.1.mDL"
	redirectURI = "https://wallet.example.com/callback"
)

type wallet struct {
	keys       *local.Store
	instance   *testutil.Signer
	credential *testutil.Signer
	wia        string
}

func newWallet(t *testing.T) *wallet {
	t.Helper()

	keys := local.New()
	provider := testutil.NewSigner(t, "wallet-provider")
	instance := testutil.NewSignerInStore(t, keys, "wia")

	now := time.Now()

	return &wallet{
		keys:       keys,
		instance:   instance,
		credential: testutil.NewSignerInStore(t, keys, "credential"),
		wia: provider.SignedJWT(t, map[string]interface{}{
			"iss": "https://wallet-provider.example.com",
			"sub": instance.Key.KeyID,
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
			"cnf": map[string]interface{}{"jwk": instance.PublicJWK(t)},
		}, cryptoctx.WithType("wallet-attestation+jwt")),
	}
}

// issuerServer is an issuer whose endpoints are served by handlers registered per path.
type issuerServer struct {
	*httptest.Server
	signer   *testutil.Signer
	mux      *http.ServeMux
	requests atomic.Int32
}

func newIssuerServer(t *testing.T) *issuerServer {
	t.Helper()

	s := &issuerServer{signer: testutil.NewSigner(t, "issuer"), mux: http.NewServeMux()}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.mux.ServeHTTP(w, r)
	}))

	t.Cleanup(s.Close)

	return s
}

func (s *issuerServer) handle(path string, h http.HandlerFunc) {
	s.mux.HandleFunc(path, h)
}

func (s *issuerServer) config() *issuer.Config {
	return &issuer.Config{
		CredentialIssuer:                   s.URL,
		AuthorizationEndpoint:              s.URL + "/authorize",
		TokenEndpoint:                      s.URL + "/token",
		PushedAuthorizationRequestEndpoint: s.URL + "/par",
		CredentialEndpoint:                 s.URL + "/credential",
		NonceEndpoint:                      s.URL + "/nonce",
		ResponseModesSupported:             []string{issuer.ResponseModeQuery, issuer.ResponseModeFormPostJWT},
		Keys:                               s.signer.JWKS(),
		CredentialConfigurationsSupported: map[string]*issuer.CredentialConfiguration{
			pidID: {
				Format: issuer.FormatSDJWT,
				VCT:    pidVCT,
				Scope:  pidID,
				Claims: []issuer.Claim{
					{Path: []interface{}{"given_name"}, Display: []issuer.Display{
						{Name: "Nome", Locale: "it-IT"}, {Name: "Given name", Locale: "en-US"},
					}},
					{Path: []interface{}{"family_name"}},
					{Path: []interface{}{"address", "street_address"}, Display: []issuer.Display{
						{Name: "Street", Locale: "en-US"},
					}},
					{Path: []interface{}{"nationalities", nil}, Display: []issuer.Display{
						{Name: "Nationalities", Locale: "en-US"},
					}},
				},
			},
			mdlID: {
				Format:  issuer.FormatMDoc,
				DocType: mdlDocType,
				Scope:   mdlID,
				Claims: []issuer.Claim{
					{Path: []interface{}{"org.iso.18013.5.1", "given_name"}, Display: []issuer.Display{
						{Name: "Given name", Locale: "en-US"},
					}},
					{Path: []interface{}{"org.iso.18013.5.1", "document_number"}},
				},
			},
		},
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"fmt"
	"reflect"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"

	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// Credential formats.
const (
	FormatSDJWT       = "dc+sd-jwt"
	FormatLegacySDJWT = "vc+sd-jwt"
	FormatMDoc        = "mso_mdoc"
)

// Response modes.
const (
	ResponseModeQuery       = "query"
	ResponseModeFormPostJWT = "form_post.jwt"
)

// Display is a localized label.
type Display struct {
	Name            string `json:"name"`
	Locale          string `json:"locale"`
	Description     string `json:"description,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
}

// Claim describes a claim of a credential. Path elements are strings (object keys), numbers
// (array indexes) or nil (every array element). mdoc claims use [namespace, element].
type Claim struct {
	Path      []interface{} `json:"path"`
	Mandatory bool          `json:"mandatory,omitempty"`
	Display   []Display     `json:"display,omitempty"`
}

// CredentialConfiguration is a credential the issuer can issue.
type CredentialConfiguration struct {
	Format                               string    `json:"format"`
	VCT                                  string    `json:"vct,omitempty"`
	DocType                              string    `json:"doctype,omitempty"`
	Scope                                string    `json:"scope,omitempty"`
	CryptographicBindingMethodsSupported []string  `json:"cryptographic_binding_methods_supported,omitempty"`
	CredentialSigningAlgValuesSupported  []string  `json:"credential_signing_alg_values_supported,omitempty"`
	ProofSigningAlgValuesSupported       []string  `json:"proof_signing_alg_values_supported,omitempty"`
	Display                              []Display `json:"display,omitempty"`
	Claims                               []Claim   `json:"claims,omitempty"`
}

// IsSDJWT reports whether the configuration issues SD-JWT VCs.
func (c *CredentialConfiguration) IsSDJWT() bool {
	return c.Format == FormatSDJWT || c.Format == FormatLegacySDJWT
}

// ClaimByPath returns the claim declared for path.
func (c *CredentialConfiguration) ClaimByPath(path []interface{}) (*Claim, bool) {
	for i := range c.Claims {
		if pathEqual(c.Claims[i].Path, path) {
			return &c.Claims[i], true
		}
	}

	return nil, false
}

// Config is the issuer metadata projected from a verified entity configuration or from the
// issuer well-known documents, independent of the protocol version.
type Config struct {
	CredentialIssuer                   string                              `json:"credential_issuer"`
	AuthorizationEndpoint              string                              `json:"authorization_endpoint"`
	TokenEndpoint                      string                              `json:"token_endpoint"`
	PushedAuthorizationRequestEndpoint string                              `json:"pushed_authorization_request_endpoint"`
	CredentialEndpoint                 string                              `json:"credential_endpoint"`
	NonceEndpoint                      string                              `json:"nonce_endpoint,omitempty"`
	StatusAssertionEndpoint            string                              `json:"status_assertion_endpoint,omitempty"`
	FederationFetchEndpoint            string                              `json:"federation_fetch_endpoint,omitempty"`
	ResponseModesSupported             []string                            `json:"response_modes_supported,omitempty"`
	Keys                               []jose.JSONWebKey                   `json:"keys"`
	CredentialConfigurationsSupported  map[string]*CredentialConfiguration `json:"credential_configurations_supported"`
}

// CredentialConfiguration returns the configuration registered under id.
func (c *Config) CredentialConfiguration(id string) (*CredentialConfiguration, error) {
	conf, ok := c.CredentialConfigurationsSupported[id]
	if !ok {
		return nil, walleterr.NewConfigurationError(walleterr.ReasonUnsupportedCredential,
			fmt.Errorf("credential configuration %q is not supported by %s", id, c.CredentialIssuer)).
			WithIncorrectValue(id)
	}

	return conf, nil
}

// SigningKeys returns the issuer keys usable for signature verification.
func (c *Config) SigningKeys() []jose.JSONWebKey {
	return lo.Filter(c.Keys, func(k jose.JSONWebKey, _ int) bool {
		return k.Use == "" || k.Use == "sig"
	})
}

func pathEqual(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !reflect.DeepEqual(normalizePathElement(a[i]), normalizePathElement(b[i])) {
			return false
		}
	}

	return true
}

// normalizePathElement makes indexes decoded from JSON comparable with int indexes.
func normalizePathElement(e interface{}) interface{} {
	switch v := e.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}

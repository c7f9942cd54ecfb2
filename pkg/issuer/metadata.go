/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-jose/go-jose/v3"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// Entity types of the metadata published in an issuer entity configuration.
const (
	EntityTypeCredentialIssuer    = "openid_credential_issuer"
	EntityTypeAuthorizationServer = "oauth_authorization_server"
	EntityTypeFederationEntity    = "federation_entity"
)

type credentialIssuerMetadata struct {
	CredentialIssuer                   string                     `json:"credential_issuer"`
	CredentialEndpoint                 string                     `json:"credential_endpoint"`
	NonceEndpoint                      string                     `json:"nonce_endpoint"`
	StatusAssertionEndpoint            string                     `json:"status_assertion_endpoint"`
	StatusAttestationEndpoint          string                     `json:"status_attestation_endpoint"`
	AuthorizationEndpoint              string                     `json:"authorization_endpoint"`
	TokenEndpoint                      string                     `json:"token_endpoint"`
	PushedAuthorizationRequestEndpoint string                     `json:"pushed_authorization_request_endpoint"`
	ResponseModesSupported             []string                   `json:"response_modes_supported"`
	JWKS                               jose.JSONWebKeySet         `json:"jwks"`
	RawCredentialConfigurations        map[string]json.RawMessage `json:"credential_configurations_supported"`
}

type authorizationServerMetadata struct {
	AuthorizationEndpoint              string   `json:"authorization_endpoint"`
	TokenEndpoint                      string   `json:"token_endpoint"`
	PushedAuthorizationRequestEndpoint string   `json:"pushed_authorization_request_endpoint"`
	ResponseModesSupported             []string `json:"response_modes_supported"`
}

// 1.3.3 credential configuration: claims are path arrays under credential_metadata.
type credentialConfigurationV133 struct {
	Format                               string                   `json:"format"`
	VCT                                  string                   `json:"vct"`
	DocType                              string                   `json:"doctype"`
	Scope                                string                   `json:"scope"`
	CryptographicBindingMethodsSupported []string                 `json:"cryptographic_binding_methods_supported"`
	CredentialSigningAlgValuesSupported  []string                 `json:"credential_signing_alg_values_supported"`
	ProofTypesSupported                  map[string]proofTypeV133 `json:"proof_types_supported"`
	Display                              []Display                `json:"display"`
	Claims                               []Claim                  `json:"claims"`
	CredentialMetadata                   *struct {
		Display []Display `json:"display"`
		Claims  []Claim   `json:"claims"`
	} `json:"credential_metadata"`
}

type proofTypeV133 struct {
	ProofSigningAlgValuesSupported []string `json:"proof_signing_alg_values_supported"`
}

// 1.0.0 credential configuration: claims are maps keyed by claim name, nested by namespace for mdoc.
type credentialConfigurationV100 struct {
	Format                               string                     `json:"format"`
	VCT                                  string                     `json:"vct"`
	DocType                              string                     `json:"doctype"`
	Scope                                string                     `json:"scope"`
	CryptographicBindingMethodsSupported []string                   `json:"cryptographic_binding_methods_supported"`
	CryptographicSuitesSupported         []string                   `json:"cryptographic_suites_supported"`
	Display                              []Display                  `json:"display"`
	RawClaims                            map[string]json.RawMessage `json:"claims"`
}

type claimV100 struct {
	Mandatory bool      `json:"mandatory"`
	Display   []Display `json:"display"`
}

// FromEntityMetadata projects the metadata of a verified issuer entity configuration.
func FromEntityMetadata(version protocol.Version, metadata json.RawMessage) (*Config, error) {
	ci := gjson.GetBytes(metadata, EntityTypeCredentialIssuer)
	if !ci.Exists() {
		return nil, walleterr.NewValidationError(
			fmt.Errorf("%s is required in issuer metadata", EntityTypeCredentialIssuer))
	}

	var as json.RawMessage
	if r := gjson.GetBytes(metadata, EntityTypeAuthorizationServer); r.Exists() {
		as = json.RawMessage(r.Raw)
	}

	conf, err := ParseMetadata(version, json.RawMessage(ci.Raw), as)
	if err != nil {
		return nil, err
	}

	conf.FederationFetchEndpoint = gjson.GetBytes(metadata,
		EntityTypeFederationEntity+".federation_fetch_endpoint").String()

	return conf, nil
}

// ParseMetadata projects the credential issuer metadata and the optional authorization server
// metadata into a Config. Endpoints of the authorization server take precedence.
func ParseMetadata(version protocol.Version, credentialIssuer, authorizationServer json.RawMessage) (*Config, error) {
	var ci credentialIssuerMetadata
	if err := json.Unmarshal(credentialIssuer, &ci); err != nil {
		return nil, walleterr.NewValidationError(fmt.Errorf("decode credential issuer metadata: %w", err))
	}

	conf := &Config{}
	if err := copier.Copy(conf, &ci); err != nil {
		return nil, fmt.Errorf("copy credential issuer metadata: %w", err)
	}

	conf.Keys = ci.JWKS.Keys

	if conf.StatusAssertionEndpoint == "" {
		conf.StatusAssertionEndpoint = ci.StatusAttestationEndpoint
	}

	if len(authorizationServer) > 0 {
		var as authorizationServerMetadata
		if err := json.Unmarshal(authorizationServer, &as); err != nil {
			return nil, walleterr.NewValidationError(fmt.Errorf("decode authorization server metadata: %w", err))
		}

		conf.AuthorizationEndpoint = lo.Ternary(as.AuthorizationEndpoint != "",
			as.AuthorizationEndpoint, conf.AuthorizationEndpoint)
		conf.TokenEndpoint = lo.Ternary(as.TokenEndpoint != "", as.TokenEndpoint, conf.TokenEndpoint)
		conf.PushedAuthorizationRequestEndpoint = lo.Ternary(as.PushedAuthorizationRequestEndpoint != "",
			as.PushedAuthorizationRequestEndpoint, conf.PushedAuthorizationRequestEndpoint)

		if len(as.ResponseModesSupported) > 0 {
			conf.ResponseModesSupported = as.ResponseModesSupported
		}
	}

	configs, err := parseCredentialConfigurations(version, ci.RawCredentialConfigurations)
	if err != nil {
		return nil, err
	}

	conf.CredentialConfigurationsSupported = configs

	if err = validate(version, conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func validate(version protocol.Version, conf *Config) error {
	required := map[string]string{
		"credential_issuer":                     conf.CredentialIssuer,
		"authorization_endpoint":                conf.AuthorizationEndpoint,
		"token_endpoint":                        conf.TokenEndpoint,
		"pushed_authorization_request_endpoint": conf.PushedAuthorizationRequestEndpoint,
		"credential_endpoint":                   conf.CredentialEndpoint,
	}

	if version == protocol.V1_3_3 {
		required["nonce_endpoint"] = conf.NonceEndpoint
	}

	missing := lo.Filter(lo.Keys(required), func(k string, _ int) bool { return required[k] == "" })
	if len(missing) > 0 {
		sort.Strings(missing)

		return walleterr.NewValidationError(fmt.Errorf("issuer metadata is missing %v", missing))
	}

	if len(conf.Keys) == 0 {
		return walleterr.NewValidationError(fmt.Errorf("issuer metadata has no keys"))
	}

	return nil
}

func parseCredentialConfigurations(
	version protocol.Version,
	raw map[string]json.RawMessage,
) (map[string]*CredentialConfiguration, error) {
	out := make(map[string]*CredentialConfiguration, len(raw))

	for id, data := range raw {
		var (
			conf *CredentialConfiguration
			err  error
		)

		switch version {
		case protocol.V1_0_0:
			conf, err = parseCredentialConfigurationV100(data)
		default:
			conf, err = parseCredentialConfigurationV133(data)
		}

		if err != nil {
			return nil, walleterr.NewValidationError(fmt.Errorf("credential configuration %s: %w", id, err)).
				WithIncorrectValue(id)
		}

		out[id] = conf
	}

	return out, nil
}

func parseCredentialConfigurationV133(data json.RawMessage) (*CredentialConfiguration, error) {
	var wire credentialConfigurationV133
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	conf := &CredentialConfiguration{}
	if err := copier.Copy(conf, &wire); err != nil {
		return nil, err
	}

	if wire.CredentialMetadata != nil {
		conf.Display = wire.CredentialMetadata.Display
		conf.Claims = wire.CredentialMetadata.Claims
	}

	if jwtProof, ok := wire.ProofTypesSupported["jwt"]; ok {
		conf.ProofSigningAlgValuesSupported = jwtProof.ProofSigningAlgValuesSupported
	}

	return conf, nil
}

func parseCredentialConfigurationV100(data json.RawMessage) (*CredentialConfiguration, error) {
	var wire credentialConfigurationV100
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	conf := &CredentialConfiguration{}
	if err := copier.Copy(conf, &wire); err != nil {
		return nil, err
	}

	conf.CredentialSigningAlgValuesSupported = wire.CryptographicSuitesSupported

	claims, err := flattenClaimsV100(wire.RawClaims)
	if err != nil {
		return nil, err
	}

	conf.Claims = claims

	return conf, nil
}

// flattenClaimsV100 turns {name: {...}} and {namespace: {element: {...}}} maps into path claims.
func flattenClaimsV100(raw map[string]json.RawMessage) ([]Claim, error) {
	keys := lo.Keys(raw)
	sort.Strings(keys)

	var claims []Claim

	for _, name := range keys {
		if isClaimDescription(raw[name]) {
			var c claimV100
			if err := json.Unmarshal(raw[name], &c); err != nil {
				return nil, fmt.Errorf("claim %s: %w", name, err)
			}

			claims = append(claims, Claim{Path: []interface{}{name}, Mandatory: c.Mandatory, Display: c.Display})

			continue
		}

		var nested map[string]claimV100
		if err := json.Unmarshal(raw[name], &nested); err != nil {
			return nil, fmt.Errorf("claims of namespace %s: %w", name, err)
		}

		elements := lo.Keys(nested)
		sort.Strings(elements)

		for _, element := range elements {
			c := nested[element]
			claims = append(claims, Claim{
				Path:      []interface{}{name, element},
				Mandatory: c.Mandatory,
				Display:   c.Display,
			})
		}
	}

	return claims, nil
}

func isClaimDescription(raw json.RawMessage) bool {
	r := gjson.ParseBytes(raw)

	return r.Get("display").Exists() || r.Get("mandatory").Exists() || r.Get("value_type").Exists() ||
		len(r.Map()) == 0
}

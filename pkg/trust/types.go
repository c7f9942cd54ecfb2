/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const (
	// EntityStatementType is the typ header of entity configurations and entity statements.
	EntityStatementType = "entity-statement+jwt"

	wellKnownFederationPath = "/.well-known/openid-federation"
)

// HTTPClient sends federation requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Chain is an ordered list of signed statements, from the leaf entity configuration to the
// trust anchor entity configuration.
type Chain []string

// JWKS is a JSON Web Key Set.
type JWKS struct {
	Keys []jose.JSONWebKey `json:"keys"`
}

// TrustMark is a trust mark carried by an entity statement.
type TrustMark struct {
	ID        string `json:"id"`
	TrustMark string `json:"trust_mark"`
}

// EntityStatement is the payload shared by entity configurations (iss == sub) and subordinate
// entity statements.
type EntityStatement struct {
	Issuer         string          `json:"iss"`
	Subject        string          `json:"sub"`
	IssuedAt       int64           `json:"iat"`
	Expiration     int64           `json:"exp"`
	JWKS           JWKS            `json:"jwks"`
	AuthorityHints []string        `json:"authority_hints,omitempty"`
	TrustMarks     []TrustMark     `json:"trust_marks,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	MetadataPolicy json.RawMessage `json:"metadata_policy,omitempty"`
}

// IsConfiguration reports whether the statement is self-issued.
func (s *EntityStatement) IsConfiguration() bool {
	return s.Issuer == s.Subject
}

// FetchEndpoint returns metadata.federation_entity.federation_fetch_endpoint.
func (s *EntityStatement) FetchEndpoint() string {
	return gjson.GetBytes(s.Metadata, "federation_entity.federation_fetch_endpoint").String()
}

// ListEndpoint returns metadata.federation_entity.federation_list_endpoint.
func (s *EntityStatement) ListEndpoint() string {
	return gjson.GetBytes(s.Metadata, "federation_entity.federation_list_endpoint").String()
}

// MetadataOf returns the raw metadata published for an entity type, nil when absent.
func (s *EntityStatement) MetadataOf(entityType string) json.RawMessage {
	r := gjson.GetBytes(s.Metadata, entityType)
	if !r.Exists() {
		return nil
	}

	return json.RawMessage(r.Raw)
}

// ParsedStatement is a decoded statement together with its protected header.
type ParsedStatement struct {
	Raw     string
	Header  jose.Header
	Payload EntityStatement
}

// ParseStatement decodes a signed statement without verifying its signature.
func ParseStatement(raw string) (*ParsedStatement, error) {
	tok, err := cryptoctx.Decode(raw)
	if err != nil {
		return nil, err
	}

	if typ := tok.Type(); typ != EntityStatementType {
		return nil, fmt.Errorf("unexpected typ %q", typ)
	}

	var payload EntityStatement
	if err = tok.Claims(&payload); err != nil {
		return nil, err
	}

	if payload.Issuer == "" || payload.Subject == "" {
		return nil, fmt.Errorf("missing iss or sub")
	}

	return &ParsedStatement{Raw: raw, Header: tok.Header, Payload: payload}, nil
}

// Anchor is the trust anchor configured in the wallet.
type Anchor struct {
	Statement *ParsedStatement
}

// NewAnchor builds an anchor from its signed entity configuration.
func NewAnchor(rawConfiguration string) (*Anchor, error) {
	st, err := ParseStatement(rawConfiguration)
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("parse trust anchor configuration: %w", err))
	}

	if !st.Payload.IsConfiguration() {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("trust anchor statement is not an entity configuration"))
	}

	if len(st.Payload.JWKS.Keys) == 0 {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("trust anchor configuration has no keys"))
	}

	return &Anchor{Statement: st}, nil
}

// EntityID returns the anchor entity identifier.
func (a *Anchor) EntityID() string {
	return a.Statement.Payload.Subject
}

// Keys returns the anchor federation keys.
func (a *Anchor) Keys() []jose.JSONWebKey {
	return a.Statement.Payload.JWKS.Keys
}

// RootCertificate returns the first x5c certificate of the anchor key referenced by the
// configuration header kid. Nil means X.509 validation is not configured.
func (a *Anchor) RootCertificate() *x509.Certificate {
	key, ok := lo.Find(a.Keys(), func(k jose.JSONWebKey) bool {
		return k.KeyID == a.Statement.Header.KeyID
	})
	if !ok || len(key.Certificates) == 0 {
		return nil
	}

	return key.Certificates[0]
}

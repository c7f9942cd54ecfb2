/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination offer_mocks_test.go -package credentialoffer_test -source=offer.go -mock_names issuerEvaluator=MockIssuerEvaluator

// Package credentialoffer resolves OpenID4VCI credential offers received by QR code or deep link.
package credentialoffer

import (
	"context"
	"fmt"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-credential-offer")

// Grant type keys of the grants object.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantPreAuthorizedCode = "urn:ietf:params:oauth:grant-type:pre-authorized_code"
)

// Offer is a credential offer.
type Offer struct {
	CredentialIssuer           string   `json:"credential_issuer"`
	CredentialConfigurationIDs []string `json:"credential_configuration_ids"`
	Grants                     Grants   `json:"grants"`
}

// Grants lists the grants the issuer accepts for the offer.
type Grants struct {
	AuthorizationCode *AuthorizationCodeGrant `json:"authorization_code,omitempty"`
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// AuthorizationCodeGrant holds the parameters of the authorization code grant.
type AuthorizationCodeGrant struct {
	IssuerState         string `json:"issuer_state,omitempty"`
	AuthorizationServer string `json:"authorization_server,omitempty"`
	Scope               string `json:"scope,omitempty"`
}

// PreAuthorizedCodeGrant holds the parameters of the pre-authorized code grant.
type PreAuthorizedCodeGrant struct {
	PreAuthorizedCode   string  `json:"pre-authorized_code"`
	AuthorizationServer string  `json:"authorization_server,omitempty"`
	TxCode              *TxCode `json:"tx_code,omitempty"`
}

// TxCode describes the transaction code the user must enter with a pre-authorized code.
type TxCode struct {
	InputMode   string `json:"input_mode,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// Reference is an offer carried by value (Offer) or by reference (URI).
type Reference struct {
	Offer *Offer
	URI   string
}

// API resolves credential offers. Every protocol version implements it; operations a version
// does not support fail with an UnimplementedFeatureError.
type API interface {
	StartFlow(encodedURL string) (*Reference, error)
	ResolveCredentialOffer(ctx context.Context, ref *Reference) (*Offer, error)
	EvaluateIssuerMetadataFromOffer(ctx context.Context, offer *Offer) (*issuer.Config, error)
	SelectGrantType(offer *Offer) (*GrantSelection, error)
}

type issuerEvaluator interface {
	HasTrustAnchor() bool
	EvaluateIssuerTrust(ctx context.Context, issuerURL string) (*issuer.Config, error)
}

// Opt configures the resolver.
type Opt func(r *Resolver)

// WithIssuerEvaluator makes metadata evaluation establish trust in the offering issuer first,
// when the evaluator has a trust anchor.
func WithIssuerEvaluator(e issuerEvaluator) Opt {
	return func(r *Resolver) { r.evaluator = e }
}

// New returns the credential offer API of version.
func New(version protocol.Version, httpClient httputil.Client, opts ...Opt) (API, error) {
	switch version {
	case protocol.V1_3_3:
		r := &Resolver{version: version, httpClient: httpClient, validator: newValidator()}

		for _, opt := range opts {
			opt(r)
		}

		return r, nil
	case protocol.V1_0_0:
		return unimplemented{version: version}, nil
	default:
		return nil, fmt.Errorf("unsupported version %q", version)
	}
}

type unimplemented struct {
	version protocol.Version
}

func (u unimplemented) err(feature string) error {
	return walleterr.NewUnimplementedFeatureError("credentialoffer."+feature, u.version.String())
}

func (u unimplemented) StartFlow(string) (*Reference, error) {
	return nil, u.err("StartFlow")
}

func (u unimplemented) ResolveCredentialOffer(context.Context, *Reference) (*Offer, error) {
	return nil, u.err("ResolveCredentialOffer")
}

func (u unimplemented) EvaluateIssuerMetadataFromOffer(context.Context, *Offer) (*issuer.Config, error) {
	return nil, u.err("EvaluateIssuerMetadataFromOffer")
}

func (u unimplemented) SelectGrantType(*Offer) (*GrantSelection, error) {
	return nil, u.err("SelectGrantType")
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	"errors"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// GrantSelection is the grant chosen to redeem an offer. Type is GrantPreAuthorizedCode or
// GrantAuthorizationCode.
type GrantSelection struct {
	Type                string
	PreAuthorizedCode   string
	TxCode              *TxCode
	IssuerState         string
	AuthorizationServer string
	Scope               string
}

// SelectGrantType prefers the pre-authorized code grant and falls back to the authorization
// code grant.
func (r *Resolver) SelectGrantType(offer *Offer) (*GrantSelection, error) {
	if pre := offer.Grants.PreAuthorizedCode; pre != nil {
		if pre.PreAuthorizedCode == "" {
			return nil, walleterr.NewInvalidCredentialOfferError(errors.New("invalid pre-authorized grant object"))
		}

		logger.Info("Selected grant type", logfields.WithGrantType(GrantPreAuthorizedCode))

		return &GrantSelection{
			Type:                GrantPreAuthorizedCode,
			PreAuthorizedCode:   pre.PreAuthorizedCode,
			TxCode:              pre.TxCode,
			AuthorizationServer: authorizationServer(pre.AuthorizationServer, offer),
		}, nil
	}

	if ac := offer.Grants.AuthorizationCode; ac != nil {
		logger.Info("Selected grant type", logfields.WithGrantType(GrantAuthorizationCode))

		return &GrantSelection{
			Type:                GrantAuthorizationCode,
			IssuerState:         ac.IssuerState,
			AuthorizationServer: authorizationServer(ac.AuthorizationServer, offer),
			Scope:               ac.Scope,
		}, nil
	}

	return nil, walleterr.NewInvalidCredentialOfferError(
		errors.New("unsupported or missing grant type in credential offer"))
}

func authorizationServer(declared string, offer *Offer) string {
	if declared != "" {
		return declared
	}

	return offer.CredentialIssuer
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trustbloc/iowallet/pkg/trustmark"
)

const (
	credentialTypeFlagName  = "credential-type"
	credentialTypeEnvKey    = "IOWALLET_CREDENTIAL_TYPE"
	credentialTypeFlagUsage = "Type of the credential the trustmark is issued for. Alternatively, this can be set " +
		"with the following environment variable: " + credentialTypeEnvKey

	docNumberFlagName  = "doc-number"
	docNumberEnvKey    = "IOWALLET_DOC_NUMBER"
	docNumberFlagUsage = "Document number bound into the trustmark. Alternatively, this can be set with the " +
		"following environment variable: " + docNumberEnvKey

	expirationFlagName  = "expiration"
	expirationEnvKey    = "IOWALLET_EXPIRATION"
	expirationFlagUsage = "Validity of the trustmark as a duration such as 2m. Alternatively, this can be set " +
		"with the following environment variable: " + expirationEnvKey
)

const defaultTrustmarkExpiration = "2m"

type trustmarkFlags struct {
	credentialType string
	docNumber      string
	expiration     string
}

func NewTrustmarkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trustmark",
		Short: "creates a trustmark for a credential held by the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := getWalletFlags(cmd)
			if err != nil {
				return err
			}

			tmFlags, err := getTrustmarkFlags(cmd)
			if err != nil {
				return err
			}

			svc, err := initServices(cmd.Context(), flags)
			if err != nil {
				return fmt.Errorf("init services: %w", err)
			}
			defer svc.Close()

			tm, err := runTrustmark(cmd.Context(), svc, tmFlags)
			if err != nil {
				return err
			}

			return printJSON(cmd, tm)
		},
	}

	addWalletFlags(cmd)

	cmd.Flags().String(credentialTypeFlagName, "", credentialTypeFlagUsage)
	cmd.Flags().String(docNumberFlagName, "", docNumberFlagUsage)
	cmd.Flags().String(expirationFlagName, defaultTrustmarkExpiration, expirationFlagUsage)

	return cmd
}

func getTrustmarkFlags(cmd *cobra.Command) (*trustmarkFlags, error) {
	credentialType, err := required(cmd, credentialTypeFlagName, credentialTypeEnvKey)
	if err != nil {
		return nil, err
	}

	docNumber, err := required(cmd, docNumberFlagName, docNumberEnvKey)
	if err != nil {
		return nil, err
	}

	expiration := optional(cmd, expirationFlagName, expirationEnvKey)
	if expiration == "" {
		expiration = defaultTrustmarkExpiration
	}

	return &trustmarkFlags{
		credentialType: credentialType,
		docNumber:      docNumber,
		expiration:     expiration,
	}, nil
}

func runTrustmark(ctx context.Context, svc *services, flags *trustmarkFlags) (*trustmark.Trustmark, error) {
	if svc.flags.wia == "" {
		return nil, fmt.Errorf("--%s is required", wiaFlagName)
	}

	return svc.wallet.Trustmark().GetCredentialTrustmark(ctx, &trustmark.Params{
		WalletInstanceAttestation: svc.flags.wia,
		WIACryptoContext:          svc.wiaContext(),
		CredentialType:            flags.credentialType,
		DocNumber:                 flags.docNumber,
		ExpirationTime:            flags.expiration,
	})
}

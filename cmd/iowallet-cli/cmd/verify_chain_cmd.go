/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/trust"
)

// chainEntry is one verified statement of a trust chain as printed by verify-chain.
type chainEntry struct {
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Expiration time.Time `json:"exp"`
}

func NewVerifyChainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-chain",
		Short: "resolves and verifies the trust chain of an entity up to the trust anchor",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := getWalletFlags(cmd)
			if err != nil {
				return err
			}

			issuerURL, err := required(cmd, issuerURLFlagName, issuerURLEnvKey)
			if err != nil {
				return err
			}

			if flags.trustAnchorURL == "" {
				return fmt.Errorf("--%s is required", trustAnchorURLFlagName)
			}

			svc, err := initServices(cmd.Context(), flags)
			if err != nil {
				return fmt.Errorf("init services: %w", err)
			}
			defer svc.Close()

			chain, err := runVerifyChain(cmd.Context(), svc, issuerURL)
			if err != nil {
				return err
			}

			return printJSON(cmd, chain)
		},
	}

	addWalletFlags(cmd)

	cmd.Flags().String(issuerURLFlagName, "", "Entity to verify the trust chain of. Alternatively, this can be "+
		"set with the following environment variable: "+issuerURLEnvKey)

	return cmd
}

func runVerifyChain(ctx context.Context, svc *services, entityURL string) ([]chainEntry, error) {
	statements, err := svc.wallet.Trust().ResolveAndVerify(ctx, entityURL, svc.anchor)
	if err != nil {
		return nil, err
	}

	logger.Info("Trust chain verified", logfields.WithEntityID(entityURL),
		logfields.WithChainLength(len(statements)))

	return lo.Map(statements, func(st *trust.ParsedStatement, _ int) chainEntry {
		return chainEntry{
			Issuer:     st.Payload.Issuer,
			Subject:    st.Payload.Subject,
			Expiration: time.Unix(st.Payload.Expiration, 0).UTC(),
		}
	}), nil
}

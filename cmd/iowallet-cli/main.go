/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package main is the command line wallet: it obtains credentials, mints trustmarks and verifies
// issuer trust chains.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/cmd/iowallet-cli/cmd"
)

var logger = log.New("iowallet-cli")

func main() {
	rootCmd := &cobra.Command{
		Use: "iowallet-cli",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	rootCmd.AddCommand(
		cmd.NewIssueCommand(),
		cmd.NewTrustmarkCommand(),
		cmd.NewVerifyChainCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Failed to run iowallet-cli", log.WithError(err))
		os.Exit(1)
	}
}

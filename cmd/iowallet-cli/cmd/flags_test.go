/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/redirect"
)

func newFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	addWalletFlags(cmd)

	require.NoError(t, cmd.ParseFlags(args))

	return cmd
}

func TestGetWalletFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		flags, err := getWalletFlags(newFlagsCmd(t))
		require.NoError(t, err)

		require.Equal(t, protocol.V1_3_3.String(), flags.version)
		require.Equal(t, defaultRedirectURI, flags.redirectURI)
		require.Equal(t, defaultWIAKeyTag, flags.wiaKeyTag)
		require.False(t, flags.enableHTTPTrace)
		require.False(t, flags.allowMissingAttributes)
		require.Zero(t, flags.redirectTimeout)
	})

	t.Run("from args", func(t *testing.T) {
		flags, err := getWalletFlags(newFlagsCmd(t,
			"--"+versionFlagName, protocol.V1_0_0.String(),
			"--"+trustAnchorURLFlagName, "https://ta.example.com",
			"--"+kmsTypeFlagName, "aws",
			"--"+tracingProviderFlagName, "STDOUT",
			"--"+enableHTTPTraceFlagName, "true",
			"--"+allowMissingAttributesFlagName, "true",
			"--"+redirectTimeoutFlagName, "30s",
			"--"+wiaFlagName, "eyJ.wia",
		))
		require.NoError(t, err)

		require.Equal(t, protocol.V1_0_0.String(), flags.version)
		require.Equal(t, "https://ta.example.com", flags.trustAnchorURL)
		require.Equal(t, "aws", flags.kmsType)
		require.Equal(t, "STDOUT", flags.tracingProvider)
		require.True(t, flags.enableHTTPTrace)
		require.True(t, flags.allowMissingAttributes)
		require.Equal(t, 30*time.Second, flags.redirectTimeout)
		require.Equal(t, "eyJ.wia", flags.wia)
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv(redisURLEnvKey, "localhost:6379")
		t.Setenv(redirectTimeoutEnvKey, redirect.DefaultTimeout.String())

		flags, err := getWalletFlags(newFlagsCmd(t))
		require.NoError(t, err)

		require.Equal(t, "localhost:6379", flags.redisURL)
		require.Equal(t, redirect.DefaultTimeout, flags.redirectTimeout)
	})

	t.Run("wia from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wia.jwt")
		require.NoError(t, os.WriteFile(path, []byte("eyJ.from.file\n"), 0o600))

		flags, err := getWalletFlags(newFlagsCmd(t, "--"+wiaFlagName, "@"+path))
		require.NoError(t, err)
		require.Equal(t, "eyJ.from.file", flags.wia)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			err  string
		}{
			{
				name: "unsupported tracing provider",
				args: []string{"--" + tracingProviderFlagName, "ZIPKIN"},
				err:  "unsupported tracing-provider",
			},
			{
				name: "invalid bool",
				args: []string{"--" + enableHTTPTraceFlagName, "maybe"},
				err:  "invalid enable-http-trace",
			},
			{
				name: "invalid timeout",
				args: []string{"--" + redirectTimeoutFlagName, "soon"},
				err:  "invalid redirect-timeout",
			},
			{
				name: "missing wia file",
				args: []string{"--" + wiaFlagName, "@" + filepath.Join(t.TempDir(), "missing")},
				err:  "read wia",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := getWalletFlags(newFlagsCmd(t, tt.args...))
				require.ErrorContains(t, err, tt.err)
			})
		}
	})
}

func TestCommandContents(t *testing.T) {
	for _, cmd := range []*cobra.Command{NewIssueCommand(), NewTrustmarkCommand(), NewVerifyChainCommand()} {
		for _, name := range []string{versionFlagName, trustAnchorURLFlagName, kmsTypeFlagName, wiaFlagName} {
			require.NotNil(t, cmd.Flags().Lookup(name), "%s has no --%s", cmd.Use, name)
		}
	}
}

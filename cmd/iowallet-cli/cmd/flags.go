/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"

	"github.com/trustbloc/iowallet/cmd/common"
	"github.com/trustbloc/iowallet/pkg/kms"
	"github.com/trustbloc/iowallet/pkg/observability/tracing"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/redirect"
)

const (
	versionFlagName  = "version"
	versionEnvKey    = "IOWALLET_VERSION"
	versionFlagUsage = "Protocol version of the issuers. Alternatively, this can be set with the following " +
		"environment variable: " + versionEnvKey

	trustAnchorURLFlagName  = "trust-anchor-url"
	trustAnchorURLEnvKey    = "IOWALLET_TRUST_ANCHOR_URL"
	trustAnchorURLFlagUsage = "Base URL of the federation trust anchor. Issuers are evaluated against it when set. " +
		"Alternatively, this can be set with the following environment variable: " + trustAnchorURLEnvKey

	redirectURIFlagName  = "redirect-uri"
	redirectURIEnvKey    = "IOWALLET_REDIRECT_URI"
	redirectURIFlagUsage = "Redirect URI registered with the authorization servers. The CLI listens on its host. " +
		"Alternatively, this can be set with the following environment variable: " + redirectURIEnvKey

	kmsTypeFlagName  = "kms-type"
	kmsTypeEnvKey    = "IOWALLET_KMS_TYPE"
	kmsTypeFlagUsage = "Key store holding wallet keys. Supported options: local, aws. " +
		"Alternatively, this can be set with the following environment variable: " + kmsTypeEnvKey

	awsRegionFlagName  = "aws-region"
	awsRegionEnvKey    = "IOWALLET_AWS_REGION"
	awsRegionFlagUsage = "AWS region of the KMS. Alternatively, this can be set with the following " +
		"environment variable: " + awsRegionEnvKey

	awsEndpointFlagName  = "aws-endpoint"
	awsEndpointEnvKey    = "IOWALLET_AWS_ENDPOINT"
	awsEndpointFlagUsage = "Custom AWS KMS endpoint. Alternatively, this can be set with the following " +
		"environment variable: " + awsEndpointEnvKey

	keyAliasPrefixFlagName  = "key-alias-prefix"
	keyAliasPrefixEnvKey    = "IOWALLET_KEY_ALIAS_PREFIX"
	keyAliasPrefixFlagUsage = "Prefix of the AWS KMS aliases of wallet keys. Alternatively, this can be set with " +
		"the following environment variable: " + keyAliasPrefixEnvKey

	redisURLFlagName  = "redis-url"
	redisURLEnvKey    = "IOWALLET_REDIS_URL"
	redisURLFlagUsage = "redis:// URL or comma separated addresses of the redis caching verified issuer " +
		"metadata. An in-memory cache is used when not set. Alternatively, this can be set with the " +
		"following environment variable: " + redisURLEnvKey

	tracingProviderFlagName  = "tracing-provider"
	tracingProviderEnvKey    = "IOWALLET_TRACING_PROVIDER"
	tracingProviderFlagUsage = "Span exporter. Supported options: JAEGER, STDOUT. Tracing is off when not set. " +
		"Alternatively, this can be set with the following environment variable: " + tracingProviderEnvKey

	metricsAddrFlagName  = "metrics-addr"
	metricsAddrEnvKey    = "IOWALLET_METRICS_ADDR"
	metricsAddrFlagUsage = "Address of the prometheus /metrics endpoint, for example localhost:9090. " +
		"Alternatively, this can be set with the following environment variable: " + metricsAddrEnvKey

	enableHTTPTraceFlagName  = "enable-http-trace"
	enableHTTPTraceEnvKey    = "IOWALLET_ENABLE_HTTP_TRACE"
	enableHTTPTraceFlagUsage = "Print every HTTP exchange to stderr. Alternatively, this can be set with the " +
		"following environment variable: " + enableHTTPTraceEnvKey

	allowMissingAttributesFlagName  = "allow-missing-attributes"
	allowMissingAttributesEnvKey    = "IOWALLET_ALLOW_MISSING_ATTRIBUTES"
	allowMissingAttributesFlagUsage = "Accept credentials that lack attributes the issuer declares. Meant for test " +
		"issuers only. Alternatively, this can be set with the following environment variable: " +
		allowMissingAttributesEnvKey

	redirectTimeoutFlagName  = "redirect-timeout"
	redirectTimeoutEnvKey    = "IOWALLET_REDIRECT_TIMEOUT"
	redirectTimeoutFlagUsage = "How long to wait for the authorization redirect. Alternatively, this can be set " +
		"with the following environment variable: " + redirectTimeoutEnvKey

	wiaFlagName  = "wia"
	wiaEnvKey    = "IOWALLET_WIA"
	wiaFlagUsage = "Wallet instance attestation JWT, or @path to a file holding it. Alternatively, this can " +
		"be set with the following environment variable: " + wiaEnvKey

	wiaKeyFileFlagName  = "wia-key-file"
	wiaKeyFileEnvKey    = "IOWALLET_WIA_KEY_FILE"
	wiaKeyFileFlagUsage = "PEM file of the P-256 key the attestation is bound to. Used with the local kms. " +
		"Alternatively, this can be set with the following environment variable: " + wiaKeyFileEnvKey

	wiaKeyTagFlagName  = "wia-key-tag"
	wiaKeyTagEnvKey    = "IOWALLET_WIA_KEY_TAG"
	wiaKeyTagFlagUsage = "Tag of the wallet instance key in the key store. Alternatively, this can be set with " +
		"the following environment variable: " + wiaKeyTagEnvKey
)

const (
	defaultRedirectURI = "http://localhost:8089/callback"
	defaultWIAKeyTag   = "wia"
)

type walletFlags struct {
	version                string
	trustAnchorURL         string
	redirectURI            string
	kmsType                string
	awsRegion              string
	awsEndpoint            string
	keyAliasPrefix         string
	redisURL               string
	tracingProvider        string
	metricsAddr            string
	logLevel               string
	enableHTTPTrace        bool
	allowMissingAttributes bool
	redirectTimeout        time.Duration
	wia                    string
	wiaKeyFile             string
	wiaKeyTag              string
}

func addWalletFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.String(versionFlagName, protocol.V1_3_3.String(), versionFlagUsage)
	f.String(trustAnchorURLFlagName, "", trustAnchorURLFlagUsage)
	f.String(redirectURIFlagName, defaultRedirectURI, redirectURIFlagUsage)
	f.String(kmsTypeFlagName, string(kms.Local), kmsTypeFlagUsage)
	f.String(awsRegionFlagName, "", awsRegionFlagUsage)
	f.String(awsEndpointFlagName, "", awsEndpointFlagUsage)
	f.String(keyAliasPrefixFlagName, "", keyAliasPrefixFlagUsage)
	f.String(redisURLFlagName, "", redisURLFlagUsage)
	f.String(tracingProviderFlagName, "", tracingProviderFlagUsage)
	f.String(metricsAddrFlagName, "", metricsAddrFlagUsage)
	f.StringP(common.LogLevelFlagName, common.LogLevelFlagShorthand, "", common.LogLevelPrefixFlagUsage)
	f.String(enableHTTPTraceFlagName, "false", enableHTTPTraceFlagUsage)
	f.String(allowMissingAttributesFlagName, "false", allowMissingAttributesFlagUsage)
	f.String(redirectTimeoutFlagName, redirect.DefaultTimeout.String(), redirectTimeoutFlagUsage)
	f.String(wiaFlagName, "", wiaFlagUsage)
	f.String(wiaKeyFileFlagName, "", wiaKeyFileFlagUsage)
	f.String(wiaKeyTagFlagName, defaultWIAKeyTag, wiaKeyTagFlagUsage)
}

func getWalletFlags(cmd *cobra.Command) (*walletFlags, error) {
	flags := &walletFlags{
		version:         optional(cmd, versionFlagName, versionEnvKey),
		trustAnchorURL:  optional(cmd, trustAnchorURLFlagName, trustAnchorURLEnvKey),
		redirectURI:     optional(cmd, redirectURIFlagName, redirectURIEnvKey),
		kmsType:         optional(cmd, kmsTypeFlagName, kmsTypeEnvKey),
		awsRegion:       optional(cmd, awsRegionFlagName, awsRegionEnvKey),
		awsEndpoint:     optional(cmd, awsEndpointFlagName, awsEndpointEnvKey),
		keyAliasPrefix:  optional(cmd, keyAliasPrefixFlagName, keyAliasPrefixEnvKey),
		redisURL:        optional(cmd, redisURLFlagName, redisURLEnvKey),
		tracingProvider: optional(cmd, tracingProviderFlagName, tracingProviderEnvKey),
		metricsAddr:     optional(cmd, metricsAddrFlagName, metricsAddrEnvKey),
		logLevel:        optional(cmd, common.LogLevelFlagName, common.LogLevelEnvKey),
		wiaKeyFile:      optional(cmd, wiaKeyFileFlagName, wiaKeyFileEnvKey),
		wiaKeyTag:       optional(cmd, wiaKeyTagFlagName, wiaKeyTagEnvKey),
	}

	if flags.version == "" {
		flags.version = protocol.V1_3_3.String()
	}

	if flags.redirectURI == "" {
		flags.redirectURI = defaultRedirectURI
	}

	if flags.wiaKeyTag == "" {
		flags.wiaKeyTag = defaultWIAKeyTag
	}

	if !tracing.IsExportedSupported(flags.tracingProvider) {
		return nil, fmt.Errorf("unsupported %s: %q", tracingProviderFlagName, flags.tracingProvider)
	}

	var err error

	if flags.enableHTTPTrace, err = boolFlag(cmd, enableHTTPTraceFlagName, enableHTTPTraceEnvKey); err != nil {
		return nil, err
	}

	if flags.allowMissingAttributes, err = boolFlag(cmd, allowMissingAttributesFlagName,
		allowMissingAttributesEnvKey); err != nil {
		return nil, err
	}

	timeout := optional(cmd, redirectTimeoutFlagName, redirectTimeoutEnvKey)
	if timeout != "" {
		if flags.redirectTimeout, err = time.ParseDuration(timeout); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", redirectTimeoutFlagName, err)
		}
	}

	if flags.wia, err = readValue(optional(cmd, wiaFlagName, wiaEnvKey)); err != nil {
		return nil, fmt.Errorf("read %s: %w", wiaFlagName, err)
	}

	return flags, nil
}

func optional(cmd *cobra.Command, flagName, envKey string) string {
	return cmdutils.GetUserSetOptionalVarFromString(cmd, flagName, envKey)
}

func required(cmd *cobra.Command, flagName, envKey string) (string, error) {
	return cmdutils.GetUserSetVarFromString(cmd, flagName, envKey, false)
}

func boolFlag(cmd *cobra.Command, flagName, envKey string) (bool, error) {
	v := optional(cmd, flagName, envKey)
	if v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", flagName, err)
	}

	return b, nil
}

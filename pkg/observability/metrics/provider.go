/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
)

// Logger used by different metrics provider.
var Logger = log.New("metrics-provider")

// Constants used by different metrics provider.
const (
	// Namespace Organization namespace.
	Namespace = "iowallet"

	// Crypto key operations.
	Crypto                     = "crypto"
	CryptoSignTimeMetric       = "crypto_sign_seconds"
	CryptoSignCountMetric      = "crypto_sign_count"
	CryptoExportKeyTimeMetric  = "crypto_export_public_key_seconds"
	CryptoExportKeyCountMetric = "crypto_export_public_key_count"

	// Trust federation operations.
	Trust                  = "trust"
	TrustResolveTimeMetric = "trust_chain_resolve_seconds"
	TrustVerifyTimeMetric  = "trust_chain_verify_seconds"
	IssuerCacheHitMetric   = "issuer_metadata_cache_hit_count"
	IssuerCacheMissMetric  = "issuer_metadata_cache_miss_count"

	// Issuance flow operations.
	Issuance                = "issuance"
	CredentialRequestMetric = "credential_request_seconds"
	RedirectWaitMetric      = "redirect_wait_seconds"
)

// Provider is an interface for metrics provider.
type Provider interface {
	// Create creates a metrics provider instance
	Create() error
	// Destroy destroys the metrics provider instance
	Destroy() error
	// Metrics providers metrics
	Metrics() Metrics
}

// Metrics is an interface for the metrics to be supported by the provider.
//
//nolint:interfacebloat
type Metrics interface {
	SignCount()
	SignTime(value time.Duration)
	ExportPublicKeyCount()
	ExportPublicKeyTime(value time.Duration)
	TrustChainResolveTime(value time.Duration)
	TrustChainVerifyTime(value time.Duration)
	IssuerMetadataCacheHit()
	IssuerMetadataCacheMiss()
	CredentialRequestTime(value time.Duration)
	RedirectWaitTime(value time.Duration)
}

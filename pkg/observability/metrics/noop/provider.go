/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package noop records nothing. Wallet services fall back to it when no provider is configured.
package noop

import (
	"time"

	"github.com/trustbloc/iowallet/pkg/observability/metrics"
)

type walletMetrics struct{}

var _ metrics.Metrics = walletMetrics{}

// GetMetrics returns metrics that discard every observation.
func GetMetrics() metrics.Metrics {
	return walletMetrics{}
}

func (walletMetrics) SignCount()                          {}
func (walletMetrics) SignTime(time.Duration)              {}
func (walletMetrics) ExportPublicKeyCount()               {}
func (walletMetrics) ExportPublicKeyTime(time.Duration)   {}
func (walletMetrics) TrustChainResolveTime(time.Duration) {}
func (walletMetrics) TrustChainVerifyTime(time.Duration)  {}
func (walletMetrics) IssuerMetadataCacheHit()             {}
func (walletMetrics) IssuerMetadataCacheMiss()            {}
func (walletMetrics) CredentialRequestTime(time.Duration) {}
func (walletMetrics) RedirectWaitTime(time.Duration)      {}

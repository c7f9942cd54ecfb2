/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/pkg/observability/metrics"
)

var logger = metrics.Logger

var (
	createOnce sync.Once       //nolint:gochecknoglobals
	instance   metrics.Metrics //nolint:gochecknoglobals
)

type promProvider struct {
	server *echo.Echo
	addr   string
}

// NewPrometheusProvider creates new instance of Prometheus Metrics Provider. The /metrics
// endpoint is registered on server, which is started on addr by Create.
func NewPrometheusProvider(server *echo.Echo, addr string) metrics.Provider {
	return &promProvider{server: server, addr: addr}
}

// Create creates/initializes the prometheus metrics provider.
func (pp *promProvider) Create() error {
	pp.server.GET(MetricsPath, Handler(nil))

	go func() {
		if err := pp.server.Start(pp.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics HTTP server stopped", log.WithError(err))
		}
	}()

	return nil
}

// Metrics returns supported metrics.
func (pp *promProvider) Metrics() metrics.Metrics {
	return GetMetrics()
}

// Destroy destroys the prometheus metrics provider.
func (pp *promProvider) Destroy() error {
	return pp.server.Shutdown(context.Background())
}

// GetMetrics returns metrics implementation.
func GetMetrics() metrics.Metrics {
	createOnce.Do(func() {
		instance = NewMetrics()
	})

	return instance
}

// PromMetrics manages the metrics for the wallet.
type PromMetrics struct {
	signCount         prometheus.Counter
	signTime          prometheus.Histogram
	exportKeyCount    prometheus.Counter
	exportKeyTime     prometheus.Histogram
	trustResolveTime  prometheus.Histogram
	trustVerifyTime   prometheus.Histogram
	issuerCacheHit    prometheus.Counter
	issuerCacheMiss   prometheus.Counter
	credentialReqTime prometheus.Histogram
	redirectWaitTime  prometheus.Histogram
}

// NewMetrics creates instance of prometheus metrics.
func NewMetrics() metrics.Metrics {
	pm := &PromMetrics{
		signCount: newCounter(metrics.Crypto, metrics.CryptoSignCountMetric,
			"The number of crypto sign calls.", nil),
		signTime: newHistogram(metrics.Crypto, metrics.CryptoSignTimeMetric,
			"The time (in seconds) it takes to run crypto sign.", nil),
		exportKeyCount: newCounter(metrics.Crypto, metrics.CryptoExportKeyCountMetric,
			"The number of public key exports.", nil),
		exportKeyTime: newHistogram(metrics.Crypto, metrics.CryptoExportKeyTimeMetric,
			"The time (in seconds) it takes to export a public key.", nil),
		trustResolveTime: newHistogram(metrics.Trust, metrics.TrustResolveTimeMetric,
			"The time (in seconds) it takes to build a trust chain.", nil),
		trustVerifyTime: newHistogram(metrics.Trust, metrics.TrustVerifyTimeMetric,
			"The time (in seconds) it takes to verify a trust chain.", nil),
		issuerCacheHit: newCounter(metrics.Trust, metrics.IssuerCacheHitMetric,
			"The number of issuer metadata cache hits.", nil),
		issuerCacheMiss: newCounter(metrics.Trust, metrics.IssuerCacheMissMetric,
			"The number of issuer metadata cache misses.", nil),
		credentialReqTime: newHistogram(metrics.Issuance, metrics.CredentialRequestMetric,
			"The time (in seconds) it takes to obtain a credential from the issuer.", nil),
		redirectWaitTime: newHistogram(metrics.Issuance, metrics.RedirectWaitMetric,
			"The time (in seconds) spent waiting for the authorization redirect.", nil),
	}

	registerMetrics(pm)

	return pm
}

// SignCount increments the number of sign calls.
func (pm *PromMetrics) SignCount() {
	pm.signCount.Inc()
}

// SignTime records the time for sign.
func (pm *PromMetrics) SignTime(value time.Duration) {
	pm.signTime.Observe(value.Seconds())

	logger.Debug("crypto sign time", log.WithDuration(value))
}

func (pm *PromMetrics) ExportPublicKeyCount() {
	pm.exportKeyCount.Inc()
}

func (pm *PromMetrics) ExportPublicKeyTime(value time.Duration) {
	pm.exportKeyTime.Observe(value.Seconds())

	logger.Debug("crypto export public key time", log.WithDuration(value))
}

// TrustChainResolveTime records the time it takes to build a trust chain.
func (pm *PromMetrics) TrustChainResolveTime(value time.Duration) {
	pm.trustResolveTime.Observe(value.Seconds())

	logger.Debug("trust chain resolve time", log.WithDuration(value))
}

// TrustChainVerifyTime records the time it takes to verify a trust chain.
func (pm *PromMetrics) TrustChainVerifyTime(value time.Duration) {
	pm.trustVerifyTime.Observe(value.Seconds())

	logger.Debug("trust chain verify time", log.WithDuration(value))
}

func (pm *PromMetrics) IssuerMetadataCacheHit() {
	pm.issuerCacheHit.Inc()
}

func (pm *PromMetrics) IssuerMetadataCacheMiss() {
	pm.issuerCacheMiss.Inc()
}

// CredentialRequestTime records the time of a credential endpoint round trip.
func (pm *PromMetrics) CredentialRequestTime(value time.Duration) {
	pm.credentialReqTime.Observe(value.Seconds())

	logger.Debug("credential request time", log.WithDuration(value))
}

// RedirectWaitTime records the time spent waiting for the authorization redirect.
func (pm *PromMetrics) RedirectWaitTime(value time.Duration) {
	pm.redirectWaitTime.Observe(value.Seconds())

	logger.Debug("redirect wait time", log.WithDuration(value))
}

func registerMetrics(pm *PromMetrics) {
	prometheus.MustRegister(
		pm.signCount, pm.signTime, pm.exportKeyCount, pm.exportKeyTime,
		pm.trustResolveTime, pm.trustVerifyTime, pm.issuerCacheHit, pm.issuerCacheMiss,
		pm.credentialReqTime, pm.redirectWaitTime,
	)
}

func newCounter(subsystem, name, help string, labels prometheus.Labels) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   metrics.Namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: labels,
	})
}

func newHistogram(subsystem, name, help string, labels prometheus.Labels) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   metrics.Namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: labels,
	})
}

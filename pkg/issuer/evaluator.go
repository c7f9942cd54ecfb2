/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination evaluator_mocks_test.go -package issuer_test -source=evaluator.go -mock_names trustService=MockTrustService,metricsProvider=MockMetricsProvider

package issuer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/issuer/cache"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/trust"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-issuer")

type trustService interface {
	ResolveAndVerify(
		ctx context.Context,
		leafBaseURL string,
		anchor *trust.Anchor,
		opts ...trust.VerifyOpt,
	) ([]*trust.ParsedStatement, error)
}

type metricsProvider interface {
	IssuerMetadataCacheHit()
	IssuerMetadataCacheMiss()
}

// Evaluator establishes trust in credential issuers and projects their metadata.
type Evaluator struct {
	version protocol.Version
	trust   trustService
	anchor  *trust.Anchor
	cache   cache.Store
	metrics metricsProvider
}

// EvaluatorOpt configures Evaluator.
type EvaluatorOpt func(e *Evaluator)

// WithCache sets the store used for verified issuer metadata.
func WithCache(store cache.Store) EvaluatorOpt {
	return func(e *Evaluator) { e.cache = store }
}

// WithMetrics records cache hits and misses.
func WithMetrics(m metricsProvider) EvaluatorOpt {
	return func(e *Evaluator) { e.metrics = m }
}

// NewEvaluator returns an Evaluator that verifies issuers against anchor.
func NewEvaluator(version protocol.Version, trustSvc trustService, anchor *trust.Anchor,
	opts ...EvaluatorOpt) *Evaluator {
	e := &Evaluator{
		version: version,
		trust:   trustSvc,
		anchor:  anchor,
		cache:   cache.NewMemory(0),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// HasTrustAnchor reports whether issuers can be verified.
func (e *Evaluator) HasTrustAnchor() bool {
	return e.anchor != nil
}

// EvaluateIssuerTrust resolves and verifies the trust chain of issuerURL and returns the
// projected metadata of its entity configuration. Each call returns its own copy.
func (e *Evaluator) EvaluateIssuerTrust(ctx context.Context, issuerURL string) (*Config, error) {
	if e.anchor == nil {
		return nil, walleterr.NewConfigurationError(walleterr.ReasonMissingTrustAnchor,
			errors.New("no trust anchor configured")).WithComponent(walleterr.IssuerEvaluatorComponent)
	}

	key := e.cacheKey(issuerURL)

	if conf, ok := e.fromCache(ctx, key); ok {
		return conf, nil
	}

	verified, err := e.trust.ResolveAndVerify(ctx, issuerURL, e.anchor)
	if err != nil {
		return nil, err
	}

	metadata, err := trust.LeafMetadata(verified)
	if err != nil {
		return nil, err
	}

	conf, err := FromEntityMetadata(e.version, metadata)
	if err != nil {
		return nil, withComponent(err)
	}

	e.store(ctx, key, conf)

	logger.Debug("Issuer trusted", logfields.WithCredentialIssuer(conf.CredentialIssuer),
		logfields.WithTrustAnchor(e.anchor.EntityID()), logfields.WithProtocolVersion(e.version.String()))

	return conf, nil
}

func (e *Evaluator) cacheKey(issuerURL string) string {
	return e.version.String() + "|" + issuerURL
}

func (e *Evaluator) fromCache(ctx context.Context, key string) (*Config, bool) {
	b, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrDataNotFound) {
			logger.Warn("Issuer metadata cache read failed", log.WithError(err))
		}

		if e.metrics != nil {
			e.metrics.IssuerMetadataCacheMiss()
		}

		return nil, false
	}

	var conf Config
	if err = json.Unmarshal(b, &conf); err != nil {
		logger.Warn("Dropping undecodable issuer metadata cache entry", log.WithError(err))

		_ = e.cache.Delete(ctx, key)

		return nil, false
	}

	if e.metrics != nil {
		e.metrics.IssuerMetadataCacheHit()
	}

	return &conf, true
}

func (e *Evaluator) store(ctx context.Context, key string, conf *Config) {
	b, err := json.Marshal(conf)
	if err != nil {
		logger.Warn("Failed to encode issuer metadata for cache", log.WithError(err))

		return
	}

	if err = e.cache.Set(ctx, key, b); err != nil {
		logger.Warn("Issuer metadata cache write failed", log.WithError(err))
	}
}

func withComponent(err error) error {
	var werr *walleterr.Error
	if errors.As(err, &werr) {
		return werr.WithComponent(walleterr.IssuerEvaluatorComponent)
	}

	return fmt.Errorf("evaluate issuer metadata: %w", err)
}

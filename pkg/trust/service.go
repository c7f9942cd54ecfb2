/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination service_mocks_test.go -package trust_test -source=service.go -mock_names metricsProvider=MockMetricsProvider

package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
)

type metricsProvider interface {
	TrustChainResolveTime(value time.Duration)
	TrustChainVerifyTime(value time.Duration)
}

// Config holds the collaborators of Service.
type Config struct {
	Resolver *Resolver
	Verifier *Verifier
	Metrics  metricsProvider
}

// Service resolves and verifies trust chains.
type Service struct {
	resolver *Resolver
	verifier *Verifier
	metrics  metricsProvider
}

// NewService creates a Service. A nil Verifier is replaced with one using the default options.
func NewService(config *Config) *Service {
	verifier := config.Verifier
	if verifier == nil {
		verifier = NewVerifier()
	}

	return &Service{
		resolver: config.Resolver,
		verifier: verifier,
		metrics:  config.Metrics,
	}
}

type verifyOpts struct {
	renewOnFail bool
}

// VerifyOpt configures a single VerifyTrustChain call.
type VerifyOpt func(o *verifyOpts)

// WithRenewOnFail controls whether a failed verification is retried once on a renewed chain.
// It is enabled by default.
func WithRenewOnFail(renew bool) VerifyOpt {
	return func(o *verifyOpts) { o.renewOnFail = renew }
}

// GetEntityConfiguration fetches the entity configuration published by baseURL.
func (s *Service) GetEntityConfiguration(ctx context.Context, baseURL string) (*ParsedStatement, error) {
	return s.resolver.GetEntityConfiguration(ctx, baseURL)
}

// BuildTrustChain resolves the chain from leafBaseURL to anchor.
func (s *Service) BuildTrustChain(ctx context.Context, leafBaseURL string, anchor *Anchor) (Chain, error) {
	st := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.TrustChainResolveTime(time.Since(st))
		}
	}()

	return s.resolver.BuildTrustChain(ctx, leafBaseURL, anchor)
}

// RenewTrustChain fetches fresh copies of every chain element.
func (s *Service) RenewTrustChain(ctx context.Context, chain Chain) (Chain, error) {
	return s.resolver.RenewTrustChain(ctx, chain)
}

// VerifyTrustChain validates chain against anchor. When renewal on failure is enabled the
// chain is renewed once and validated again; if renewal itself fails the original
// verification error is returned.
func (s *Service) VerifyTrustChain(
	ctx context.Context,
	anchor *Anchor,
	chain Chain,
	opts ...VerifyOpt,
) ([]*ParsedStatement, error) {
	o := &verifyOpts{renewOnFail: true}
	for _, opt := range opts {
		opt(o)
	}

	st := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.TrustChainVerifyTime(time.Since(st))
		}
	}()

	parsed, err := s.verifier.ValidateTrustChain(ctx, anchor, chain)
	if err == nil || !o.renewOnFail {
		return parsed, err
	}

	logger.Info("Trust chain verification failed, renewing chain", log.WithError(err),
		logfields.WithTrustAnchor(anchor.EntityID()))

	renewed, renewErr := s.resolver.RenewTrustChain(ctx, chain)
	if renewErr != nil {
		logger.Warn("Trust chain renewal failed", log.WithError(renewErr))

		return nil, err
	}

	return s.verifier.ValidateTrustChain(ctx, anchor, renewed)
}

// ResolveAndVerify builds the chain for leafBaseURL and verifies it.
func (s *Service) ResolveAndVerify(
	ctx context.Context,
	leafBaseURL string,
	anchor *Anchor,
	opts ...VerifyOpt,
) ([]*ParsedStatement, error) {
	chain, err := s.BuildTrustChain(ctx, leafBaseURL, anchor)
	if err != nil {
		return nil, err
	}

	return s.VerifyTrustChain(ctx, anchor, chain, opts...)
}

// LeafMetadata returns the metadata of the leaf of a verified chain after applying the
// metadata_policy of the statement its superior issued about it.
func LeafMetadata(verified []*ParsedStatement) (json.RawMessage, error) {
	if len(verified) == 0 {
		return nil, fmt.Errorf("empty trust chain")
	}

	leaf := verified[0].Payload
	if len(verified) == 1 {
		return leaf.Metadata, nil
	}

	return ApplyMetadataPolicy(leaf.Metadata, verified[1].Payload.MetadataPolicy)
}

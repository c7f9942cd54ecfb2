/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination service_mocks_test.go -package issuance_test -source=service.go -mock_names metricsProvider=MockMetricsProvider

// Package issuance drives the credential issuance flow: pushed authorization, user
// authorization completion, token exchange, credential retrieval and verification.
package issuance

import (
	"regexp"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/pkg/oauth2client"
	"github.com/trustbloc/iowallet/pkg/observability/metrics/noop"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/statuslist"
)

var logger = log.New("iowallet-issuance")

// DefaultQueryOnlyPattern matches the credential configurations that accept only the query
// response mode.
const DefaultQueryOnlyPattern = `(?i)PersonIdentificationData`

const (
	requestObjectTTL  = time.Hour
	dpopProofTTL      = time.Hour
	attestationPoPTTL = 5 * time.Minute
	nonceProofTTL     = 5 * time.Minute
)

type metricsProvider interface {
	CredentialRequestTime(value time.Duration)
}

// Config holds the collaborators of Service.
type Config struct {
	Version    protocol.Version
	HTTPClient httputil.Client
	Metrics    metricsProvider
}

// Service implements the issuance steps for one protocol version.
type Service struct {
	version         protocol.Version
	httpClient      httputil.Client
	oauth2Client    *oauth2client.Client
	metrics         metricsProvider
	queryOnly       *regexp.Regexp
	testCatalogMode bool
	statusChecker   *statuslist.Checker
	now             func() time.Time
}

// Opt configures Service.
type Opt func(s *Service)

// WithTestCatalogMode allows VerifyAndParseCredential to ignore claims declared by the issuer
// but missing from the credential. It is meant for test issuers whose catalog runs ahead of
// the credentials they issue.
func WithTestCatalogMode() Opt {
	return func(s *Service) { s.testCatalogMode = true }
}

// WithQueryOnlyPattern replaces DefaultQueryOnlyPattern.
func WithQueryOnlyPattern(re *regexp.Regexp) Opt {
	return func(s *Service) { s.queryOnly = re }
}

// WithStatusListCheck makes credential verification consult the token status list the
// credential references, when it references one.
func WithStatusListCheck(checker *statuslist.Checker) Opt {
	return func(s *Service) { s.statusChecker = checker }
}

// WithClock overrides the time source used for token claims.
func WithClock(now func() time.Time) Opt {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service for config.Version.
func NewService(config *Config, opts ...Opt) *Service {
	s := &Service{
		version:      config.Version,
		httpClient:   config.HTTPClient,
		oauth2Client: oauth2client.NewOAuth2Client(config.HTTPClient),
		metrics:      config.Metrics,
		queryOnly:    regexp.MustCompile(DefaultQueryOnlyPattern),
		now:          time.Now,
	}

	if s.metrics == nil {
		s.metrics = noop.GetMetrics()
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Version returns the protocol version the service implements.
func (s *Service) Version() protocol.Version {
	return s.version
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wallet assembles the issuance, credential offer, trust, trustmark and status services
// of one protocol version.
package wallet

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/credentialoffer"
	"github.com/trustbloc/iowallet/pkg/issuance"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/issuer/cache"
	"github.com/trustbloc/iowallet/pkg/observability/metrics"
	"github.com/trustbloc/iowallet/pkg/observability/metrics/noop"
	issuancetracing "github.com/trustbloc/iowallet/pkg/observability/tracing/wrappers/issuance"
	trusttracing "github.com/trustbloc/iowallet/pkg/observability/tracing/wrappers/trust"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/status"
	"github.com/trustbloc/iowallet/pkg/statuslist"
	"github.com/trustbloc/iowallet/pkg/trust"
	"github.com/trustbloc/iowallet/pkg/trustmark"
)

var logger = log.New("iowallet")

type options struct {
	httpClient       httputil.Client
	anchor           *trust.Anchor
	metrics          metrics.Metrics
	tracer           trace.Tracer
	cache            cache.Store
	testCatalogMode  bool
	statusListCheck  bool
	queryOnlyPattern *regexp.Regexp
	hopLimit         int
	crlPolicy        *trust.CRLPolicy
	now              func() time.Time
}

// Opt configures IoWallet.
type Opt func(o *options)

// WithHTTPClient sets the client used for every outgoing request. Defaults to http.DefaultClient.
func WithHTTPClient(client httputil.Client) Opt {
	return func(o *options) { o.httpClient = client }
}

// WithTrustAnchor enables trust evaluation of issuers against anchor.
func WithTrustAnchor(anchor *trust.Anchor) Opt {
	return func(o *options) { o.anchor = anchor }
}

// WithMetrics sets the metrics provider shared by the services.
func WithMetrics(m metrics.Metrics) Opt {
	return func(o *options) { o.metrics = m }
}

// WithTracer wraps the issuance and trust services with spans.
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *options) { o.tracer = tracer }
}

// WithIssuerCache replaces the in-memory store of verified issuer metadata.
func WithIssuerCache(store cache.Store) Opt {
	return func(o *options) { o.cache = store }
}

// WithTestCatalogMode allows credentials that lack attributes declared by the issuer.
func WithTestCatalogMode() Opt {
	return func(o *options) { o.testCatalogMode = true }
}

// WithStatusListCheck makes credential verification consult the referenced token status list.
func WithStatusListCheck() Opt {
	return func(o *options) { o.statusListCheck = true }
}

// WithQueryOnlyPattern overrides issuance.DefaultQueryOnlyPattern.
func WithQueryOnlyPattern(re *regexp.Regexp) Opt {
	return func(o *options) { o.queryOnlyPattern = re }
}

// WithHopLimit bounds the length of resolved trust chains.
func WithHopLimit(limit int) Opt {
	return func(o *options) { o.hopLimit = limit }
}

// WithCRLPolicy sets the revocation policy applied to the anchor certificate chain.
func WithCRLPolicy(policy trust.CRLPolicy) Opt {
	return func(o *options) { o.crlPolicy = &policy }
}

// WithClock sets the time source of the services.
func WithClock(now func() time.Time) Opt {
	return func(o *options) { o.now = now }
}

// IoWallet exposes the services of one protocol version. Operations a version does not support
// fail with an UnimplementedFeatureError.
type IoWallet struct {
	version         protocol.Version
	issuance        issuance.API
	credentialOffer credentialoffer.API
	trust           trust.API
	trustmark       trustmark.API
	status          status.API
	evaluator       *issuer.Evaluator
}

// New validates version and builds its services.
func New(version string, opts ...Opt) (*IoWallet, error) {
	v, err := protocol.ParseVersion(version)
	if err != nil {
		return nil, err
	}

	o := &options{
		httpClient: http.DefaultClient,
		metrics:    noop.GetMetrics(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	var verifierOpts []trust.VerifierOpt

	verifierOpts = append(verifierOpts, trust.WithClock(o.now), trust.WithCRLClient(o.httpClient))

	if o.crlPolicy != nil {
		verifierOpts = append(verifierOpts, trust.WithCRLPolicy(*o.crlPolicy))
	}

	var resolverOpts []trust.ResolverOpt

	if o.hopLimit > 0 {
		resolverOpts = append(resolverOpts, trust.WithHopLimit(o.hopLimit))
	}

	var trustSvc trust.API = trust.NewService(&trust.Config{
		Resolver: trust.NewResolver(o.httpClient, resolverOpts...),
		Verifier: trust.NewVerifier(verifierOpts...),
		Metrics:  o.metrics,
	})

	evaluatorOpts := []issuer.EvaluatorOpt{issuer.WithMetrics(o.metrics)}
	if o.cache != nil {
		evaluatorOpts = append(evaluatorOpts, issuer.WithCache(o.cache))
	}

	issuanceOpts := []issuance.Opt{issuance.WithClock(o.now)}

	if o.testCatalogMode {
		issuanceOpts = append(issuanceOpts, issuance.WithTestCatalogMode())
	}

	if o.statusListCheck {
		issuanceOpts = append(issuanceOpts, issuance.WithStatusListCheck(statuslist.NewChecker(o.httpClient)))
	}

	if o.queryOnlyPattern != nil {
		issuanceOpts = append(issuanceOpts, issuance.WithQueryOnlyPattern(o.queryOnlyPattern))
	}

	var issuanceSvc issuance.API = issuance.NewService(&issuance.Config{
		Version:    v,
		HTTPClient: o.httpClient,
		Metrics:    o.metrics,
	}, issuanceOpts...)

	if o.tracer != nil {
		trustSvc = trusttracing.Wrap(trustSvc, o.tracer)
		issuanceSvc = issuancetracing.Wrap(issuanceSvc, o.tracer)
	}

	evaluator := issuer.NewEvaluator(v, trustSvc, o.anchor, evaluatorOpts...)

	offerSvc, err := credentialoffer.New(v, o.httpClient, credentialoffer.WithIssuerEvaluator(evaluator))
	if err != nil {
		return nil, err
	}

	trustmarkSvc, err := trustmark.New(v, trustmark.WithClock(o.now))
	if err != nil {
		return nil, err
	}

	statusSvc, err := status.New(v, o.httpClient, status.WithClock(o.now))
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{logfields.WithProtocolVersion(v.String())}
	if o.anchor != nil {
		fields = append(fields, logfields.WithTrustAnchor(o.anchor.EntityID()))
	}

	logger.Debug("Wallet initialized", fields...)

	return &IoWallet{
		version:         v,
		issuance:        issuanceSvc,
		credentialOffer: offerSvc,
		trust:           trustSvc,
		trustmark:       trustmarkSvc,
		status:          statusSvc,
		evaluator:       evaluator,
	}, nil
}

// Version returns the protocol version selected at construction.
func (w *IoWallet) Version() protocol.Version {
	return w.version
}

func (w *IoWallet) Issuance() issuance.API {
	return w.issuance
}

func (w *IoWallet) CredentialOffer() credentialoffer.API {
	return w.credentialOffer
}

func (w *IoWallet) Trust() trust.API {
	return w.trust
}

func (w *IoWallet) Trustmark() trustmark.API {
	return w.trustmark
}

func (w *IoWallet) Status() status.API {
	return w.status
}

// EvaluateIssuerTrust verifies the trust chain of issuerURL against the configured anchor and
// returns its metadata.
func (w *IoWallet) EvaluateIssuerTrust(ctx context.Context, issuerURL string) (*issuer.Config, error) {
	return w.evaluator.EvaluateIssuerTrust(ctx, issuerURL)
}

// HasTrustAnchor reports whether a trust anchor was configured.
func (w *IoWallet) HasTrustAnchor() bool {
	return w.evaluator.HasTrustAnchor()
}

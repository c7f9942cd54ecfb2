/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/henvic/httpretty"
	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/cmd/common"
	"github.com/trustbloc/iowallet/cmd/iowallet-cli/internal/formatter"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/kms"
	"github.com/trustbloc/iowallet/pkg/kms/local"
	"github.com/trustbloc/iowallet/pkg/observability/metrics"
	"github.com/trustbloc/iowallet/pkg/observability/metrics/noop"
	"github.com/trustbloc/iowallet/pkg/observability/metrics/prometheus"
	"github.com/trustbloc/iowallet/pkg/observability/tracing"
	"github.com/trustbloc/iowallet/pkg/redirect"
	"github.com/trustbloc/iowallet/pkg/storage/redis"
	"github.com/trustbloc/iowallet/pkg/storage/redis/issuermetadatastore"
	"github.com/trustbloc/iowallet/pkg/trust"
	"github.com/trustbloc/iowallet/pkg/wallet"
)

var logger = log.New("iowallet-cli")

const (
	maxResponseBody = 1e+7
	issuerCacheTTL  = 24 * time.Hour
)

type services struct {
	flags      *walletFlags
	httpClient *http.Client
	wallet     *wallet.IoWallet
	keyStore   cryptoctx.KeyStore
	anchor     *trust.Anchor
	metrics    metrics.Metrics
	closers    []func()
}

func initServices(ctx context.Context, flags *walletFlags) (svc *services, err error) {
	common.SetLogLevels(logger, flags.logLevel)

	svc = &services{
		flags:      flags,
		httpClient: newHTTPClient(flags.enableHTTPTrace),
		metrics:    noop.GetMetrics(),
	}

	defer func() {
		if err != nil {
			svc.Close()
		}
	}()

	if flags.metricsAddr != "" {
		provider := prometheus.NewPrometheusProvider(newEcho(), flags.metricsAddr)
		if err = provider.Create(); err != nil {
			return nil, fmt.Errorf("create metrics provider: %w", err)
		}

		svc.metrics = provider.Metrics()
		svc.closers = append(svc.closers, func() {
			if destroyErr := provider.Destroy(); destroyErr != nil {
				logger.Warn("Failed to stop metrics server", log.WithError(destroyErr))
			}
		})
	}

	tp, err := tracing.Initialize(flags.tracingProvider, "iowallet-cli",
		tracing.WithProtocolVersion(flags.version), tracing.WithSyncExport())
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	svc.closers = append(svc.closers, tp.Shutdown)

	opts := []wallet.Opt{
		wallet.WithHTTPClient(svc.httpClient),
		wallet.WithMetrics(svc.metrics),
		wallet.WithStatusListCheck(),
	}

	if tp.Enabled() {
		opts = append(opts, wallet.WithTracer(tp.Tracer()))
	}

	if flags.allowMissingAttributes {
		opts = append(opts, wallet.WithTestCatalogMode())
	}

	if flags.trustAnchorURL != "" {
		if svc.anchor, err = fetchTrustAnchor(ctx, svc.httpClient, flags.trustAnchorURL); err != nil {
			return nil, err
		}

		opts = append(opts, wallet.WithTrustAnchor(svc.anchor))
	}

	if flags.redisURL != "" {
		var redisOpts []redis.ClientOpt
		if tp.Enabled() {
			redisOpts = append(redisOpts, redis.WithTraceProvider(tp.TracerProvider()))
		}

		client, redisErr := redis.New(flags.redisURL, redisOpts...)
		if redisErr != nil {
			return nil, redisErr
		}

		svc.closers = append(svc.closers, func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warn("Failed to close redis client", log.WithError(closeErr))
			}
		})

		opts = append(opts, wallet.WithIssuerCache(issuermetadatastore.New(client.API(), issuerCacheTTL)))
	}

	if svc.wallet, err = wallet.New(flags.version, opts...); err != nil {
		return nil, err
	}

	if svc.keyStore, err = kms.NewKeyStore(ctx, &kms.Config{
		KMSType:     kms.Type(flags.kmsType),
		Endpoint:    flags.awsEndpoint,
		Region:      flags.awsRegion,
		AliasPrefix: flags.keyAliasPrefix,
	}, svc.metrics); err != nil {
		return nil, err
	}

	if flags.wiaKeyFile != "" {
		if err = importWIAKey(svc.keyStore, flags.wiaKeyTag, flags.wiaKeyFile); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

// Close stops the servers and exporters started by initServices, in reverse order.
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}

	s.closers = nil
}

func (s *services) wiaContext() cryptoctx.Context {
	return s.keyStore.Context(s.flags.wiaKeyTag)
}

// listenRedirects serves the redirect URI and returns the hub the redirects are published on.
func (s *services) listenRedirects() (*redirect.Hub, error) {
	u, err := url.Parse(s.flags.redirectURI)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid %s %q", redirectURIFlagName, s.flags.redirectURI)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	hub := redirect.NewHub()

	e := newEcho()
	e.GET(path, hub.Handler(u.Scheme+"://"+u.Host))

	go func() {
		if startErr := e.Start(u.Host); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			logger.Error("Redirect listener stopped", log.WithError(startErr))
		}
	}()

	s.closers = append(s.closers, func() {
		if shutdownErr := e.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("Failed to stop redirect listener", log.WithError(shutdownErr))
		}
	})

	logger.Info("Listening for authorization redirects", log.WithURL(s.flags.redirectURI))

	return hub, nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return e
}

func newHTTPClient(trace bool) *http.Client {
	client := &http.Client{Transport: http.DefaultTransport}

	if trace {
		httpLogger := &httpretty.Logger{
			RequestHeader:   true,
			RequestBody:     true,
			ResponseHeader:  true,
			ResponseBody:    true,
			SkipSanitize:    true,
			Colors:          true,
			SkipRequestInfo: true,
			Formatters:      []httpretty.Formatter{&httpretty.JSONFormatter{}, &formatter.JWTFormatter{}},
			MaxResponseBody: maxResponseBody,
		}

		httpLogger.SetOutput(os.Stderr)

		client.Transport = httpLogger.RoundTripper(client.Transport)
	}

	return client
}

func fetchTrustAnchor(ctx context.Context, httpClient *http.Client, anchorURL string) (*trust.Anchor, error) {
	st, err := trust.NewResolver(httpClient).GetEntityConfiguration(ctx, anchorURL)
	if err != nil {
		return nil, fmt.Errorf("fetch trust anchor configuration: %w", err)
	}

	anchor, err := trust.NewAnchor(st.Raw)
	if err != nil {
		return nil, err
	}

	logger.Debug("Trust anchor loaded", logfields.WithTrustAnchor(anchor.EntityID()))

	return anchor, nil
}

func importWIAKey(ks cryptoctx.KeyStore, tag, path string) error {
	localStore, ok := ks.(*local.Store)
	if !ok {
		return fmt.Errorf("%s is supported only with the %s kms", wiaKeyFileFlagName, kms.Local)
	}

	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("read wallet instance key: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return fmt.Errorf("%s is not a PEM file", path)
	}

	priv, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("parse wallet instance key: %w", err)
	}

	if _, err = localStore.ImportKey(tag, priv); err != nil {
		return fmt.Errorf("import wallet instance key: %w", err)
	}

	return nil
}

// readValue returns v, or the trimmed content of the file v names with a leading @.
func readValue(v string) (string, error) {
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}

	b, err := os.ReadFile(strings.TrimPrefix(v, "@"))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.New("iowallet-redis")

const (
	defaultTimeout      = 15 * time.Second
	defaultPingAttempts = 5
	defaultPingInterval = time.Second
)

type clientOpts struct {
	masterName    string
	password      string
	tlsConfig     *tls.Config
	timeout       time.Duration
	pingAttempts  uint64
	pingInterval  time.Duration
	traceProvider trace.TracerProvider
}

type ClientOpt func(opts *clientOpts)

// WithTraceProvider records a span for every redis command.
func WithTraceProvider(traceProvider trace.TracerProvider) ClientOpt {
	return func(opts *clientOpts) {
		opts.traceProvider = traceProvider
	}
}

// WithMasterName connects through the sentinels listed in the addresses.
func WithMasterName(masterName string) ClientOpt {
	return func(opts *clientOpts) {
		opts.masterName = masterName
	}
}

func WithPassword(password string) ClientOpt {
	return func(opts *clientOpts) {
		opts.password = password
	}
}

func WithTLSConfig(tlsConfig *tls.Config) ClientOpt {
	return func(opts *clientOpts) {
		opts.tlsConfig = tlsConfig
	}
}

// WithTimeout bounds every ping attempt and every cache operation.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(opts *clientOpts) {
		opts.timeout = timeout
	}
}

// WithPingRetry sets how many times the initial ping is attempted and the pause between attempts.
func WithPingRetry(attempts uint64, interval time.Duration) ClientOpt {
	return func(opts *clientOpts) {
		opts.pingAttempts = attempts
		opts.pingInterval = interval
	}
}

// Client is the connection of the issuer metadata cache.
type Client struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// New connects to the redis instance described by target and checks it answers.
//
// target is either a redis:// or rediss:// URL, whose credentials, database and TLS settings
// override the options, or a comma separated list of addresses. A list of two or more
// addresses connects to a cluster, unless WithMasterName selects a sentinel setup.
func New(target string, opts ...ClientOpt) (*Client, error) {
	opt := &clientOpts{
		timeout:      defaultTimeout,
		pingAttempts: defaultPingAttempts,
		pingInterval: defaultPingInterval,
	}

	for _, f := range opts {
		f(opt)
	}

	universal, err := universalOptions(target, opt)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(universal)

	if opt.traceProvider != nil {
		if err = redisotel.InstrumentTracing(client, redisotel.WithTracerProvider(opt.traceProvider)); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("instrument with tracing: %w", err)
		}
	}

	if err = ping(client, opt); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		client:  client,
		timeout: opt.timeout,
	}, nil
}

func universalOptions(target string, opt *clientOpts) (*redis.UniversalOptions, error) {
	universal := &redis.UniversalOptions{
		ContextTimeoutEnabled: true,
		MasterName:            opt.masterName,
		Password:              opt.password,
		TLSConfig:             opt.tlsConfig,
	}

	if !strings.Contains(target, "://") {
		universal.Addrs = strings.Split(target, ",")

		return universal, nil
	}

	parsed, err := redis.ParseURL(target)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	universal.Addrs = []string{parsed.Addr}
	universal.Username = parsed.Username
	universal.DB = parsed.DB

	if parsed.Password != "" {
		universal.Password = parsed.Password
	}

	if parsed.TLSConfig != nil {
		universal.TLSConfig = parsed.TLSConfig
	}

	return universal, nil
}

func ping(client redis.UniversalClient, opt *clientOpts) error {
	var retries uint64
	if opt.pingAttempts > 1 {
		retries = opt.pingAttempts - 1
	}

	return backoff.RetryNotify(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), opt.timeout)
			defer cancel()

			return client.Ping(ctx).Err()
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opt.pingInterval), retries),
		func(err error, wait time.Duration) {
			logger.Warn("Redis not reachable, retrying", log.WithError(err), log.WithDuration(wait))
		},
	)
}

// ContextWithTimeout returns a context bounded by the client timeout.
func (c *Client) ContextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

func (c *Client) API() redis.UniversalClient {
	return c.client
}

// Close releases the connections of the client.
func (c *Client) Close() error {
	return c.client.Close()
}

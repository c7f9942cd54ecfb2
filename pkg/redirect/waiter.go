/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination waiter_mocks_test.go -package redirect_test -source=waiter.go -mock_names Source=MockSource,metricsProvider=MockMetricsProvider

// Package redirect waits for the authorization server to send the user agent back to the wallet.
package redirect

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-redirect")

// DefaultTimeout bounds a single wait.
const DefaultTimeout = 120 * time.Second

// Source delivers the URLs the user agent is redirected to.
type Source interface {
	// Subscribe registers fn and returns the function removing it.
	Subscribe(fn func(redirectURL string)) (unsubscribe func())
}

type metricsProvider interface {
	RedirectWaitTime(value time.Duration)
}

// Waiter blocks until a redirect arrives.
type Waiter struct {
	source  Source
	timeout time.Duration
	metrics metricsProvider
}

// Opt configures Waiter.
type Opt func(w *Waiter)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Opt {
	return func(w *Waiter) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}

// WithMetrics records how long waits take.
func WithMetrics(m metricsProvider) Opt {
	return func(w *Waiter) { w.metrics = m }
}

// NewWaiter returns a Waiter listening on source.
func NewWaiter(source Source, opts ...Opt) *Waiter {
	w := &Waiter{
		source:  source,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Wait returns the first redirect URL starting with prefix. The listener is removed exactly once
// whatever the outcome. Cancellation of ctx yields an OperationAbortedError, expiry of the timeout
// an AuthorizationError.
func (w *Waiter) Wait(ctx context.Context, prefix string) (string, error) {
	start := time.Now()

	defer func() {
		if w.metrics != nil {
			w.metrics.RedirectWaitTime(time.Since(start))
		}
	}()

	received := make(chan string, 1)

	unsubscribe := w.source.Subscribe(func(redirectURL string) {
		if !strings.HasPrefix(redirectURL, prefix) {
			return
		}

		select {
		case received <- redirectURL:
		default:
		}
	})

	var once sync.Once

	cleanup := func() { once.Do(unsubscribe) }
	defer cleanup()

	if err := ctx.Err(); err != nil {
		cleanup()

		return "", walleterr.NewOperationAbortedError("redirect", err).WithComponent(walleterr.RedirectComponent)
	}

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case redirectURL := <-received:
		cleanup()

		return redirectURL, nil
	case <-ctx.Done():
		cleanup()

		logger.Debug("Redirect wait aborted", log.WithError(ctx.Err()))

		return "", walleterr.NewOperationAbortedError("redirect", ctx.Err()).
			WithComponent(walleterr.RedirectComponent)
	case <-timer.C:
		cleanup()

		logger.Debug("Redirect wait timed out", logfields.WithTimeout(w.timeout))

		return "", walleterr.NewAuthorizationError(walleterr.ReasonTimeout,
			fmt.Errorf("no redirect to %s within %s", prefix, w.timeout)).
			WithComponent(walleterr.RedirectComponent)
	}
}

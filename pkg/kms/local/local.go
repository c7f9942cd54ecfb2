/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package local is an in-memory P-256 key store for tests and the CLI.
package local

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/observability/metrics"
	"github.com/trustbloc/iowallet/pkg/observability/metrics/noop"
)

const coordinateSize = 32

// Store keeps P-256 keys in memory, indexed by tag. Key IDs are JWK thumbprints.
type Store struct {
	mu      sync.RWMutex
	keys    map[string]*ecdsa.PrivateKey
	metrics metrics.Metrics
}

// Opt configures Store.
type Opt func(s *Store)

// WithMetrics sets the metrics sink for sign operations.
func WithMetrics(m metrics.Metrics) Opt {
	return func(s *Store) { s.metrics = m }
}

// New returns an empty Store.
func New(opts ...Opt) *Store {
	s := &Store{
		keys:    map[string]*ecdsa.PrivateKey{},
		metrics: noop.GetMetrics(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate creates a new key bound to tag, replacing any existing one.
func (s *Store) Generate(_ context.Context, tag string) (*jose.JSONWebKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate p-256 key: %w", err)
	}

	return s.ImportKey(tag, priv)
}

// ImportKey binds an existing private key to tag.
func (s *Store) ImportKey(tag string, priv *ecdsa.PrivateKey) (*jose.JSONWebKey, error) {
	if priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("unsupported curve %s", priv.Curve.Params().Name)
	}

	s.mu.Lock()
	s.keys[tag] = priv
	s.mu.Unlock()

	return publicJWK(&priv.PublicKey)
}

// Delete removes the key bound to tag.
func (s *Store) Delete(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[tag]; !ok {
		return cryptoctx.ErrKeyNotFound
	}

	delete(s.keys, tag)

	return nil
}

// Context returns the crypto context for tag. The key is looked up on each call, so a
// context obtained before Generate becomes usable afterwards.
func (s *Store) Context(tag string) cryptoctx.Context {
	return &keyContext{store: s, tag: tag}
}

func (s *Store) get(tag string) (*ecdsa.PrivateKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	priv, ok := s.keys[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cryptoctx.ErrKeyNotFound, tag)
	}

	return priv, nil
}

type keyContext struct {
	store *Store
	tag   string
}

func (c *keyContext) PublicKey(_ context.Context) (*jose.JSONWebKey, error) {
	priv, err := c.store.get(c.tag)
	if err != nil {
		return nil, err
	}

	return publicJWK(&priv.PublicKey)
}

func (c *keyContext) Sign(_ context.Context, data []byte) ([]byte, error) {
	startTime := time.Now()

	defer func() {
		c.store.metrics.SignTime(time.Since(startTime))
	}()

	c.store.metrics.SignCount()

	priv, err := c.store.get(c.tag)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(data)

	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("ecdsa sign: %w", err)
	}

	sig := make([]byte, 2*coordinateSize)
	r.FillBytes(sig[:coordinateSize])
	s.FillBytes(sig[coordinateSize:])

	return sig, nil
}

func publicJWK(pub *ecdsa.PublicKey) (*jose.JSONWebKey, error) {
	key := &jose.JSONWebKey{Key: pub, Algorithm: string(jose.ES256), Use: "sig"}

	kid, err := cryptoctx.Thumbprint(key)
	if err != nil {
		return nil, err
	}

	key.KeyID = kid

	return key, nil
}

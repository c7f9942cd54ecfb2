/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoctx

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
)

var logger = log.New("iowallet-crypto")

// DeleteKeyIfExists deletes the key bound to tag. A missing key is not an error.
func DeleteKeyIfExists(ctx context.Context, ks KeyStore, tag string) error {
	err := ks.Delete(ctx, tag)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrKeyNotFound) {
		logger.Debug("No key to delete", logfields.WithKeyTag(tag))

		return nil
	}

	return fmt.Errorf("delete key %q: %w", tag, err)
}

// RegenerateKey replaces the key bound to tag with a fresh one and returns its context.
func RegenerateKey(ctx context.Context, ks KeyStore, tag string) (Context, error) {
	if err := DeleteKeyIfExists(ctx, ks, tag); err != nil {
		return nil, err
	}

	if _, err := ks.Generate(ctx, tag); err != nil {
		return nil, fmt.Errorf("generate key %q: %w", tag, err)
	}

	logger.Debug("Key regenerated", logfields.WithKeyTag(tag))

	return ks.Context(tag), nil
}

// WithEphemeralKey generates a key under a random tag, runs fn with it and always deletes
// the key afterwards.
func WithEphemeralKey(ctx context.Context, ks KeyStore, fn func(cc Context) error) (err error) {
	tag := "ephemeral-" + uuid.NewString()

	if _, err = ks.Generate(ctx, tag); err != nil {
		return fmt.Errorf("generate ephemeral key: %w", err)
	}

	defer func() {
		if delErr := DeleteKeyIfExists(ctx, ks, tag); delErr != nil {
			logger.Warn("Failed to delete ephemeral key", log.WithError(delErr), logfields.WithKeyTag(tag))

			if err == nil {
				err = delErr
			}
		}
	}()

	return fn(ks.Context(tag))
}

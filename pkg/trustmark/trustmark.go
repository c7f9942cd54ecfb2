/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package trustmark issues short lived proofs that the wallet holds a credential of a given type.
package trustmark

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/walleterr"
	"github.com/trustbloc/iowallet/pkg/wia"
)

var logger = log.New("iowallet-trustmark")

const (
	// DefaultExpiration is the lifetime of a trustmark when Params.ExpirationTime is not set.
	DefaultExpiration = 2 * time.Minute

	obfuscatedPercentage = 60
	obfuscatedChar       = '*'
)

// API issues trustmarks.
type API interface {
	GetCredentialTrustmark(ctx context.Context, params *Params) (*Trustmark, error)
}

// Params are the inputs of GetCredentialTrustmark.
//
// ExpirationTime is either absolute, as an int64 unix timestamp in seconds or a time.Time, or
// relative to now, as a time.Duration or a duration string such as "2m".
type Params struct {
	WalletInstanceAttestation string
	WIACryptoContext          cryptoctx.Context
	CredentialType            string
	DocNumber                 string
	ExpirationTime            interface{}
}

// Trustmark is a signed trustmark JWT and its expiration time in unix seconds.
type Trustmark struct {
	JWT            string `json:"jwt"`
	ExpirationTime int64  `json:"expirationTime"`
}

type claims struct {
	Issuer     string `json:"iss"`
	Subject    string `json:"sub,omitempty"`
	SubType    string `json:"subtyp"`
	IssuedAt   int64  `json:"iat"`
	Expiration int64  `json:"exp"`
}

// Opt configures Service.
type Opt func(s *Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Opt {
	return func(s *Service) { s.now = now }
}

// Service implements API.
type Service struct {
	now func() time.Time
}

// New returns the trustmark API of version. Both versions issue trustmarks the same way.
func New(version protocol.Version, opts ...Opt) (API, error) {
	if _, err := protocol.ParseVersion(version.String()); err != nil {
		return nil, err
	}

	s := &Service{now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// GetCredentialTrustmark signs a trustmark for params.CredentialType with the wallet instance
// key. The attestation must not be expired and must be bound to that key.
func (s *Service) GetCredentialTrustmark(ctx context.Context, params *Params) (*Trustmark, error) {
	now := s.now()

	exp, err := expiration(params.ExpirationTime, now)
	if err != nil {
		return nil, walleterr.NewValidationError(err).WithComponent(walleterr.TrustmarkComponent)
	}

	attestation, err := wia.Decode(params.WalletInstanceAttestation)
	if err != nil {
		return nil, walleterr.NewValidationError(err).WithComponent(walleterr.TrustmarkComponent)
	}

	if attestation.Expired(now) {
		logger.Error("Wallet instance attestation expired",
			log.WithDuration(now.Sub(attestation.ExpiresAt())))

		return nil, walleterr.NewValidationError(
			fmt.Errorf("wallet instance attestation expired at %s", attestation.ExpiresAt().UTC())).
			WithComponent(walleterr.TrustmarkComponent)
	}

	holderKey, err := params.WIACryptoContext.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("get wallet instance key: %w", err)
	}

	same, expected, got, err := cryptoctx.SameThumbprint(holderKey, attestation.ConfirmationKey())
	if err != nil {
		return nil, err
	}

	if !same {
		logger.Error("Wallet instance attestation is bound to another key",
			logfields.WithThumbprint(got))

		return nil, walleterr.NewHolderBindingError(expected, got).WithComponent(walleterr.TrustmarkComponent)
	}

	subject, err := obfuscate(params.DocNumber)
	if err != nil {
		return nil, err
	}

	jwt, err := cryptoctx.SignJWT(ctx, params.WIACryptoContext, &claims{
		Issuer:     params.WalletInstanceAttestation,
		Subject:    subject,
		SubType:    params.CredentialType,
		IssuedAt:   now.Unix(),
		Expiration: exp.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign trustmark: %w", err)
	}

	logger.Debug("Trustmark issued", logfields.WithThumbprint(expected), log.WithDuration(exp.Sub(now)))

	return &Trustmark{JWT: jwt, ExpirationTime: exp.Unix()}, nil
}

func expiration(v interface{}, now time.Time) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return now.Add(DefaultExpiration), nil
	case int64:
		return time.Unix(t, 0), nil
	case int:
		return time.Unix(int64(t), 0), nil
	case time.Time:
		return t, nil
	case time.Duration:
		return now.Add(t), nil
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid expiration time %q: %w", t, err)
		}

		return now.Add(d), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported expiration time type %T", v)
	}
}

// obfuscate replaces 60% of the characters of value, chosen at random, with '*'.
func obfuscate(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	chars := []rune(value)
	n := len(chars) * obfuscatedPercentage / 100

	positions := make([]int, len(chars))
	for i := range positions {
		positions[i] = i
	}

	// partial Fisher-Yates: the first n positions are a uniform random sample
	for i := 0; i < n; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(len(positions)-i)))
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}

		k := i + int(j.Int64())
		positions[i], positions[k] = positions[k], positions[i]
		chars[positions[i]] = obfuscatedChar
	}

	return string(chars), nil
}

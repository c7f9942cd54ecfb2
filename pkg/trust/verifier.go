/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// Verifier validates trust chains against the configured anchor.
type Verifier struct {
	now       func() time.Time
	policy    CRLPolicy
	crlClient HTTPClient
}

// VerifierOpt configures Verifier.
type VerifierOpt func(v *Verifier)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) VerifierOpt {
	return func(v *Verifier) { v.now = now }
}

// WithCRLPolicy sets the revocation policy for X.509 validation.
func WithCRLPolicy(policy CRLPolicy) VerifierOpt {
	return func(v *Verifier) { v.policy = policy }
}

// WithCRLClient fetches CRLs through client, bounded by the CRL policy timeouts. Without it a
// dedicated client is built from the policy.
func WithCRLClient(client HTTPClient) VerifierOpt {
	return func(v *Verifier) { v.crlClient = client }
}

// NewVerifier returns a Verifier.
func NewVerifier(opts ...VerifierOpt) *Verifier {
	v := &Verifier{
		now:    time.Now,
		policy: DefaultCRLPolicy(),
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.crlClient == nil {
		v.crlClient = newCRLClient(v.policy)
	} else {
		v.crlClient = newBoundedClient(v.crlClient, v.policy)
	}

	return v
}

// ValidateTrustChain checks links, expiry, signatures and, when the anchor carries an X.509
// root, the certificates of every signing key. It returns the parsed statements in chain order.
func (v *Verifier) ValidateTrustChain(ctx context.Context, anchor *Anchor, chain Chain) ([]*ParsedStatement, error) {
	if len(chain) == 0 {
		return nil, walleterr.NewTrustChainVerificationError(walleterr.ReasonEmptyChain,
			fmt.Errorf("cannot verify an empty trust chain"))
	}

	parsed := make([]*ParsedStatement, len(chain))

	for i, raw := range chain {
		st, err := ParseStatement(raw)
		if err != nil {
			return nil, walleterr.NewTrustChainVerificationError(walleterr.ReasonInvalidStatement,
				fmt.Errorf("chain element %d: %w", i, err))
		}

		parsed[i] = st
	}

	if err := checkLinks(anchor, parsed); err != nil {
		return nil, err
	}

	if err := v.checkExpiry(parsed); err != nil {
		return nil, err
	}

	keys, err := checkSignatures(anchor, parsed)
	if err != nil {
		return nil, err
	}

	if root := anchor.RootCertificate(); root != nil {
		validator := &certificateValidator{policy: v.policy, httpClient: v.crlClient, now: v.now}

		for i, key := range keys {
			if err = validator.validate(ctx, key.Certificates, root); err != nil {
				return nil, withElement(err, i)
			}
		}
	}

	logger.Debug("Trust chain verified", logfields.WithChainLength(len(parsed)),
		logfields.WithTrustAnchor(anchor.EntityID()))

	return parsed, nil
}

func checkLinks(anchor *Anchor, parsed []*ParsedStatement) error {
	if !parsed[0].Payload.IsConfiguration() {
		return walleterr.NewTrustChainVerificationError(walleterr.ReasonBrokenLink,
			fmt.Errorf("first element must be an entity configuration"))
	}

	last := len(parsed) - 1

	for i := 1; i <= last; i++ {
		st := parsed[i].Payload

		if i < last && st.IsConfiguration() {
			return walleterr.NewTrustChainVerificationError(walleterr.ReasonBrokenLink,
				fmt.Errorf("element %d must be a subordinate statement", i))
		}

		if st.Subject != parsed[i-1].Payload.Issuer {
			return walleterr.NewTrustChainVerificationError(walleterr.ReasonBrokenLink,
				fmt.Errorf("element %d sub %q does not match element %d iss %q",
					i, st.Subject, i-1, parsed[i-1].Payload.Issuer)).
				WithIncorrectValue(st.Subject)
		}
	}

	tail := parsed[last].Payload
	if tail.Issuer != anchor.EntityID() {
		return walleterr.NewTrustChainVerificationError(walleterr.ReasonBrokenLink,
			fmt.Errorf("chain ends at %q, expected trust anchor %q", tail.Issuer, anchor.EntityID())).
			WithIncorrectValue(tail.Issuer)
	}

	return nil
}

func (v *Verifier) checkExpiry(parsed []*ParsedStatement) error {
	now := v.now().Unix()

	for i, st := range parsed {
		if st.Payload.Expiration <= now {
			return walleterr.NewTrustChainVerificationError(walleterr.ReasonExpired,
				fmt.Errorf("element %d about %s expired at %d", i, st.Payload.Subject, st.Payload.Expiration)).
				WithIncorrectValue(st.Payload.Subject)
		}
	}

	return nil
}

// checkSignatures verifies each element with the keys of the next one, the last with the
// anchor keys, and returns the key used for every element.
func checkSignatures(anchor *Anchor, parsed []*ParsedStatement) ([]jose.JSONWebKey, error) {
	used := make([]jose.JSONWebKey, len(parsed))

	for i, st := range parsed {
		signerKeys := anchor.Keys()
		if i < len(parsed)-1 {
			signerKeys = parsed[i+1].Payload.JWKS.Keys
		}

		kid := st.Header.KeyID
		if kid == "" {
			return nil, walleterr.NewTrustChainVerificationError(walleterr.ReasonBadSignature,
				fmt.Errorf("element %d has no kid header", i))
		}

		key, ok := lo.Find(signerKeys, func(k jose.JSONWebKey) bool { return k.KeyID == kid })
		if !ok {
			return nil, walleterr.NewTrustChainVerificationError(walleterr.ReasonBadSignature,
				fmt.Errorf("element %d: kid %q not found in signer keys", i, kid)).WithIncorrectValue(kid)
		}

		if _, err := cryptoctx.VerifyWithKey(st.Raw, &key); err != nil {
			return nil, walleterr.NewTrustChainVerificationError(walleterr.ReasonBadSignature,
				fmt.Errorf("element %d: %w", i, err)).WithIncorrectValue(kid)
		}

		used[i] = key
	}

	return used, nil
}

func withElement(err error, i int) error {
	var werr *walleterr.Error
	if errors.As(err, &werr) {
		return werr.WithDetail("element", i)
	}

	return err
}

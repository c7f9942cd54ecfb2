/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mdoc

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	_ "crypto/sha256" // digest algorithms
	_ "crypto/sha512"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/veraison/go-cose"
)

// ErrExpired is returned when the MSO validity window does not include the current time.
var ErrExpired = errors.New("mso is not within its validity period")

type verifyOpts struct {
	now func() time.Time
}

// VerifyOpt configures Verify.
type VerifyOpt func(o *verifyOpts)

// WithCurrentTime overrides the clock used for certificate and validity checks.
func WithCurrentTime(now time.Time) VerifyOpt {
	return func(o *verifyOpts) {
		o.now = func() time.Time { return now }
	}
}

// Verify checks the issuerAuth signature with the x5chain leaf certificate, validates that
// certificate against root and checks every namespaced element against its value digest.
func (d *Document) Verify(root *x509.Certificate, opts ...VerifyOpt) error {
	o := &verifyOpts{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	if root == nil {
		return errors.New("no root certificate to validate the issuer chain")
	}

	chain, err := d.certificateChain()
	if err != nil {
		return err
	}

	now := o.now()

	intermediates := x509.NewCertPool()
	for _, c := range chain[1:] {
		intermediates.AddCert(c)
	}

	roots := x509.NewCertPool()
	roots.AddCert(root)

	if _, err = chain[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}); err != nil {
		return fmt.Errorf("validate issuer certificate: %w", err)
	}

	pub, ok := chain[0].PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("unsupported issuer key type %T", chain[0].PublicKey)
	}

	alg, err := d.IssuerAuth.Headers.Protected.Algorithm()
	if err != nil {
		return fmt.Errorf("issuerAuth algorithm: %w", err)
	}

	verifier, err := cose.NewVerifier(alg, pub)
	if err != nil {
		return fmt.Errorf("create cose verifier: %w", err)
	}

	if err = d.IssuerAuth.Verify(nil, verifier); err != nil {
		return fmt.Errorf("verify issuerAuth: %w", err)
	}

	if err = d.verifyDigests(); err != nil {
		return err
	}

	vi := d.MSO.ValidityInfo
	if (!vi.ValidFrom.IsZero() && now.Before(vi.ValidFrom)) || (!vi.ValidUntil.IsZero() && now.After(vi.ValidUntil)) {
		return fmt.Errorf("%w: valid from %s until %s", ErrExpired, vi.ValidFrom, vi.ValidUntil)
	}

	return nil
}

// IssuerCertificate returns the leaf of the x5chain header.
func (d *Document) IssuerCertificate() (*x509.Certificate, error) {
	chain, err := d.certificateChain()
	if err != nil {
		return nil, err
	}

	return chain[0], nil
}

func (d *Document) certificateChain() ([]*x509.Certificate, error) {
	raw, ok := headerValue(d.IssuerAuth.Headers.Unprotected, headerLabelX5Chain)
	if !ok {
		raw, ok = headerValue(d.IssuerAuth.Headers.Protected, headerLabelX5Chain)
	}

	if !ok {
		return nil, errors.New("issuerAuth has no x5chain header")
	}

	var ders [][]byte

	switch v := raw.(type) {
	case []byte:
		ders = append(ders, v)
	case []interface{}:
		for _, e := range v {
			der, ok := e.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected x5chain element %T", e)
			}

			ders = append(ders, der)
		}
	default:
		return nil, fmt.Errorf("unexpected x5chain header %T", raw)
	}

	if len(ders) == 0 {
		return nil, errors.New("empty x5chain header")
	}

	certs := make([]*x509.Certificate, 0, len(ders))

	for _, der := range ders {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parse x5chain certificate: %w", err)
		}

		certs = append(certs, c)
	}

	return certs, nil
}

func (d *Document) verifyDigests() error {
	var h crypto.Hash

	switch d.MSO.DigestAlgorithm {
	case "SHA-256":
		h = crypto.SHA256
	case "SHA-384":
		h = crypto.SHA384
	case "SHA-512":
		h = crypto.SHA512
	default:
		return fmt.Errorf("unsupported digest algorithm %q", d.MSO.DigestAlgorithm)
	}

	for ns, items := range d.NameSpaces {
		digests, ok := d.MSO.ValueDigests[ns]
		if !ok {
			return fmt.Errorf("no value digests for namespace %s", ns)
		}

		for _, item := range items {
			expected, ok := digests[item.DigestID]
			if !ok {
				return fmt.Errorf("no value digest for %s:%s", ns, item.ElementIdentifier)
			}

			hasher := h.New()
			hasher.Write(item.encoded)

			if !bytes.Equal(hasher.Sum(nil), expected) {
				return fmt.Errorf("value digest mismatch for %s:%s", ns, item.ElementIdentifier)
			}
		}
	}

	return nil
}

func headerValue(h map[interface{}]interface{}, label int64) (interface{}, bool) {
	if v, ok := h[label]; ok {
		return v, true
	}

	v, ok := h[int(label)]

	return v, ok
}

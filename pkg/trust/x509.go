/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const (
	defaultCRLConnectTimeout = 10000 * time.Millisecond
	defaultCRLReadTimeout    = 10000 * time.Millisecond
)

// CRLPolicy controls revocation checking of federation certificates.
type CRLPolicy struct {
	// RequireCRL fails validation when a distribution point cannot be fetched.
	RequireCRL     bool
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DefaultCRLPolicy requires reachable CRLs with 10s connect and read timeouts.
func DefaultCRLPolicy() CRLPolicy {
	return CRLPolicy{
		RequireCRL:     true,
		ConnectTimeout: defaultCRLConnectTimeout,
		ReadTimeout:    defaultCRLReadTimeout,
	}
}

// newCRLClient returns an HTTP client bounded by the policy timeouts.
func newCRLClient(policy CRLPolicy) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: policy.ConnectTimeout}).DialContext,
			ResponseHeaderTimeout: policy.ReadTimeout,
		},
	}
}

// boundedClient applies the policy timeouts to an injected client. The exchange, body included,
// must complete within the sum of the connect and read timeouts.
type boundedClient struct {
	client  HTTPClient
	timeout time.Duration
}

func newBoundedClient(client HTTPClient, policy CRLPolicy) HTTPClient {
	timeout := policy.ConnectTimeout + policy.ReadTimeout
	if timeout <= 0 {
		return client
	}

	return &boundedClient{client: client, timeout: timeout}
}

func (c *boundedClient) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)

	resp, err := c.client.Do(req.WithContext(ctx))
	if err != nil {
		cancel()

		return nil, err
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	defer b.cancel()

	return b.ReadCloser.Close()
}

type certificateValidator struct {
	policy     CRLPolicy
	httpClient HTTPClient
	now        func() time.Time
}

// validate checks that certs chains up to root and that no certificate in it is revoked.
func (v *certificateValidator) validate(ctx context.Context, certs []*x509.Certificate, root *x509.Certificate) error {
	if len(certs) == 0 {
		return walleterr.NewTrustChainVerificationError(walleterr.ReasonInvalidCertificate,
			fmt.Errorf("missing x5c certificate chain"))
	}

	if len(certs) > 1 && certs[len(certs)-1].Equal(root) {
		certs = certs[:len(certs)-1]
	}

	if len(certs) == 1 && certs[0].Equal(root) {
		return nil
	}

	roots := x509.NewCertPool()
	roots.AddCert(root)

	intermediates := x509.NewCertPool()
	for _, c := range certs[1:] {
		intermediates.AddCert(c)
	}

	verified, err := certs[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   v.now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return walleterr.NewTrustChainVerificationError(walleterr.ReasonInvalidCertificate,
			fmt.Errorf("verify certificate chain: %w", err)).WithIncorrectValue(certs[0].Subject.String())
	}

	path := verified[0]

	for i := 0; i < len(path)-1; i++ {
		if err = v.checkRevocation(ctx, path[i], path[i+1]); err != nil {
			return err
		}
	}

	return nil
}

func (v *certificateValidator) checkRevocation(ctx context.Context, cert, issuer *x509.Certificate) error {
	if len(cert.CRLDistributionPoints) == 0 {
		logger.Warn("Certificate has no CRL distribution point, revocation not checked",
			logfields.WithCertificateSubject(cert.Subject.String()))

		return nil
	}

	for _, dp := range cert.CRLDistributionPoints {
		crl, err := v.fetchCRL(ctx, dp, issuer)
		if err != nil {
			if v.policy.RequireCRL {
				return walleterr.NewTrustChainVerificationError(walleterr.ReasonCRLUnreachable, err).WithURL(dp)
			}

			logger.Warn("CRL unavailable, revocation not checked", log.WithURL(dp), log.WithError(err))

			continue
		}

		for _, entry := range crl.RevokedCertificateEntries {
			if entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				return walleterr.NewTrustChainVerificationError(walleterr.ReasonCertificateRevoked,
					fmt.Errorf("certificate %s revoked at %s", cert.SerialNumber, entry.RevocationTime)).
					WithURL(dp).
					WithIncorrectValue(cert.Subject.String())
			}
		}
	}

	return nil
}

func (v *certificateValidator) fetchCRL(ctx context.Context, dp string, issuer *x509.Certificate) (*x509.RevocationList,
	error) {
	raw, err := httputil.Get(ctx, v.httpClient, dp, "application/pkix-crl")
	if err != nil {
		return nil, fmt.Errorf("fetch crl: %w", err)
	}

	crl, err := x509.ParseRevocationList(raw)
	if err != nil {
		return nil, fmt.Errorf("parse crl: %w", err)
	}

	if err = crl.CheckSignatureFrom(issuer); err != nil {
		return nil, fmt.Errorf("crl signature: %w", err)
	}

	return crl, nil
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package status obtains and verifies the revocation status of issued credentials, either by
// status assertion or from the token status list the credential references.
package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/mdoc"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/sdjwt"
	"github.com/trustbloc/iowallet/pkg/statuslist"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-status")

// API gives access to the status of a credential. Every protocol version implements it;
// operations a version does not support fail with an UnimplementedFeatureError.
type API interface {
	GetStatusAssertion(ctx context.Context, conf *issuer.Config, credential, format string,
		sc Context) (string, error)
	VerifyAndParseStatusAssertion(conf *issuer.Config, statusAssertion, credential,
		format string) (*ParsedStatusAssertion, error)
	GetStatusFromTokenStatusList(ctx context.Context, conf *issuer.Config, credential,
		format string) (int, error)
}

// Context holds the keys a status assertion request is signed with.
type Context struct {
	CredentialCryptoContext cryptoctx.Context
	WIACryptoContext        cryptoctx.Context
}

// Opt configures Service.
type Opt func(s *Service)

// WithClock overrides the time source used for token claims.
func WithClock(now func() time.Time) Opt {
	return func(s *Service) { s.now = now }
}

// Service implements API.
type Service struct {
	version       protocol.Version
	httpClient    httputil.Client
	statusChecker *statuslist.Checker
	now           func() time.Time
}

// New returns the status API of version.
func New(version protocol.Version, httpClient httputil.Client, opts ...Opt) (API, error) {
	if _, err := protocol.ParseVersion(version.String()); err != nil {
		return nil, err
	}

	s := &Service{
		version:       version,
		httpClient:    httpClient,
		statusChecker: statuslist.NewChecker(httpClient),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// GetStatusFromTokenStatusList reads the entry of the token status list the credential
// references. The credential must be signed by the issuer.
func (s *Service) GetStatusFromTokenStatusList(
	ctx context.Context,
	conf *issuer.Config,
	credential, format string,
) (int, error) {
	if s.version == protocol.V1_0_0 {
		return 0, walleterr.NewUnimplementedFeatureError("status.GetStatusFromTokenStatusList", s.version.String())
	}

	ref, err := statusListReference(conf, credential, format)
	if err != nil {
		return 0, err
	}

	return s.statusChecker.Status(ctx, ref, conf.SigningKeys())
}

func statusListReference(conf *issuer.Config, credential, format string) (*statuslist.Reference, error) {
	switch format {
	case issuer.FormatSDJWT, issuer.FormatLegacySDJWT:
		cred, err := sdjwt.Verify(credential, conf.SigningKeys())
		if err != nil {
			return nil, validationError(fmt.Errorf("verify credential: %w", err))
		}

		ref, ok := statuslist.ReferenceFromClaims(cred.Claims)
		if !ok {
			return nil, validationError(errors.New("credential does not reference a status list"))
		}

		return ref, nil
	case issuer.FormatMDoc:
		doc, err := mdoc.Parse(credential)
		if err != nil {
			return nil, validationError(err)
		}

		uri, idx, ok := doc.StatusListReference()
		if !ok {
			return nil, validationError(errors.New("credential does not reference a status list"))
		}

		return &statuslist.Reference{URI: uri, Idx: idx}, nil
	default:
		return nil, unsupportedFormat(format)
	}
}

// holderKey returns the key credential is bound to.
func holderKey(credential, format string) (*jose.JSONWebKey, error) {
	switch format {
	case issuer.FormatSDJWT, issuer.FormatLegacySDJWT:
		cred, err := sdjwt.Parse(credential)
		if err != nil {
			return nil, validationError(err)
		}

		return cred.ConfirmationKey()
	case issuer.FormatMDoc:
		doc, err := mdoc.Parse(credential)
		if err != nil {
			return nil, validationError(err)
		}

		return doc.DeviceKey()
	default:
		return nil, unsupportedFormat(format)
	}
}

// credentialHash hashes the issuer signed part of credential, disclosures excluded.
func credentialHash(credential string) string {
	signed, _, _ := strings.Cut(credential, "~")

	return cryptoctx.SHA256Base64URL(signed)
}

func validationError(err error) error {
	return walleterr.NewValidationError(err).WithComponent(walleterr.StatusComponent)
}

func unsupportedFormat(format string) error {
	return walleterr.NewConfigurationError(walleterr.ReasonUnsupportedCredential,
		fmt.Errorf("unsupported credential format %q", format)).
		WithComponent(walleterr.StatusComponent).
		WithIncorrectValue(format)
}

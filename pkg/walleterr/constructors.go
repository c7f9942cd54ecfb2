/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walleterr

import (
	"errors"
	"fmt"
)

func NewTrustChainResolutionError(reason Reason, err error) *Error {
	return New(TrustChainResolution, err).WithReason(reason).WithComponent(TrustResolverComponent)
}

func NewTrustChainVerificationError(reason Reason, err error) *Error {
	return New(TrustChainVerification, err).WithReason(reason).WithComponent(TrustVerifierComponent)
}

func NewAuthorizationError(reason Reason, err error) *Error {
	return New(Authorization, err).WithReason(reason).WithComponent(AuthorizationComponent)
}

// NewAuthorizationIdpError reports an error returned by the identity provider in the
// authorization response.
func NewAuthorizationIdpError(code, description string) *Error {
	return New(AuthorizationIdp, fmt.Errorf("%s", description)).
		WithReason(Reason(code)).
		WithComponent(AuthorizationComponent)
}

// NewOperationAbortedError reports that the caller cancelled the named operation.
func NewOperationAbortedError(operation string, cause error) *Error {
	if cause == nil {
		cause = errors.New("operation aborted")
	}

	return New(OperationAborted, cause).WithOperation(operation)
}

func NewIssuerResponseError(code Reason, httpStatus int, err error) *Error {
	return New(IssuerResponse, err).WithReason(code).WithHTTPStatusField(httpStatus)
}

// NewUnexpectedStatusCodeError reports a non expected HTTP status; body is kept as a detail.
func NewUnexpectedStatusCodeError(url string, status int, body string) *Error {
	e := New(UnexpectedStatusCode, fmt.Errorf("unexpected status code %d", status)).
		WithURL(url).
		WithHTTPStatusField(status)

	if body != "" {
		e.WithDetail("body", body)
	}

	return e
}

func NewInvalidCredentialOfferError(err error) *Error {
	return New(InvalidCredentialOffer, err).WithComponent(CredentialOfferComponent)
}

func NewInvalidQRCodeError(err error) *Error {
	return New(InvalidQRCode, err).WithComponent(CredentialOfferComponent)
}

// NewUnimplementedFeatureError reports an operation that the selected protocol version does not offer.
func NewUnimplementedFeatureError(feature, version string) *Error {
	return New(UnimplementedFeature, fmt.Errorf("%s is not implemented in version %s", feature, version)).
		WithOperation(feature).
		WithComponent(DispatcherComponent)
}

func NewConfigurationError(reason Reason, err error) *Error {
	return New(Configuration, err).WithReason(reason)
}

// NewHolderBindingError reports a thumbprint mismatch between an attestation and a key.
func NewHolderBindingError(expected, got string) *Error {
	return New(HolderBinding,
		fmt.Errorf("holder binding failed, expected thumbprint: %s, got: %s", expected, got))
}

func NewValidationError(err error) *Error {
	return New(Validation, err)
}

// StatusHandler describes how an unexpected HTTP status maps onto an issuer error.
type StatusHandler struct {
	Code    Reason
	Message string
}

// IssuerErrorMapper converts UnexpectedStatusCode errors into IssuerResponse errors.
type IssuerErrorMapper struct {
	byStatus map[int]StatusHandler
	fallback *StatusHandler
}

// NewIssuerErrorMapper creates an empty mapper.
func NewIssuerErrorMapper() *IssuerErrorMapper {
	return &IssuerErrorMapper{byStatus: map[int]StatusHandler{}}
}

// Handle registers a handler for a status code.
func (m *IssuerErrorMapper) Handle(status int, h StatusHandler) *IssuerErrorMapper {
	m.byStatus[status] = h

	return m
}

// HandleAny registers the handler used for statuses without a specific handler.
func (m *IssuerErrorMapper) HandleAny(h StatusHandler) *IssuerErrorMapper {
	m.fallback = &h

	return m
}

// Map returns err unchanged unless it is an UnexpectedStatusCode error with a matching handler.
func (m *IssuerErrorMapper) Map(err error) error {
	var e *Error
	if !errors.As(err, &e) || e.Kind != UnexpectedStatusCode {
		return err
	}

	h, ok := m.byStatus[e.HTTPStatus]
	if !ok {
		if m.fallback == nil {
			return err
		}

		h = *m.fallback
	}

	mapped := NewIssuerResponseError(h.Code, e.HTTPStatus, fmt.Errorf("%s: %w", h.Message, err)).WithURL(e.URL)
	if body, ok := e.Details["body"]; ok {
		mapped.WithDetail("body", body)
	}

	return mapped
}

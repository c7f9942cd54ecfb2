/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walleterr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of a wallet error surfaced to callers.
type Kind string

const (
	TrustChainResolution   Kind = "TrustChainResolutionError"
	TrustChainVerification Kind = "TrustChainVerificationError"
	Authorization          Kind = "AuthorizationError"
	AuthorizationIdp       Kind = "AuthorizationIdpError"
	OperationAborted       Kind = "OperationAbortedError"
	IssuerResponse         Kind = "IssuerResponseError"
	UnexpectedStatusCode   Kind = "UnexpectedStatusCodeError"
	InvalidCredentialOffer Kind = "InvalidCredentialOfferError"
	InvalidQRCode          Kind = "InvalidQRCodeError"
	UnimplementedFeature   Kind = "UnimplementedFeatureError"
	Configuration          Kind = "ConfigurationError"
	HolderBinding          Kind = "HolderBindingError"
	Validation             Kind = "ValidationError"
)

// Error is a categorized wallet error. Reason narrows the kind down to a sub-cause
// (for example an expired statement) or carries the issuer error code.
type Error struct {
	Kind           Kind
	Reason         Reason
	ErrorComponent Component
	Operation      string
	IncorrectValue string
	URL            string
	HTTPStatus     int
	Details        map[string]interface{}
	Err            error
}

// errorJSON is a helper struct for JSON encoding/decoding of Error.
type errorJSON struct {
	Kind            Kind                   `json:"error"`
	Reason          Reason                 `json:"reason,omitempty"`
	Component       Component              `json:"component,omitempty"`
	Operation       string                 `json:"operation,omitempty"`
	IncorrectValue  string                 `json:"incorrect_value,omitempty"`
	URL             string                 `json:"url,omitempty"`
	HTTPStatusField int                    `json:"http_status,omitempty"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Description     string                 `json:"error_description,omitempty"`
}

// New creates an error of the given kind wrapping err.
func New(kind Kind, err error) *Error {
	if err == nil {
		err = errors.New(string(kind))
	}

	return &Error{Kind: kind, Err: err}
}

// Newf creates an error of the given kind with a formatted description.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Errorf(format, args...))
}

func (e *Error) MarshalJSON() ([]byte, error) {
	description := ""
	if e.Err != nil {
		description = e.Err.Error()
	}

	return json.Marshal(&errorJSON{
		Kind:            e.Kind,
		Reason:          e.Reason,
		Component:       e.ErrorComponent,
		Operation:       e.Operation,
		IncorrectValue:  e.IncorrectValue,
		URL:             e.URL,
		HTTPStatusField: e.HTTPStatus,
		Details:         e.Details,
		Description:     description,
	})
}

func (e *Error) UnmarshalJSON(b []byte) error {
	var data errorJSON

	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}

	e.Kind = data.Kind
	e.Reason = data.Reason
	e.ErrorComponent = data.Component
	e.Operation = data.Operation
	e.IncorrectValue = data.IncorrectValue
	e.URL = data.URL
	e.HTTPStatus = data.HTTPStatusField
	e.Details = data.Details
	e.Err = errors.New(data.Description)

	return nil
}

func (e *Error) Error() string {
	var description []string

	if e.Reason != "" {
		description = append(description, fmt.Sprintf("reason: %s", e.Reason))
	}

	if e.ErrorComponent != "" {
		description = append(description, fmt.Sprintf("component: %s", e.ErrorComponent))
	}

	if e.Operation != "" {
		description = append(description, fmt.Sprintf("operation: %s", e.Operation))
	}

	if e.IncorrectValue != "" {
		description = append(description, fmt.Sprintf("incorrect value: %s", e.IncorrectValue))
	}

	if e.URL != "" {
		description = append(description, fmt.Sprintf("url: %s", e.URL))
	}

	if e.HTTPStatus != 0 {
		description = append(description, fmt.Sprintf("http status: %d", e.HTTPStatus))
	}

	return fmt.Sprintf("%s[%s]: %v", e.Kind, strings.Join(description, "; "), e.Err)
}

// Is reports whether target is an *Error of the same kind. A target with a reason
// only matches errors carrying that reason.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	if t.Kind != e.Kind {
		return false
	}

	return t.Reason == "" || t.Reason == e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) WithReason(reason Reason) *Error {
	e.Reason = reason

	return e
}

func (e *Error) WithComponent(component Component) *Error {
	e.ErrorComponent = component

	return e
}

func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation

	return e
}

func (e *Error) WithIncorrectValue(incorrectValue string) *Error {
	e.IncorrectValue = incorrectValue

	return e
}

func (e *Error) WithURL(url string) *Error {
	e.URL = url

	return e
}

func (e *Error) WithHTTPStatusField(httpStatus int) *Error {
	e.HTTPStatus = httpStatus

	return e
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}

	e.Details[key] = value

	return e
}

func (e *Error) WithErrorPrefix(errPrefix string) *Error {
	e.Err = fmt.Errorf("%s: %w", errPrefix, e.Err)

	return e
}

func (e *Error) Code() string {
	return string(e.Kind)
}

func (e *Error) Component() string {
	return string(e.ErrorComponent)
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return "", false
}

// ReasonOf returns the reason of the first *Error found in err's chain.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}

	return ""
}

// IsKind reports whether err carries a wallet error of the given kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

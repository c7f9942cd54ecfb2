/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walleterr

// Reason narrows an error kind to a specific sub-cause.
type Reason string

// Trust chain resolution.
const (
	ReasonUnreachable            Reason = "unreachable"
	ReasonCyclicChain            Reason = "cyclic_chain"
	ReasonHopLimitExceeded       Reason = "hop_limit_exceeded"
	ReasonMissingFetchEndpoint   Reason = "missing_fetch_endpoint"
	ReasonAnchorNotReached       Reason = "anchor_not_reached"
	ReasonInvalidStatement       Reason = "invalid_statement"
	ReasonRelyingPartyNotAllowed Reason = "relying_party_not_authorized"
)

// Trust chain verification.
const (
	ReasonExpired            Reason = "expired"
	ReasonBrokenLink         Reason = "broken_link"
	ReasonBadSignature       Reason = "bad_signature"
	ReasonCRLUnreachable     Reason = "crl_unreachable"
	ReasonCertificateRevoked Reason = "certificate_revoked"
	ReasonInvalidCertificate Reason = "invalid_certificate"
	ReasonEmptyChain         Reason = "empty_chain"
	ReasonPolicyViolation    Reason = "metadata_policy_violation"
)

// Issuer response codes.
const (
	IssuerGenericError              Reason = "ERR_ISSUER_GENERIC_ERROR"
	CredentialIssuingNotSynchronous Reason = "ERR_CREDENTIAL_ISSUING_NOT_SYNCHRONOUS"
	CredentialRequestFailed         Reason = "ERR_CREDENTIAL_REQUEST_FAILED"
	CredentialInvalidStatus         Reason = "ERR_CREDENTIAL_INVALID_STATUS"
	StatusAttestationRequestFailed  Reason = "ERR_STATUS_ATTESTATION_REQUEST_FAILED"
)

// Configuration.
const (
	ReasonIncompatibleResponseModes Reason = "incompatible_response_modes"
	ReasonConfigurationMismatch     Reason = "configuration_mismatch"
	ReasonUnsupportedCredential     Reason = "unsupported_credential"
	ReasonGatedOption               Reason = "gated_option"
	ReasonMissingTrustAnchor        Reason = "missing_trust_anchor"
)

// Authorization.
const (
	ReasonMissingCode     Reason = "missing_code"
	ReasonTimeout         Reason = "timeout"
	ReasonStateMismatch   Reason = "state_mismatch"
	ReasonInvalidResponse Reason = "invalid_response"
)

// Component names the part of the engine that raised an error.
type Component string

const (
	TrustResolverComponent      Component = "trust.resolver"
	TrustVerifierComponent      Component = "trust.verifier"
	IssuerEvaluatorComponent    Component = "issuer.evaluator"
	AuthorizationComponent      Component = "issuance.authorization"
	TokenComponent              Component = "issuance.token"
	CredentialComponent         Component = "issuance.credential"
	CredentialVerifierComponent Component = "issuance.verifier"
	CredentialOfferComponent    Component = "credential-offer"
	RedirectComponent           Component = "redirect-waiter"
	StatusComponent             Component = "credential-status"
	TrustmarkComponent          Component = "trustmark"
	DispatcherComponent         Component = "wallet"
	CryptoComponent             Component = "crypto"
)

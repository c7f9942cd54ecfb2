/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logfields

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log Fields.
const (
	FieldAuthorizationDetails      = "authorizationDetails"
	FieldCertificateSubject        = "certificateSubject"
	FieldChainLength               = "chainLength"
	FieldClaimKeys                 = "claimKeys"
	FieldClientID                  = "clientID"
	FieldCommand                   = "command"
	FieldCredentialConfigurationID = "credentialConfigurationID"
	FieldCredentialFormat          = "credentialFormat"
	FieldCredentialIssuer          = "credentialIssuer"
	FieldDisclosureCount           = "disclosureCount"
	FieldEntityID                  = "entityID"
	FieldGrantType                 = "grantType"
	FieldKeyTag                    = "keyTag"
	FieldProtocolVersion           = "protocolVersion"
	FieldRequestURI                = "requestURI"
	FieldResponseMode              = "responseMode"
	FieldStatusIndex               = "statusIndex"
	FieldThumbprint                = "thumbprint"
	FieldTimeout                   = "timeout"
	FieldTrustAnchor               = "trustAnchor"
	FieldUserLogLevel              = "userLogLevel"
)

// WithAuthorizationDetails sets the AuthorizationDetails field.
func WithAuthorizationDetails(value interface{}) zap.Field {
	return zap.Inline(NewObjectMarshaller(FieldAuthorizationDetails, value))
}

// WithCertificateSubject sets the CertificateSubject field.
func WithCertificateSubject(subject string) zap.Field {
	return zap.String(FieldCertificateSubject, subject)
}

// WithChainLength sets the ChainLength field.
func WithChainLength(length int) zap.Field {
	return zap.Int(FieldChainLength, length)
}

// WithClaimKeys sets the ClaimKeys field.
func WithClaimKeys(claimKeys []string) zap.Field {
	return zap.Strings(FieldClaimKeys, claimKeys)
}

// WithClientID sets the ClientID field.
func WithClientID(clientID string) zap.Field {
	return zap.String(FieldClientID, clientID)
}

// WithCommand sets the Command field.
func WithCommand(command string) zap.Field {
	return zap.String(FieldCommand, command)
}

// WithCredentialConfigurationID sets the CredentialConfigurationID field.
func WithCredentialConfigurationID(id string) zap.Field {
	return zap.String(FieldCredentialConfigurationID, id)
}

// WithCredentialFormat sets the CredentialFormat field.
func WithCredentialFormat(format string) zap.Field {
	return zap.String(FieldCredentialFormat, format)
}

// WithCredentialIssuer sets the CredentialIssuer field.
func WithCredentialIssuer(issuer string) zap.Field {
	return zap.String(FieldCredentialIssuer, issuer)
}

// WithDisclosureCount sets the DisclosureCount field.
func WithDisclosureCount(count int) zap.Field {
	return zap.Int(FieldDisclosureCount, count)
}

// WithEntityID sets the EntityID (federation entity identifier) field.
func WithEntityID(entityID string) zap.Field {
	return zap.String(FieldEntityID, entityID)
}

// WithGrantType sets the GrantType field.
func WithGrantType(grantType string) zap.Field {
	return zap.String(FieldGrantType, grantType)
}

// WithKeyTag sets the KeyTag field.
func WithKeyTag(tag string) zap.Field {
	return zap.String(FieldKeyTag, tag)
}

// WithProtocolVersion sets the ProtocolVersion field.
func WithProtocolVersion(version string) zap.Field {
	return zap.String(FieldProtocolVersion, version)
}

// WithRequestURI sets the RequestURI field.
func WithRequestURI(requestURI string) zap.Field {
	return zap.String(FieldRequestURI, requestURI)
}

// WithResponseMode sets the ResponseMode field.
func WithResponseMode(mode string) zap.Field {
	return zap.String(FieldResponseMode, mode)
}

// WithStatusIndex sets the StatusIndex field.
func WithStatusIndex(idx int) zap.Field {
	return zap.Int(FieldStatusIndex, idx)
}

// WithThumbprint sets the Thumbprint field.
func WithThumbprint(thumbprint string) zap.Field {
	return zap.String(FieldThumbprint, thumbprint)
}

// WithTimeout sets the Timeout field.
func WithTimeout(timeout time.Duration) zap.Field {
	return zap.Duration(FieldTimeout, timeout)
}

// WithTrustAnchor sets the TrustAnchor field.
func WithTrustAnchor(anchor string) zap.Field {
	return zap.String(FieldTrustAnchor, anchor)
}

// WithUserLogLevel sets the UserLogLevel field.
func WithUserLogLevel(logLevel string) zap.Field {
	return zap.String(FieldUserLogLevel, logLevel)
}

// ObjectMarshaller uses reflection to marshal an object's fields.
type ObjectMarshaller struct {
	key string
	obj interface{}
}

// NewObjectMarshaller returns a new ObjectMarshaller.
func NewObjectMarshaller(key string, obj interface{}) *ObjectMarshaller {
	return &ObjectMarshaller{key: key, obj: obj}
}

// MarshalLogObject marshals the object's fields.
func (m *ObjectMarshaller) MarshalLogObject(e zapcore.ObjectEncoder) error {
	return e.AddReflected(m.key, m.obj)
}

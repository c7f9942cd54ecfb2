/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/mdoc"
	"github.com/trustbloc/iowallet/pkg/sdjwt"
	"github.com/trustbloc/iowallet/pkg/statuslist"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const (
	mdocNamespace      = "org.iso.18013.5.1"
	mdocExpiryElement  = "expiry_date"
	mdocFullDateLayout = "2006-01-02"
)

// VerifyContext tunes credential verification. IgnoreMissingAttributes is only accepted by a
// Service created WithTestCatalogMode.
type VerifyContext struct {
	CredentialCryptoContext    cryptoctx.Context
	IgnoreMissingAttributes    bool
	IncludeUndefinedAttributes bool
}

// DisplayName is a claim label: localized names keyed by locale, or the plain claim key when
// the issuer declares no display for the claim.
type DisplayName struct {
	Localized map[string]string
	Plain     string
}

func (n DisplayName) MarshalJSON() ([]byte, error) {
	if n.Localized != nil {
		return json.Marshal(n.Localized)
	}

	return json.Marshal(n.Plain)
}

// ParsedClaim is a claim with its display name. Nested objects are ParsedCredential values,
// arrays hold the projected elements.
type ParsedClaim struct {
	Name  DisplayName `json:"name"`
	Value interface{} `json:"value"`
}

// ParsedCredential maps claim keys to their projection.
type ParsedCredential map[string]ParsedClaim

// VerifiedCredential is a credential that passed verification.
type VerifiedCredential struct {
	Parsed          ParsedCredential `json:"parsedCredential"`
	IssuedAt        time.Time        `json:"issuedAt,omitempty"`
	Expiration      time.Time        `json:"expiration"`
	Format          string           `json:"format"`
	ConfigurationID string           `json:"credentialConfigurationId"`
	CredentialType  string           `json:"credentialType"`
}

// VerifyAndParseCredential verifies credential against the issuer keys (SD-JWT) or the x509
// root (mdoc), checks it is bound to the credential key and projects its claims with the
// display names of the configuration.
func (s *Service) VerifyAndParseCredential(
	ctx context.Context,
	conf *issuer.Config,
	credential, configID string,
	vc VerifyContext,
	x509Root *x509.Certificate,
) (*VerifiedCredential, error) {
	if vc.IgnoreMissingAttributes && !s.testCatalogMode {
		return nil, walleterr.NewConfigurationError(walleterr.ReasonGatedOption,
			errors.New("ignoring missing attributes requires test catalog mode")).
			WithComponent(walleterr.CredentialVerifierComponent).
			WithIncorrectValue("IgnoreMissingAttributes")
	}

	credConf, err := conf.CredentialConfiguration(configID)
	if err != nil {
		return nil, err
	}

	holderKey, err := vc.CredentialCryptoContext.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("get credential key: %w", err)
	}

	var verified *VerifiedCredential

	switch {
	case credConf.IsSDJWT():
		verified, err = s.verifySDJWT(ctx, conf, credConf, credential, holderKey, vc)
	case credConf.Format == issuer.FormatMDoc:
		verified, err = s.verifyMDoc(ctx, conf, credConf, credential, holderKey, vc, x509Root)
	default:
		return nil, walleterr.NewConfigurationError(walleterr.ReasonUnsupportedCredential,
			fmt.Errorf("unsupported credential format %q", credConf.Format)).
			WithComponent(walleterr.CredentialVerifierComponent).
			WithIncorrectValue(credConf.Format)
	}

	if err != nil {
		return nil, err
	}

	verified.Format = credConf.Format
	verified.ConfigurationID = configID

	logger.Debug("Credential verified",
		logfields.WithCredentialConfigurationID(configID),
		logfields.WithCredentialFormat(credConf.Format),
		logfields.WithClaimKeys(lo.Keys(verified.Parsed)))

	return verified, nil
}

func (s *Service) verifySDJWT(
	ctx context.Context,
	conf *issuer.Config,
	credConf *issuer.CredentialConfiguration,
	credential string,
	holderKey *jose.JSONWebKey,
	vc VerifyContext,
) (*VerifiedCredential, error) {
	cred, err := sdjwt.Verify(credential, conf.SigningKeys())
	if err != nil {
		return nil, verificationError(err)
	}

	if credConf.VCT != "" && cred.VCT() != credConf.VCT {
		return nil, verificationError(fmt.Errorf("vct %q does not match %q", cred.VCT(), credConf.VCT))
	}

	cnf, err := cred.ConfirmationKey()
	if err != nil {
		return nil, verificationError(err)
	}

	if err = checkHolderBinding(cnf, holderKey); err != nil {
		return nil, err
	}

	if !vc.IgnoreMissingAttributes {
		if err = checkRootClaims(credConf, cred.Claims); err != nil {
			return nil, err
		}
	}

	exp, err := cred.Expiration()
	if err != nil {
		return nil, verificationError(err)
	}

	if ref, ok := statuslist.ReferenceFromClaims(cred.Claims); ok {
		if err = s.checkStatus(ctx, ref, conf.SigningKeys()); err != nil {
			return nil, err
		}
	}

	p := &projector{claims: credConf.Claims, includeUndefined: vc.IncludeUndefinedAttributes}

	return &VerifiedCredential{
		Parsed:         p.object(cred.Claims, nil),
		IssuedAt:       cred.IssuedAt(),
		Expiration:     exp,
		CredentialType: cred.VCT(),
	}, nil
}

func (s *Service) verifyMDoc(
	ctx context.Context,
	conf *issuer.Config,
	credConf *issuer.CredentialConfiguration,
	credential string,
	holderKey *jose.JSONWebKey,
	vc VerifyContext,
	x509Root *x509.Certificate,
) (*VerifiedCredential, error) {
	if x509Root == nil {
		return nil, walleterr.NewConfigurationError(walleterr.ReasonMissingTrustAnchor,
			errors.New("missing x509 root certificate for mdoc verification")).
			WithComponent(walleterr.CredentialVerifierComponent)
	}

	doc, err := mdoc.Parse(credential)
	if err != nil {
		return nil, verificationError(err)
	}

	if err = doc.Verify(x509Root, mdoc.WithCurrentTime(s.now())); err != nil {
		return nil, verificationError(err)
	}

	if credConf.DocType != "" && doc.DocType() != credConf.DocType {
		return nil, verificationError(fmt.Errorf("doctype %q does not match %q", doc.DocType(), credConf.DocType))
	}

	deviceKey, err := doc.DeviceKey()
	if err != nil {
		return nil, verificationError(err)
	}

	if err = checkHolderBinding(deviceKey, holderKey); err != nil {
		return nil, err
	}

	claims := doc.Claims()

	if !vc.IgnoreMissingAttributes {
		if err = checkNamespaceClaims(credConf, claims); err != nil {
			return nil, err
		}
	}

	if uri, idx, ok := doc.StatusListReference(); ok {
		if err = s.checkStatus(ctx, &statuslist.Reference{URI: uri, Idx: idx}, conf.SigningKeys()); err != nil {
			return nil, err
		}
	}

	parsed := ParsedCredential{}

	for i := range credConf.Claims {
		claim := &credConf.Claims[i]

		ns, elem, ok := namespaceClaimPath(claim.Path)
		if !ok {
			continue
		}

		value, found := claims[ns][elem]
		if !found {
			continue
		}

		parsed[ns+":"+elem] = ParsedClaim{Name: displayName(claim, elem), Value: value}
	}

	if vc.IncludeUndefinedAttributes {
		for ns, elems := range claims {
			for elem, value := range elems {
				key := ns + ":" + elem
				if _, ok := parsed[key]; !ok {
					parsed[key] = ParsedClaim{Name: DisplayName{Plain: key}, Value: value}
				}
			}
		}
	}

	return &VerifiedCredential{
		Parsed:         parsed,
		IssuedAt:       doc.MSO.ValidityInfo.Signed,
		Expiration:     mdocExpiration(doc, claims),
		CredentialType: doc.DocType(),
	}, nil
}

func (s *Service) checkStatus(ctx context.Context, ref *statuslist.Reference, keys []jose.JSONWebKey) error {
	if s.statusChecker == nil {
		logger.Debug("Status list check disabled", log.WithURL(ref.URI))

		return nil
	}

	return s.statusChecker.Check(ctx, ref, keys)
}

func mdocExpiration(doc *mdoc.Document, claims map[string]map[string]interface{}) time.Time {
	if raw, ok := claims[mdocNamespace][mdocExpiryElement].(string); ok {
		if t, err := time.Parse(mdocFullDateLayout, raw); err == nil {
			return t
		}

		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}

	return doc.MSO.ValidityInfo.ValidUntil
}

func checkHolderBinding(bound, holder *jose.JSONWebKey) error {
	same, expected, got, err := cryptoctx.SameThumbprint(holder, bound)
	if err != nil {
		return verificationError(err)
	}

	if !same {
		return walleterr.NewHolderBindingError(expected, got).WithComponent(walleterr.CredentialVerifierComponent)
	}

	return nil
}

func verificationError(err error) error {
	return walleterr.NewValidationError(err).WithComponent(walleterr.CredentialVerifierComponent)
}

func missingAttributesError(missing, received []string) error {
	sort.Strings(received)

	return walleterr.NewValidationError(fmt.Errorf(
		"Some attributes are missing in the credential. Missing: [%s], received: [%s]", //nolint:stylecheck
		strings.Join(missing, ", "), strings.Join(received, ", "))).
		WithComponent(walleterr.CredentialVerifierComponent)
}

// checkRootClaims requires every top-level claim declared by the configuration.
func checkRootClaims(credConf *issuer.CredentialConfiguration, claims map[string]interface{}) error {
	declared := lo.Uniq(lo.FilterMap(credConf.Claims, func(c issuer.Claim, _ int) (string, bool) {
		if len(c.Path) == 0 {
			return "", false
		}

		key, ok := c.Path[0].(string)

		return key, ok
	}))

	missing := lo.Filter(declared, func(key string, _ int) bool {
		_, ok := claims[key]

		return !ok
	})

	if len(missing) > 0 {
		return missingAttributesError(missing, lo.Keys(claims))
	}

	return nil
}

func checkNamespaceClaims(credConf *issuer.CredentialConfiguration, claims map[string]map[string]interface{}) error {
	var missing []string

	for _, c := range credConf.Claims {
		ns, elem, ok := namespaceClaimPath(c.Path)
		if !ok {
			continue
		}

		if _, found := claims[ns][elem]; !found {
			missing = append(missing, ns+":"+elem)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	var received []string

	for ns, elems := range claims {
		for elem := range elems {
			received = append(received, ns+":"+elem)
		}
	}

	return missingAttributesError(missing, received)
}

func namespaceClaimPath(path []interface{}) (string, string, bool) {
	if len(path) != 2 {
		return "", "", false
	}

	ns, ok := path[0].(string)
	if !ok {
		return "", "", false
	}

	elem, ok := path[1].(string)

	return ns, elem, ok
}

func displayName(claim *issuer.Claim, key string) DisplayName {
	if claim == nil || len(claim.Display) == 0 {
		return DisplayName{Plain: key}
	}

	return DisplayName{Localized: lo.SliceToMap(claim.Display, func(d issuer.Display) (string, string) {
		return d.Locale, d.Name
	})}
}

// projector walks SD-JWT claims along the claim paths of a configuration.
type projector struct {
	claims           []issuer.Claim
	includeUndefined bool
}

func (p *projector) value(v interface{}, path []interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return p.object(t, path)
	case []interface{}:
		itemPath := append(append([]interface{}{}, path...), nil)

		return lo.Map(t, func(item interface{}, _ int) interface{} {
			return p.value(item, itemPath)
		})
	default:
		return v
	}
}

func (p *projector) object(obj map[string]interface{}, path []interface{}) ParsedCredential {
	out := ParsedCredential{}

	for _, key := range p.childKeys(path) {
		v, ok := obj[key]
		if !ok {
			continue
		}

		childPath := append(append([]interface{}{}, path...), key)

		out[key] = ParsedClaim{Name: p.name(childPath, key), Value: p.value(v, childPath)}
	}

	if p.includeUndefined {
		for key, v := range obj {
			if _, ok := out[key]; !ok {
				out[key] = ParsedClaim{Name: DisplayName{Plain: key}, Value: v}
			}
		}
	}

	return out
}

// childKeys returns the keys declared directly below path, in declaration order.
func (p *projector) childKeys(path []interface{}) []string {
	keys := lo.FilterMap(p.claims, func(c issuer.Claim, _ int) (string, bool) {
		if len(c.Path) <= len(path) || !pathHasPrefix(c.Path, path) {
			return "", false
		}

		key, ok := c.Path[len(path)].(string)

		return key, ok
	})

	return lo.Uniq(keys)
}

func (p *projector) name(path []interface{}, key string) DisplayName {
	if c, ok := p.claim(path); ok {
		return displayName(c, key)
	}

	if c, ok := p.claim(append(append([]interface{}{}, path...), nil)); ok {
		return displayName(c, key)
	}

	return DisplayName{Plain: key}
}

func (p *projector) claim(path []interface{}) (*issuer.Claim, bool) {
	conf := issuer.CredentialConfiguration{Claims: p.claims}

	return conf.ClaimByPath(path)
}

// pathHasPrefix compares string elements; any other element of prefix matches a nil or
// numeric element of path.
func pathHasPrefix(path, prefix []interface{}) bool {
	for i := range prefix {
		ps, prefixIsKey := prefix[i].(string)
		s, pathIsKey := path[i].(string)

		if prefixIsKey != pathIsKey || (prefixIsKey && ps != s) {
			return false
		}
	}

	return true
}

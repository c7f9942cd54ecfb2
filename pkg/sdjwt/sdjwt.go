/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdjwt decodes, verifies and presents SD-JWT verifiable credentials.
package sdjwt

import (
	"crypto"
	_ "crypto/sha256" // registers SHA-256
	_ "crypto/sha512" // registers SHA-384 and SHA-512
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/hyperledger/aries-framework-go/component/models/sdjwt/common"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
)

var logger = log.New("iowallet-sdjwt")

const (
	defaultHashAlgorithm = "sha-256"
	arrayElementKey      = "..."
	confirmationKey      = "cnf"
)

// Disclosure is a decoded disclosure. Path is where the disclosure is referenced in the
// credential; it stays nil for disclosures the issuer-signed JWT does not reference.
type Disclosure struct {
	Raw          string
	Digest       string
	Salt         string
	Name         string
	Value        interface{}
	ArrayElement bool
	Path         []interface{}
}

// Credential is a decoded SD-JWT.
type Credential struct {
	Token        *cryptoctx.Token
	Claims       map[string]interface{}
	Disclosures  []*Disclosure
	Unreferenced []*Disclosure
	hash         crypto.Hash
}

// Parse decodes a combined format SD-JWT without checking the issuer signature.
func Parse(combined string) (*Credential, error) {
	cf := common.ParseCombinedFormatForIssuance(strings.TrimSpace(combined))

	tok, err := cryptoctx.Decode(cf.SDJWT)
	if err != nil {
		return nil, fmt.Errorf("decode issuer-signed jwt: %w", err)
	}

	return resolve(tok, cf.Disclosures)
}

// Verify decodes a combined format SD-JWT and checks the issuer signature against keys.
func Verify(combined string, keys []jose.JSONWebKey) (*Credential, error) {
	cf := common.ParseCombinedFormatForIssuance(strings.TrimSpace(combined))

	tok, err := cryptoctx.Verify(cf.SDJWT, keys)
	if err != nil {
		return nil, fmt.Errorf("verify issuer signature: %w", err)
	}

	return resolve(tok, cf.Disclosures)
}

func resolve(tok *cryptoctx.Token, rawDisclosures []string) (*Credential, error) {
	var payload map[string]interface{}
	if err := tok.Claims(&payload); err != nil {
		return nil, err
	}

	alg := defaultHashAlgorithm
	if v, ok := payload[common.SDAlgorithmKey].(string); ok {
		alg = v
	}

	hash, err := common.GetCryptoHash(alg)
	if err != nil {
		return nil, err
	}

	r := &resolver{byDigest: map[string]*Disclosure{}}

	for _, raw := range rawDisclosures {
		if raw == "" {
			continue
		}

		d, err := parseDisclosure(raw, hash)
		if err != nil {
			return nil, err
		}

		if _, dup := r.byDigest[d.Digest]; dup {
			return nil, fmt.Errorf("duplicate disclosure %s", d.Digest)
		}

		r.byDigest[d.Digest] = d
		r.order = append(r.order, d)
	}

	claims, err := r.object(payload, nil)
	if err != nil {
		return nil, err
	}

	cred := &Credential{Token: tok, Claims: claims, hash: hash}

	for _, d := range r.order {
		if d.Path == nil {
			cred.Unreferenced = append(cred.Unreferenced, d)

			continue
		}

		cred.Disclosures = append(cred.Disclosures, d)
	}

	if len(cred.Unreferenced) > 0 {
		logger.Debug("Dropped disclosures not referenced by the credential",
			logfields.WithDisclosureCount(len(cred.Unreferenced)))
	}

	return cred, nil
}

func parseDisclosure(raw string, hash crypto.Hash) (*Disclosure, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode disclosure: %w", err)
	}

	var parts []interface{}
	if err = json.Unmarshal(decoded, &parts); err != nil {
		return nil, fmt.Errorf("decode disclosure: %w", err)
	}

	digest, err := common.GetHash(hash, raw)
	if err != nil {
		return nil, err
	}

	d := &Disclosure{Raw: raw, Digest: digest}

	switch len(parts) {
	case 3:
		d.Salt, _ = parts[0].(string)
		d.Name, _ = parts[1].(string)
		d.Value = parts[2]

		if d.Name == "" || d.Name == common.SDKey || d.Name == arrayElementKey {
			return nil, fmt.Errorf("invalid disclosure claim name %q", d.Name)
		}
	case 2:
		d.Salt, _ = parts[0].(string)
		d.Value = parts[1]
		d.ArrayElement = true
	default:
		return nil, fmt.Errorf("disclosure has %d elements", len(parts))
	}

	return d, nil
}

type resolver struct {
	byDigest map[string]*Disclosure
	order    []*Disclosure
}

func (r *resolver) value(v interface{}, path []interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		return r.object(t, path)
	case []interface{}:
		return r.array(t, path)
	default:
		return v, nil
	}
}

func (r *resolver) object(obj map[string]interface{}, path []interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(obj))

	for k, v := range obj {
		if k == common.SDKey || k == common.SDAlgorithmKey {
			continue
		}

		rv, err := r.value(v, extend(path, k))
		if err != nil {
			return nil, err
		}

		out[k] = rv
	}

	sd, ok := obj[common.SDKey]
	if !ok {
		return out, nil
	}

	digests, ok := sd.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s is not an array", common.SDKey)
	}

	for _, digest := range digests {
		ds, ok := digest.(string)
		if !ok {
			return nil, fmt.Errorf("%s contains a non string digest", common.SDKey)
		}

		d, found := r.byDigest[ds]
		if !found {
			continue
		}

		if d.ArrayElement {
			return nil, fmt.Errorf("array element disclosure referenced as object property")
		}

		if d.Path != nil {
			return nil, fmt.Errorf("disclosure %s referenced twice", d.Digest)
		}

		if _, exists := out[d.Name]; exists {
			return nil, fmt.Errorf("disclosed claim %s already present", d.Name)
		}

		d.Path = extend(path, d.Name)

		rv, err := r.value(d.Value, d.Path)
		if err != nil {
			return nil, err
		}

		out[d.Name] = rv
	}

	return out, nil
}

func (r *resolver) array(arr []interface{}, path []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(arr))

	for _, el := range arr {
		if m, ok := el.(map[string]interface{}); ok && len(m) == 1 {
			if ds, ok := m[arrayElementKey].(string); ok {
				d, found := r.byDigest[ds]
				if !found {
					continue
				}

				if !d.ArrayElement {
					return nil, fmt.Errorf("object property disclosure referenced as array element")
				}

				if d.Path != nil {
					return nil, fmt.Errorf("disclosure %s referenced twice", d.Digest)
				}

				d.Path = extend(path, len(out))

				rv, err := r.value(d.Value, d.Path)
				if err != nil {
					return nil, err
				}

				out = append(out, rv)

				continue
			}
		}

		rv, err := r.value(el, extend(path, len(out)))
		if err != nil {
			return nil, err
		}

		out = append(out, rv)
	}

	return out, nil
}

func extend(path []interface{}, elem interface{}) []interface{} {
	out := make([]interface{}, len(path), len(path)+1)
	copy(out, path)

	return append(out, elem)
}

// VCT returns the vct claim.
func (c *Credential) VCT() string {
	vct, _ := c.Claims["vct"].(string)

	return vct
}

// IssuedAt returns the iat claim, zero when absent.
func (c *Credential) IssuedAt() time.Time {
	return c.numericDate("iat")
}

// Expiration returns the exp claim.
func (c *Credential) Expiration() (time.Time, error) {
	exp := c.numericDate("exp")
	if exp.IsZero() {
		return time.Time{}, errors.New("invalid or missing expiration claim (exp)")
	}

	return exp, nil
}

func (c *Credential) numericDate(name string) time.Time {
	v, ok := c.Claims[name].(float64)
	if !ok {
		return time.Time{}
	}

	return time.Unix(int64(v), 0)
}

// ConfirmationKey returns cnf.jwk, the key the credential is bound to.
func (c *Credential) ConfirmationKey() (*jose.JSONWebKey, error) {
	cnf, ok := c.Claims[confirmationKey].(map[string]interface{})
	if !ok {
		return nil, errors.New("credential has no cnf claim")
	}

	raw, ok := cnf["jwk"]
	if !ok {
		return nil, errors.New("cnf has no jwk")
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode cnf.jwk: %w", err)
	}

	var key jose.JSONWebKey
	if err = key.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("decode cnf.jwk: %w", err)
	}

	return &key, nil
}

// DisclosedNames returns the top-level claim names revealed by disclosures.
func (c *Credential) DisclosedNames() []string {
	return lo.FilterMap(c.Disclosures, func(d *Disclosure, _ int) (string, bool) {
		return d.Name, len(d.Path) == 1
	})
}

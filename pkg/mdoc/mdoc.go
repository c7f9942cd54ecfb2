/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mdoc decodes and verifies ISO 18013-5 IssuerSigned structures.
package mdoc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-jose/go-jose/v3"
	"github.com/veraison/go-cose"
)

const (
	tagEncodedCBOR = 24
	tagCOSESign1   = 18

	headerLabelX5Chain int64 = 33
)

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{IntDec: cbor.IntDecConvertSigned}.DecMode()
	if err != nil {
		panic(err)
	}

	return dm
}()

// IssuerSignedItem is a single namespaced element.
type IssuerSignedItem struct {
	DigestID          uint64
	Random            []byte
	ElementIdentifier string
	ElementValue      interface{}

	// encoded is the #6.24 wrapped item the value digest is computed over.
	encoded []byte
}

type issuerSignedItem struct {
	DigestID          uint64      `cbor:"digestID"`
	Random            []byte      `cbor:"random"`
	ElementIdentifier string      `cbor:"elementIdentifier"`
	ElementValue      interface{} `cbor:"elementValue"`
}

// ValidityInfo holds the validity dates of the MSO.
type ValidityInfo struct {
	Signed     time.Time `cbor:"signed"`
	ValidFrom  time.Time `cbor:"validFrom"`
	ValidUntil time.Time `cbor:"validUntil"`
}

// DeviceKeyInfo holds the COSE_Key the document is bound to.
type DeviceKeyInfo struct {
	DeviceKey map[int]interface{} `cbor:"deviceKey"`
}

// MSO is the Mobile Security Object signed by the issuer.
type MSO struct {
	Version         string                       `cbor:"version"`
	DigestAlgorithm string                       `cbor:"digestAlgorithm"`
	DocType         string                       `cbor:"docType"`
	ValueDigests    map[string]map[uint64][]byte `cbor:"valueDigests"`
	DeviceKeyInfo   DeviceKeyInfo                `cbor:"deviceKeyInfo"`
	ValidityInfo    ValidityInfo                 `cbor:"validityInfo"`
	Status          map[string]interface{}       `cbor:"status,omitempty"`
}

// Document is a decoded IssuerSigned structure.
type Document struct {
	NameSpaces map[string][]IssuerSignedItem
	IssuerAuth *cose.Sign1Message
	MSO        *MSO
}

type issuerSigned struct {
	NameSpaces map[string][]cbor.RawMessage `cbor:"nameSpaces"`
	IssuerAuth cbor.RawMessage              `cbor:"issuerAuth"`
}

// Parse decodes a base64url encoded IssuerSigned structure.
func Parse(encoded string) (*Document, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(encoded), "="))
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}

	var is issuerSigned
	if err = decMode.Unmarshal(raw, &is); err != nil {
		return nil, fmt.Errorf("decode issuer signed: %w", err)
	}

	if len(is.IssuerAuth) == 0 {
		return nil, errors.New("issuer signed has no issuerAuth")
	}

	doc := &Document{NameSpaces: make(map[string][]IssuerSignedItem, len(is.NameSpaces))}

	for ns, items := range is.NameSpaces {
		for _, item := range items {
			parsed, err := parseItem(item)
			if err != nil {
				return nil, fmt.Errorf("namespace %s: %w", ns, err)
			}

			doc.NameSpaces[ns] = append(doc.NameSpaces[ns], *parsed)
		}
	}

	if doc.IssuerAuth, err = parseIssuerAuth(is.IssuerAuth); err != nil {
		return nil, err
	}

	if doc.MSO, err = parseMSO(doc.IssuerAuth.Payload); err != nil {
		return nil, err
	}

	return doc, nil
}

func unwrapEncodedCBOR(data []byte) ([]byte, error) {
	var tag cbor.RawTag
	if err := decMode.Unmarshal(data, &tag); err != nil || tag.Number != tagEncodedCBOR {
		return nil, fmt.Errorf("expected tag %d", tagEncodedCBOR)
	}

	var inner []byte
	if err := decMode.Unmarshal(tag.Content, &inner); err != nil {
		return nil, fmt.Errorf("decode tag %d content: %w", tagEncodedCBOR, err)
	}

	return inner, nil
}

func parseItem(raw cbor.RawMessage) (*IssuerSignedItem, error) {
	inner, err := unwrapEncodedCBOR(raw)
	if err != nil {
		return nil, fmt.Errorf("issuer signed item: %w", err)
	}

	var item issuerSignedItem
	if err = decMode.Unmarshal(inner, &item); err != nil {
		return nil, fmt.Errorf("decode issuer signed item: %w", err)
	}

	return &IssuerSignedItem{
		DigestID:          item.DigestID,
		Random:            item.Random,
		ElementIdentifier: item.ElementIdentifier,
		ElementValue:      normalizeValue(item.ElementValue),
		encoded:           raw,
	}, nil
}

func parseIssuerAuth(raw cbor.RawMessage) (*cose.Sign1Message, error) {
	tagged := []byte(raw)

	var tag cbor.RawTag
	if err := decMode.Unmarshal(raw, &tag); err != nil || tag.Number != tagCOSESign1 {
		b, err := cbor.Marshal(cbor.RawTag{Number: tagCOSESign1, Content: raw})
		if err != nil {
			return nil, fmt.Errorf("tag issuerAuth: %w", err)
		}

		tagged = b
	}

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(tagged); err != nil {
		return nil, fmt.Errorf("decode issuerAuth: %w", err)
	}

	return &msg, nil
}

func parseMSO(payload []byte) (*MSO, error) {
	data := payload
	if inner, err := unwrapEncodedCBOR(payload); err == nil {
		data = inner
	}

	var mso MSO
	if err := decMode.Unmarshal(data, &mso); err != nil {
		return nil, fmt.Errorf("decode mso: %w", err)
	}

	return &mso, nil
}

// DocType returns the document type declared by the MSO.
func (d *Document) DocType() string {
	return d.MSO.DocType
}

// DeviceKey returns the key the document is bound to.
func (d *Document) DeviceKey() (*jose.JSONWebKey, error) {
	k := d.MSO.DeviceKeyInfo.DeviceKey

	// COSE_Key labels: 1 kty, -1 crv, -2 x, -3 y.
	x, okX := k[-2].([]byte)
	y, okY := k[-3].([]byte)

	if !okX || !okY {
		return nil, errors.New("device key is not an EC2 key")
	}

	if crv, ok := k[-1].(int64); ok && crv != int64(cose.CurveP256) {
		return nil, fmt.Errorf("unsupported device key curve %d", crv)
	}

	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}

	return &jose.JSONWebKey{Key: pub, Algorithm: string(jose.ES256)}, nil
}

// Claims returns the element values keyed by namespace then element identifier.
func (d *Document) Claims() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(d.NameSpaces))

	for ns, items := range d.NameSpaces {
		elements := make(map[string]interface{}, len(items))

		for _, item := range items {
			elements[item.ElementIdentifier] = item.ElementValue
		}

		out[ns] = elements
	}

	return out
}

// normalizeValue turns CBOR maps with interface keys into string keyed maps and full-date
// tags into strings so values can be rendered as JSON.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}

		return out
	case cbor.Tag:
		return normalizeValue(t.Content)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

// StatusListReference returns the status_list entry of the MSO, if any.
func (d *Document) StatusListReference() (uri string, idx int, ok bool) {
	sl, found := d.MSO.Status["status_list"]
	if !found {
		return "", 0, false
	}

	m, isMap := normalizeValue(sl).(map[string]interface{})
	if !isMap {
		return "", 0, false
	}

	uri, _ = m["uri"].(string)

	switch v := m["idx"].(type) {
	case int64:
		idx = int(v)
	case uint64:
		idx = int(v)
	default:
		return "", 0, false
	}

	return uri, idx, uri != ""
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"sort"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

// MDocIssuer signs IssuerSigned structures with a leaf certificate issued by Root.
type MDocIssuer struct {
	Root    *x509.Certificate
	RootKey *ecdsa.PrivateKey
	Leaf    *x509.Certificate
	LeafKey *ecdsa.PrivateKey
}

// MDoc describes the content of an IssuerSigned structure.
type MDoc struct {
	DocType    string
	NameSpaces map[string]map[string]interface{}
	DeviceKey  *jose.JSONWebKey
	ValidFrom  time.Time
	ValidUntil time.Time
	Status     map[string]interface{}
	// CorruptDigest stores a wrong value digest for the first element.
	CorruptDigest bool
}

// NewMDocIssuer creates a P-256 root CA and document signer certificate.
func NewMDocIssuer(t *testing.T) *MDocIssuer {
	t.Helper()

	return NewMDocIssuerWithCurve(t, elliptic.P256())
}

// NewMDocIssuerWithCurve creates a root CA and a document signer certificate on curve.
func NewMDocIssuerWithCurve(t *testing.T, curve elliptic.Curve) *MDocIssuer {
	t.Helper()

	rootKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	rootTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test IACA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}

	rootDER, err := x509.CreateCertificate(rand.Reader, rootTmpl, rootTmpl, &rootKey.PublicKey, rootKey)
	require.NoError(t, err)

	root, err := x509.ParseCertificate(rootDER)
	require.NoError(t, err)

	leafKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "Test Document Signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, root, &leafKey.PublicKey, rootKey)
	require.NoError(t, err)

	leaf, err := x509.ParseCertificate(leafDER)
	require.NoError(t, err)

	return &MDocIssuer{Root: root, RootKey: rootKey, Leaf: leaf, LeafKey: leafKey}
}

// IssuerSigned encodes doc as a base64url IssuerSigned structure with an untagged issuerAuth.
func (i *MDocIssuer) IssuerSigned(t *testing.T, doc *MDoc) string {
	t.Helper()

	nameSpaces := map[string][]cbor.RawMessage{}
	valueDigests := map[string]map[uint64][]byte{}

	var digestID uint64

	for _, ns := range sortedKeys(doc.NameSpaces) {
		valueDigests[ns] = map[uint64][]byte{}

		for _, name := range sortedKeys(doc.NameSpaces[ns]) {
			random := make([]byte, 16)
			_, err := rand.Read(random)
			require.NoError(t, err)

			item, err := cbor.Marshal(map[string]interface{}{
				"digestID":          digestID,
				"random":            random,
				"elementIdentifier": name,
				"elementValue":      doc.NameSpaces[ns][name],
			})
			require.NoError(t, err)

			encoded, err := cbor.Marshal(cbor.Tag{Number: 24, Content: item})
			require.NoError(t, err)

			digest := sha256.Sum256(encoded)
			if doc.CorruptDigest && digestID == 0 {
				digest[0] ^= 0xff
			}

			nameSpaces[ns] = append(nameSpaces[ns], encoded)
			valueDigests[ns][digestID] = digest[:]

			digestID++
		}
	}

	pub, ok := doc.DeviceKey.Key.(*ecdsa.PublicKey)
	require.True(t, ok)

	x := make([]byte, 32)
	y := make([]byte, 32)
	pub.X.FillBytes(x)
	pub.Y.FillBytes(y)

	validFrom, validUntil := doc.ValidFrom, doc.ValidUntil
	if validFrom.IsZero() {
		validFrom = time.Now().Add(-time.Hour)
	}

	if validUntil.IsZero() {
		validUntil = time.Now().Add(24 * time.Hour)
	}

	mso := map[string]interface{}{
		"version":         "1.0",
		"digestAlgorithm": "SHA-256",
		"docType":         doc.DocType,
		"valueDigests":    valueDigests,
		"deviceKeyInfo": map[string]interface{}{
			"deviceKey": map[int]interface{}{1: 2, -1: 1, -2: x, -3: y},
		},
		"validityInfo": map[string]interface{}{
			"signed":     tdate(validFrom),
			"validFrom":  tdate(validFrom),
			"validUntil": tdate(validUntil),
		},
	}

	if doc.Status != nil {
		mso["status"] = doc.Status
	}

	msoBytes, err := cbor.Marshal(mso)
	require.NoError(t, err)

	payload, err := cbor.Marshal(cbor.Tag{Number: 24, Content: msoBytes})
	require.NoError(t, err)

	alg := signingAlgorithm(i.LeafKey.Curve)

	signer, err := cose.NewSigner(alg, i.LeafKey)
	require.NoError(t, err)

	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(alg)
	msg.Headers.Unprotected[int64(33)] = i.Leaf.Raw
	msg.Payload = payload

	require.NoError(t, msg.Sign(rand.Reader, nil, signer))

	tagged, err := msg.MarshalCBOR()
	require.NoError(t, err)

	var sign1 cbor.RawTag
	require.NoError(t, cbor.Unmarshal(tagged, &sign1))

	out, err := cbor.Marshal(map[string]interface{}{
		"nameSpaces": nameSpaces,
		"issuerAuth": sign1.Content,
	})
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(out)
}

func signingAlgorithm(curve elliptic.Curve) cose.Algorithm {
	switch curve {
	case elliptic.P384():
		return cose.AlgorithmES384
	case elliptic.P521():
		return cose.AlgorithmES512
	default:
		return cose.AlgorithmES256
	}
}

func tdate(t time.Time) cbor.Tag {
	return cbor.Tag{Number: 0, Content: t.UTC().Truncate(time.Second).Format(time.RFC3339)}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

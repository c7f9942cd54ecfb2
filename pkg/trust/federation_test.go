/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/kms/local"
	"github.com/trustbloc/iowallet/pkg/trust"
)

// entity is a federation participant served by the test federation.
type entity struct {
	name     string
	priv     *ecdsa.PrivateKey
	jwk      jose.JSONWebKey
	cert     *x509.Certificate
	hints    []string
	noFetch  bool
	listed   []string
	hasList  bool
	metadata map[string]interface{}
	policy   map[string]interface{}
	exp      time.Time
}

type federation struct {
	t        *testing.T
	srv      *httptest.Server
	ks       *local.Store
	mu       sync.Mutex
	entities map[string]*entity
	requests map[string]int
	crl      []byte
	root     *entity
}

func newFederation(t *testing.T) *federation {
	t.Helper()

	f := &federation{
		t:        t,
		ks:       local.New(),
		entities: map[string]*entity{},
		requests: map[string]int{},
	}

	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *federation) id(name string) string {
	return f.srv.URL + "/" + name
}

func (f *federation) client() trust.HTTPClient {
	return f.srv.Client()
}

func (f *federation) add(name string, hints ...string) *entity {
	f.t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(f.t, err)

	jwk, err := f.ks.ImportKey(name, priv)
	require.NoError(f.t, err)

	e := &entity{
		name:  name,
		priv:  priv,
		jwk:   *jwk,
		hints: hints,
		exp:   time.Now().Add(24 * time.Hour),
	}

	f.mu.Lock()
	f.entities[name] = e
	f.mu.Unlock()

	return e
}

// withRoot turns root into a self-signed CA and certifies every entity key with it.
// crlFor lists the entity names whose certificate points to the federation CRL.
func (f *federation) withRoot(root *entity, crlFor ...string) {
	f.t.Helper()

	f.root = root
	root.cert = f.certificate(root, nil, 1, "")

	serial := int64(2)

	for _, e := range f.entities {
		if e == root {
			continue
		}

		dp := ""
		if lo.Contains(crlFor, e.name) {
			dp = f.srv.URL + "/crl/list"
		}

		e.cert = f.certificate(e, root, serial, dp)
		serial++
	}

	for _, e := range f.entities {
		if e == root {
			e.jwk.Certificates = []*x509.Certificate{root.cert}
		} else {
			e.jwk.Certificates = []*x509.Certificate{e.cert, root.cert}
		}
	}
}

func (f *federation) certificate(e, issuer *entity, serial int64, crlDP string) *x509.Certificate {
	f.t.Helper()

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: e.name},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	if crlDP != "" {
		tmpl.CRLDistributionPoints = []string{crlDP}
	}

	parent, signer := tmpl, e.priv
	if issuer == nil {
		tmpl.IsCA = true
		tmpl.KeyUsage |= x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	} else {
		parent, signer = issuer.cert, issuer.priv
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &e.priv.PublicKey, signer)
	require.NoError(f.t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(f.t, err)

	return cert
}

// revoke publishes a CRL, signed by the root, that revokes the certificates of names.
func (f *federation) revoke(names ...string) {
	f.t.Helper()

	entries := lo.Map(names, func(name string, _ int) x509.RevocationListEntry {
		return x509.RevocationListEntry{
			SerialNumber:   f.entities[name].cert.SerialNumber,
			RevocationTime: time.Now().Add(-time.Minute),
		}
	})

	crl, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    big.NewInt(1),
		ThisUpdate:                time.Now().Add(-time.Hour),
		NextUpdate:                time.Now().Add(time.Hour),
		RevokedCertificateEntries: entries,
	}, f.root.cert, f.root.priv)
	require.NoError(f.t, err)

	f.mu.Lock()
	f.crl = crl
	f.mu.Unlock()
}

func (f *federation) anchor(name string) *trust.Anchor {
	f.t.Helper()

	a, err := trust.NewAnchor(f.configuration(f.entities[name]))
	require.NoError(f.t, err)

	return a
}

func (f *federation) hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[path]
}

func (f *federation) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.URL.Path]++
	crl := f.crl
	f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, r)

		return
	}

	if parts[0] == "crl" {
		if crl == nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "application/pkix-crl")
		_, _ = w.Write(crl)

		return
	}

	f.mu.Lock()
	e, ok := f.entities[parts[0]]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)

		return
	}

	switch parts[1] {
	case ".well-known/openid-federation":
		w.Header().Set("Content-Type", "application/"+trust.EntityStatementType)
		_, _ = w.Write([]byte(f.configuration(e)))
	case "fetch":
		sub, found := f.entities[strings.TrimPrefix(r.URL.Query().Get("sub"), f.srv.URL+"/")]
		if !found {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "application/"+trust.EntityStatementType)
		_, _ = w.Write([]byte(f.statement(e, sub)))
	case "list":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(lo.Map(e.listed, func(n string, _ int) string { return f.id(n) }))
	default:
		http.NotFound(w, r)
	}
}

func (f *federation) configuration(e *entity, opts ...cryptoctx.SignOpt) string {
	return f.configurationSignedBy(e, e, opts...)
}

// configurationSignedBy issues the entity configuration of e with the key of signer.
func (f *federation) configurationSignedBy(e, signer *entity, opts ...cryptoctx.SignOpt) string {
	federationEntity := map[string]interface{}{}
	if !e.noFetch {
		federationEntity["federation_fetch_endpoint"] = f.id(e.name) + "/fetch"
	}

	if e.hasList {
		federationEntity["federation_list_endpoint"] = f.id(e.name) + "/list"
	}

	metadata := map[string]interface{}{"federation_entity": federationEntity}
	for k, v := range e.metadata {
		metadata[k] = v
	}

	return f.sign(signer, map[string]interface{}{
		"iss":             f.id(e.name),
		"sub":             f.id(e.name),
		"iat":             time.Now().Unix(),
		"exp":             e.exp.Unix(),
		"jwks":            map[string]interface{}{"keys": []jose.JSONWebKey{e.jwk}},
		"authority_hints": lo.Map(e.hints, func(n string, _ int) string { return f.id(n) }),
		"metadata":        metadata,
	}, opts...)
}

func (f *federation) statement(superior, subordinate *entity) string {
	claims := map[string]interface{}{
		"iss":  f.id(superior.name),
		"sub":  f.id(subordinate.name),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"jwks": map[string]interface{}{"keys": []jose.JSONWebKey{subordinate.jwk}},
	}

	if superior.policy != nil {
		claims["metadata_policy"] = superior.policy
	}

	return f.sign(superior, claims)
}

func (f *federation) sign(e *entity, claims interface{}, opts ...cryptoctx.SignOpt) string {
	f.t.Helper()

	opts = append([]cryptoctx.SignOpt{cryptoctx.WithType(trust.EntityStatementType)}, opts...)

	raw, err := cryptoctx.SignJWT(context.Background(), f.ks.Context(e.name), claims, opts...)
	require.NoError(f.t, err)

	return raw
}

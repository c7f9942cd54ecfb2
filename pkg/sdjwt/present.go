/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hyperledger/aries-framework-go/component/models/sdjwt/common"
	"github.com/samber/lo"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
)

// TypeKeyBinding is the typ of key binding JWTs.
const TypeKeyBinding = "kb+jwt"

// KeyBinding holds the claims of the key binding JWT appended to a presentation.
type KeyBinding struct {
	Audience string
	Nonce    string
	IssuedAt time.Time
}

type keyBindingClaims struct {
	IssuedAt int64  `json:"iat"`
	Audience string `json:"aud"`
	Nonce    string `json:"nonce"`
	SDHash   string `json:"sd_hash"`
}

// SelectDisclosures returns the disclosures needed to reveal the claims at paths. A path element
// is a claim name, an array index or nil for every element of an array. Disclosures on the way to
// a requested claim and below it are included.
func (c *Credential) SelectDisclosures(paths [][]interface{}) []*Disclosure {
	return lo.Filter(c.Disclosures, func(d *Disclosure, _ int) bool {
		return lo.SomeBy(paths, func(p []interface{}) bool {
			return matchesPrefix(d.Path, p) || matchesPrefix(p, d.Path)
		})
	})
}

// matchesPrefix reports whether prefix matches the beginning of path; nil elements match anything.
func matchesPrefix(prefix, path []interface{}) bool {
	if len(prefix) > len(path) {
		return false
	}

	for i := range prefix {
		if prefix[i] == nil || path[i] == nil {
			continue
		}

		if !reflect.DeepEqual(normalize(prefix[i]), normalize(path[i])) {
			return false
		}
	}

	return true
}

func normalize(e interface{}) interface{} {
	switch v := e.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}

// Present reveals the claims at paths and appends a key binding JWT signed with holder.
func (c *Credential) Present(
	ctx context.Context,
	paths [][]interface{},
	kb KeyBinding,
	holder cryptoctx.Context,
) (string, error) {
	disclosures := lo.Map(c.SelectDisclosures(paths), func(d *Disclosure, _ int) string { return d.Raw })

	var sb strings.Builder

	sb.WriteString(c.Token.Raw)
	sb.WriteString(common.CombinedFormatSeparator)

	for _, d := range disclosures {
		sb.WriteString(d)
		sb.WriteString(common.CombinedFormatSeparator)
	}

	sdHash, err := common.GetHash(c.hash, sb.String())
	if err != nil {
		return "", err
	}

	iat := kb.IssuedAt
	if iat.IsZero() {
		iat = time.Now()
	}

	kbJWT, err := cryptoctx.SignJWT(ctx, holder, &keyBindingClaims{
		IssuedAt: iat.Unix(),
		Audience: kb.Audience,
		Nonce:    kb.Nonce,
		SDHash:   sdHash,
	}, cryptoctx.WithType(TypeKeyBinding))
	if err != nil {
		return "", fmt.Errorf("sign key binding jwt: %w", err)
	}

	cf := &common.CombinedFormatForPresentation{
		SDJWT:              c.Token.Raw,
		Disclosures:        disclosures,
		HolderVerification: kbJWT,
	}

	return cf.Serialize(), nil
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wia_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/iowallet/pkg/internal/testutil"
	"github.com/trustbloc/iowallet/pkg/wia"
)

func TestDecode(t *testing.T) {
	provider := testutil.NewSigner(t, "provider")
	holder := testutil.NewSigner(t, "holder")

	exp := time.Now().Add(time.Hour).Unix()

	raw := provider.SignedJWT(t, map[string]interface{}{
		"iss": "https://wallet-provider.example.com",
		"sub": holder.Key.KeyID,
		"exp": exp,
		"cnf": map[string]interface{}{"jwk": holder.PublicJWK(t)},
	})

	a, err := wia.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, holder.Key.KeyID, a.KeyID())
	require.Equal(t, exp, a.ExpiresAt().Unix())
	require.False(t, a.Expired(time.Now()))
	require.True(t, a.Expired(time.Unix(exp, 0)))

	_, err = wia.Decode(provider.SignedJWT(t, map[string]interface{}{"iss": "x"}))
	require.ErrorContains(t, err, "cnf.jwk")

	_, err = wia.Decode("not-a-jwt")
	require.Error(t, err)
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust

import "context"

// API resolves and verifies federation trust chains. Service implements it.
type API interface {
	GetEntityConfiguration(ctx context.Context, baseURL string) (*ParsedStatement, error)
	BuildTrustChain(ctx context.Context, leafBaseURL string, anchor *Anchor) (Chain, error)
	RenewTrustChain(ctx context.Context, chain Chain) (Chain, error)
	VerifyTrustChain(ctx context.Context, anchor *Anchor, chain Chain, opts ...VerifyOpt) ([]*ParsedStatement, error)
	ResolveAndVerify(ctx context.Context, leafBaseURL string, anchor *Anchor,
		opts ...VerifyOpt) ([]*ParsedStatement, error)
}

var _ API = (*Service)(nil)

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -package trust . Service

package trust

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/iowallet/pkg/trust"
)

type Service trust.API

type Wrapper struct {
	svc    Service
	tracer trace.Tracer
}

func Wrap(svc Service, tracer trace.Tracer) *Wrapper {
	return &Wrapper{svc: svc, tracer: tracer}
}

func (w *Wrapper) GetEntityConfiguration(ctx context.Context, baseURL string) (*trust.ParsedStatement, error) {
	ctx, span := w.tracer.Start(ctx, "trust.GetEntityConfiguration")
	defer span.End()

	span.SetAttributes(attribute.String("base_url", baseURL))

	return w.svc.GetEntityConfiguration(ctx, baseURL)
}

func (w *Wrapper) BuildTrustChain(ctx context.Context, leafBaseURL string, anchor *trust.Anchor) (trust.Chain, error) {
	ctx, span := w.tracer.Start(ctx, "trust.BuildTrustChain")
	defer span.End()

	span.SetAttributes(attribute.String("leaf", leafBaseURL))
	span.SetAttributes(attribute.String("trust_anchor", anchorID(anchor)))

	chain, err := w.svc.BuildTrustChain(ctx, leafBaseURL, anchor)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("chain_length", len(chain)))

	return chain, nil
}

func (w *Wrapper) RenewTrustChain(ctx context.Context, chain trust.Chain) (trust.Chain, error) {
	ctx, span := w.tracer.Start(ctx, "trust.RenewTrustChain")
	defer span.End()

	span.SetAttributes(attribute.Int("chain_length", len(chain)))

	return w.svc.RenewTrustChain(ctx, chain)
}

func (w *Wrapper) VerifyTrustChain(
	ctx context.Context,
	anchor *trust.Anchor,
	chain trust.Chain,
	opts ...trust.VerifyOpt,
) ([]*trust.ParsedStatement, error) {
	ctx, span := w.tracer.Start(ctx, "trust.VerifyTrustChain")
	defer span.End()

	span.SetAttributes(attribute.String("trust_anchor", anchorID(anchor)))
	span.SetAttributes(attribute.Int("chain_length", len(chain)))

	return w.svc.VerifyTrustChain(ctx, anchor, chain, opts...)
}

func (w *Wrapper) ResolveAndVerify(
	ctx context.Context,
	leafBaseURL string,
	anchor *trust.Anchor,
	opts ...trust.VerifyOpt,
) ([]*trust.ParsedStatement, error) {
	ctx, span := w.tracer.Start(ctx, "trust.ResolveAndVerify")
	defer span.End()

	span.SetAttributes(attribute.String("leaf", leafBaseURL))
	span.SetAttributes(attribute.String("trust_anchor", anchorID(anchor)))

	return w.svc.ResolveAndVerify(ctx, leafBaseURL, anchor, opts...)
}

func anchorID(anchor *trust.Anchor) string {
	if anchor == nil {
		return ""
	}

	return anchor.EntityID()
}

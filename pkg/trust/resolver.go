/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-trust")

const defaultHopLimit = 10

// Resolver fetches federation statements and assembles trust chains.
type Resolver struct {
	httpClient HTTPClient
	hopLimit   int
}

// ResolverOpt configures Resolver.
type ResolverOpt func(r *Resolver)

// WithHopLimit bounds the number of subordinate statements in a built chain.
func WithHopLimit(limit int) ResolverOpt {
	return func(r *Resolver) { r.hopLimit = limit }
}

// NewResolver returns a Resolver that sends requests through httpClient.
func NewResolver(httpClient HTTPClient, opts ...ResolverOpt) *Resolver {
	r := &Resolver{
		httpClient: httpClient,
		hopLimit:   defaultHopLimit,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// GetEntityConfiguration fetches the self-signed configuration published by baseURL.
func (r *Resolver) GetEntityConfiguration(ctx context.Context, baseURL string) (*ParsedStatement, error) {
	wellKnown := httputil.JoinPath(baseURL, wellKnownFederationPath)

	raw, err := httputil.Get(ctx, r.httpClient, wellKnown, "application/"+EntityStatementType)
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonUnreachable,
			fmt.Errorf("get entity configuration: %w", err)).WithURL(wellKnown)
	}

	st, err := ParseStatement(string(raw))
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("parse entity configuration: %w", err)).WithURL(wellKnown)
	}

	if !st.Payload.IsConfiguration() {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("entity configuration iss %q differs from sub %q", st.Payload.Issuer, st.Payload.Subject)).
			WithURL(wellKnown)
	}

	return st, nil
}

// GetEntityStatement fetches the statement about sub from a superior's fetch endpoint.
func (r *Resolver) GetEntityStatement(ctx context.Context, fetchEndpoint, sub string) (*ParsedStatement, error) {
	u, err := httputil.WithQuery(fetchEndpoint, url.Values{"sub": {sub}})
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonUnreachable, err)
	}

	raw, err := httputil.Get(ctx, r.httpClient, u, "application/"+EntityStatementType)
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonUnreachable,
			fmt.Errorf("get entity statement: %w", err)).WithURL(u)
	}

	st, err := ParseStatement(string(raw))
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("parse entity statement: %w", err)).WithURL(u)
	}

	if st.Payload.Subject != sub {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("entity statement sub %q, requested %q", st.Payload.Subject, sub)).WithURL(u)
	}

	return st, nil
}

// GetFederationList fetches the list of subordinate entity identifiers.
func (r *Resolver) GetFederationList(ctx context.Context, listEndpoint string) ([]string, error) {
	raw, err := httputil.Get(ctx, r.httpClient, listEndpoint, httputil.ContentTypeJSON)
	if err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonUnreachable,
			fmt.Errorf("get federation list: %w", err)).WithURL(listEndpoint)
	}

	var list []string
	if err = json.Unmarshal(raw, &list); err != nil {
		return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("parse federation list: %w", err)).WithURL(listEndpoint)
	}

	return list, nil
}

// BuildTrustChain walks authority hints from the leaf up to the anchor. At each hop the first
// authority that resolves is taken. The chain is not verified.
func (r *Resolver) BuildTrustChain(ctx context.Context, leafBaseURL string, anchor *Anchor) (Chain, error) {
	if listEndpoint := anchor.Statement.Payload.ListEndpoint(); listEndpoint != "" {
		list, err := r.GetFederationList(ctx, listEndpoint)
		if err != nil {
			return nil, err
		}

		if !lo.Contains(list, leafBaseURL) {
			return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonRelyingPartyNotAllowed,
				fmt.Errorf("%s is not listed by the trust anchor", leafBaseURL)).
				WithURL(listEndpoint).
				WithIncorrectValue(leafBaseURL)
		}
	}

	leaf, err := r.GetEntityConfiguration(ctx, leafBaseURL)
	if err != nil {
		return nil, err
	}

	chain := Chain{leaf.Raw}

	if leaf.Payload.Subject == anchor.EntityID() {
		return chain, nil
	}

	visited := map[string]bool{leaf.Payload.Subject: true}
	current := leaf

	for {
		if len(chain)-1 >= r.hopLimit {
			return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonHopLimitExceeded,
				fmt.Errorf("trust chain exceeds %d hops", r.hopLimit)).WithIncorrectValue(leafBaseURL)
		}

		if len(current.Payload.AuthorityHints) == 0 {
			return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonAnchorNotReached,
				fmt.Errorf("%s has no authority hints and is not the trust anchor", current.Payload.Subject)).
				WithIncorrectValue(current.Payload.Subject)
		}

		parent, statement, err := r.stepUp(ctx, current, visited)
		if err != nil {
			return nil, err
		}

		chain = append(chain, statement.Raw)
		visited[parent.Payload.Subject] = true

		if parent.Payload.Subject == anchor.EntityID() {
			chain = append(chain, parent.Raw)

			logger.Debug("Trust chain built", logfields.WithEntityID(leafBaseURL),
				logfields.WithTrustAnchor(anchor.EntityID()), logfields.WithChainLength(len(chain)))

			return chain, nil
		}

		current = parent
	}
}

// stepUp resolves the first reachable superior of current and the statement it issued about current.
func (r *Resolver) stepUp(
	ctx context.Context,
	current *ParsedStatement,
	visited map[string]bool,
) (*ParsedStatement, *ParsedStatement, error) {
	var lastErr error

	for _, hint := range current.Payload.AuthorityHints {
		if visited[hint] {
			lastErr = walleterr.NewTrustChainResolutionError(walleterr.ReasonCyclicChain,
				fmt.Errorf("authority %s already appears in the chain", hint)).WithIncorrectValue(hint)

			continue
		}

		parent, statement, err := r.resolveSuperior(ctx, current.Payload.Subject, hint)
		if err != nil {
			logger.Debug("Authority hint did not resolve", logfields.WithEntityID(hint), log.WithError(err))

			lastErr = err

			continue
		}

		return parent, statement, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no authority hint resolved")
	}

	return nil, nil, lastErr
}

func (r *Resolver) resolveSuperior(ctx context.Context, subject, authority string) (*ParsedStatement,
	*ParsedStatement, error) {
	parent, err := r.GetEntityConfiguration(ctx, authority)
	if err != nil {
		return nil, nil, err
	}

	fetchEndpoint := parent.Payload.FetchEndpoint()
	if fetchEndpoint == "" {
		return nil, nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonMissingFetchEndpoint,
			fmt.Errorf("%s does not publish a federation_fetch_endpoint", authority)).WithIncorrectValue(authority)
	}

	statement, err := r.GetEntityStatement(ctx, fetchEndpoint, subject)
	if err != nil {
		return nil, nil, err
	}

	if statement.Payload.Issuer != parent.Payload.Subject {
		return nil, nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
			fmt.Errorf("statement about %s issued by %q, expected %q", subject,
				statement.Payload.Issuer, parent.Payload.Subject))
	}

	return parent, statement, nil
}

// RenewTrustChain fetches a fresh copy of every element of chain, keeping its order.
func (r *Resolver) RenewTrustChain(ctx context.Context, chain Chain) (Chain, error) {
	renewed := make(Chain, 0, len(chain))

	for i, raw := range chain {
		st, err := ParseStatement(raw)
		if err != nil {
			return nil, walleterr.NewTrustChainResolutionError(walleterr.ReasonInvalidStatement,
				fmt.Errorf("parse chain element %d: %w", i, err))
		}

		if st.Payload.IsConfiguration() {
			fresh, err := r.GetEntityConfiguration(ctx, st.Payload.Issuer)
			if err != nil {
				return nil, err
			}

			renewed = append(renewed, fresh.Raw)

			continue
		}

		_, fresh, err := r.resolveSuperior(ctx, st.Payload.Subject, st.Payload.Issuer)
		if err != nil {
			return nil, err
		}

		renewed = append(renewed, fresh.Raw)
	}

	logger.Debug("Trust chain renewed", logfields.WithChainLength(len(renewed)))

	return renewed, nil
}

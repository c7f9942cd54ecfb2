/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"
	"github.com/valyala/fastjson"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/pkg/protocol"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

const (
	paramCredentialOffer    = "credential_offer"
	paramCredentialOfferURI = "credential_offer_uri"
)

// Schemes accepted by StartFlow.
var Schemes = []string{"openid-credential-offer", "haip", "haip-vp", "haip-vci", "https"}

// Resolver implements API for version 1.3.3.
type Resolver struct {
	version    protocol.Version
	httpClient httputil.Client
	validator  *validator
	evaluator  issuerEvaluator
}

// StartFlow parses the URL of a QR code or deep link. The offer must be carried either by value
// in credential_offer or by reference in credential_offer_uri. An offer carried by value is
// validated here, before any network call.
func (r *Resolver) StartFlow(encodedURL string) (*Reference, error) {
	u, err := url.Parse(strings.TrimSpace(encodedURL))
	if err != nil {
		return nil, walleterr.NewInvalidQRCodeError(fmt.Errorf("parse url: %w", err))
	}

	if !lo.Contains(Schemes, u.Scheme) {
		return nil, walleterr.NewInvalidQRCodeError(
			fmt.Errorf("url must have one of the supported schemes %v", Schemes)).
			WithIncorrectValue(u.Scheme)
	}

	q := u.Query()
	byValue, byReference := q.Get(paramCredentialOffer), q.Get(paramCredentialOfferURI)

	switch {
	case byValue != "" && byReference != "":
		return nil, walleterr.NewInvalidQRCodeError(
			fmt.Errorf("only one of %s and %s can be present", paramCredentialOffer, paramCredentialOfferURI))
	case byValue != "":
		offer, parseErr := r.parseOffer([]byte(byValue))
		if parseErr != nil {
			logger.Error("Invalid credential offer object found in QR code", log.WithError(parseErr))

			return nil, walleterr.NewInvalidQRCodeError(parseErr)
		}

		return &Reference{Offer: offer}, nil
	case byReference != "":
		ref, parseErr := url.Parse(byReference)
		if parseErr != nil || ref.Scheme != "https" || ref.Host == "" {
			return nil, walleterr.NewInvalidQRCodeError(
				fmt.Errorf("%s must be an https url", paramCredentialOfferURI)).WithIncorrectValue(byReference)
		}

		return &Reference{URI: byReference}, nil
	default:
		return nil, walleterr.NewInvalidQRCodeError(errors.New("QR code does not contain valid params"))
	}
}

// ResolveCredentialOffer returns the offer of ref, fetching it when carried by reference.
func (r *Resolver) ResolveCredentialOffer(ctx context.Context, ref *Reference) (*Offer, error) {
	if ref.Offer != nil {
		return ref.Offer, nil
	}

	if ref.URI == "" {
		return nil, walleterr.NewInvalidCredentialOfferError(errors.New("empty credential offer reference"))
	}

	body, err := httputil.Get(ctx, r.httpClient, ref.URI, httputil.ContentTypeJSON)
	if err != nil {
		return nil, err
	}

	offer, err := r.parseOffer(body)
	if err != nil {
		return nil, walleterr.NewInvalidCredentialOfferError(
			fmt.Errorf("invalid credential offer fetched from %s: %w", ref.URI, err)).WithURL(ref.URI)
	}

	return offer, nil
}

// parseOffer checks the syntax of payload, validates it against the offer schema and decodes it.
func (r *Resolver) parseOffer(payload []byte) (*Offer, error) {
	var p fastjson.Parser

	v, err := p.ParseBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("decode credential offer: %w", err)
	}

	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("credential offer must be a JSON object, got %s", v.Type())
	}

	if err = r.validator.validate(payload); err != nil {
		return nil, err
	}

	var offer Offer
	if err = json.Unmarshal(payload, &offer); err != nil {
		return nil, fmt.Errorf("decode credential offer: %w", err)
	}

	return &offer, nil
}

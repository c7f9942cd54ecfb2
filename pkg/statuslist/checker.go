/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package statuslist checks credentials against token status lists.
package statuslist

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-jose/go-jose/v3"
	"github.com/klauspost/compress/zlib"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/httputil"
	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-statuslist")

const (
	mediaTypeStatusListJWT = "application/statuslist+jwt"

	// StatusValid is the status value of a credential that is neither revoked nor suspended.
	StatusValid = 0
)

// Reference points at an entry of a status list.
type Reference struct {
	URI string `json:"uri"`
	Idx int    `json:"idx"`
}

// ReferenceFromClaims extracts status.status_list from credential claims.
func ReferenceFromClaims(claims map[string]interface{}) (*Reference, bool) {
	status, ok := claims["status"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	sl, ok := status["status_list"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	ref := &Reference{}
	ref.URI, _ = sl["uri"].(string)

	switch v := sl["idx"].(type) {
	case float64:
		ref.Idx = int(v)
	case int64:
		ref.Idx = int(v)
	case int:
		ref.Idx = v
	default:
		return nil, false
	}

	return ref, ref.URI != ""
}

type statusListClaims struct {
	Subject    string `json:"sub"`
	StatusList struct {
		Bits int    `json:"bits"`
		Lst  string `json:"lst"`
	} `json:"status_list"`
}

// Checker fetches status list tokens and reads entries from them.
type Checker struct {
	httpClient httputil.Client
}

// NewChecker returns a Checker that fetches status lists with httpClient.
func NewChecker(httpClient httputil.Client) *Checker {
	return &Checker{httpClient: httpClient}
}

// Status returns the status value of the entry ref points at. The status list token must be
// signed by one of keys.
func (c *Checker) Status(ctx context.Context, ref *Reference, keys []jose.JSONWebKey) (int, error) {
	body, err := httputil.Get(ctx, c.httpClient, ref.URI, mediaTypeStatusListJWT)
	if err != nil {
		return 0, err
	}

	tok, err := cryptoctx.Verify(strings.TrimSpace(string(body)), keys)
	if err != nil {
		return 0, fmt.Errorf("verify status list token: %w", err)
	}

	var claims statusListClaims
	if err = tok.Claims(&claims); err != nil {
		return 0, err
	}

	if claims.Subject != "" && claims.Subject != ref.URI {
		return 0, fmt.Errorf("status list subject %q does not match %q", claims.Subject, ref.URI)
	}

	bits := claims.StatusList.Bits
	if bits == 0 {
		bits = 1
	}

	if bits != 1 && bits != 2 && bits != 4 && bits != 8 {
		return 0, fmt.Errorf("unsupported status size %d", bits)
	}

	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(claims.StatusList.Lst, "="))
	if err != nil {
		return 0, fmt.Errorf("decode lst: %w", err)
	}

	list, err := inflate(compressed)
	if err != nil {
		return 0, err
	}

	status, err := entry(list, ref.Idx, bits)
	if err != nil {
		return 0, err
	}

	logger.Debug("Status list entry read", log.WithURL(ref.URI), logfields.WithStatusIndex(ref.Idx))

	return status, nil
}

// Check returns a CredentialInvalidStatus issuer error when the entry is not valid.
func (c *Checker) Check(ctx context.Context, ref *Reference, keys []jose.JSONWebKey) error {
	status, err := c.Status(ctx, ref, keys)
	if err != nil {
		return err
	}

	if status != StatusValid {
		return walleterr.NewIssuerResponseError(walleterr.CredentialInvalidStatus, 0,
			fmt.Errorf("credential status is %d", status)).
			WithURL(ref.URI).
			WithComponent(walleterr.StatusComponent)
	}

	return nil
}

// maxListSize bounds a decompressed list: 16 MiB holds 2^27 one bit entries.
const maxListSize = 16 << 20

var errListTooLarge = errors.New("decompressed status list exceeds size limit")

func inflate(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}

	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			logger.Warn("Failed to close zlib reader", log.WithError(closeErr))
		}
	}()

	b, err := io.ReadAll(io.LimitReader(r, maxListSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompress status list: %w", err)
	}

	if len(b) > maxListSize {
		return nil, fmt.Errorf("%w of %d bytes", errListTooLarge, maxListSize)
	}

	return b, nil
}

var errIndexOutOfRange = errors.New("status index out of range")

func entry(list []byte, idx, bits int) (int, error) {
	if idx < 0 {
		return 0, fmt.Errorf("%w: %d", errIndexOutOfRange, idx)
	}

	pos := idx * bits
	byteIdx := pos / 8

	if byteIdx >= len(list) {
		return 0, fmt.Errorf("%w: %d (list has %d bytes)", errIndexOutOfRange, idx, len(list))
	}

	mask := (1 << bits) - 1

	return (int(list[byteIdx]) >> (pos % 8)) & mask, nil
}

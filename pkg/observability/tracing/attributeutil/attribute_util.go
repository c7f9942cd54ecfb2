/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package attributeutil

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/otel/attribute"
)

const redacted = "[REDACTED]"

// JSON returns attribute with the value marshaled to JSON. Value can be redacted using WithRedacted option.
func JSON(key string, value interface{}, opts ...Opt) attribute.KeyValue {
	b, err := json.Marshal(value)
	if err != nil {
		return attribute.KeyValue{Key: attribute.Key(key)}
	}

	return attribute.String(key, string(redactJSON(b, newOptions(opts))))
}

// JWTClaims returns attribute with the unverified payload of a compact JWS. The signature is never recorded.
// Claims can be redacted using WithRedacted option.
func JWTClaims(key, compact string, opts ...Opt) attribute.KeyValue {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 { //nolint:gomnd
		return attribute.KeyValue{Key: attribute.Key(key)}
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || !gjson.ValidBytes(payload) {
		return attribute.KeyValue{Key: attribute.Key(key)}
	}

	return attribute.String(key, string(redactJSON(payload, newOptions(opts))))
}

// FormParams returns attribute with value represented as form params sorted by name.
// Value can be redacted using WithRedacted option.
func FormParams(key string, params map[string][]string, opts ...Opt) attribute.KeyValue {
	op := newOptions(opts)

	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}

	sort.Strings(names)

	var buf strings.Builder

	for _, k := range names {
		v := params[k]

		if buf.Len() > 0 {
			buf.WriteByte('&')
		}

		if op.isRedacted(k) {
			v = []string{redacted}
		}

		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(strings.Join(v, ","))
	}

	return attribute.String(key, buf.String())
}

func redactJSON(b []byte, op *options) []byte {
	for _, path := range op.redacted {
		if gjson.GetBytes(b, path).Exists() {
			b, _ = sjson.SetBytes(b, path, redacted)
		}
	}

	return b
}

type options struct {
	redacted []string
}

func newOptions(opts []Opt) *options {
	op := &options{}

	for _, opt := range opts {
		opt(op)
	}

	return op
}

func (o *options) isRedacted(key string) bool {
	for _, r := range o.redacted {
		if r == key {
			return true
		}
	}

	return false
}

type Opt func(*options)

// WithRedacted returns option that replaces value with [REDACTED] for the given key. In case of JSON attribute, key is
// a path to the value to be redacted. Refer to https://github.com/tidwall/gjson/blob/master/SYNTAX.md for path syntax.
func WithRedacted(key string) Opt {
	return func(o *options) {
		o.redacted = append(o.redacted, key)
	}
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package httputil holds the request helpers shared by the protocol clients.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/pkg/walleterr"
)

var logger = log.New("iowallet-http")

const maxBodySize = 4 << 20

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// Client sends HTTP requests.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Request describes an outgoing call and the statuses accepted for it.
type Request struct {
	Method   string
	URL      string
	Header   http.Header
	Body     []byte
	Expected []int
}

// Do sends req and reads the response. A status outside req.Expected (200 when empty) yields an
// UnexpectedStatusCodeError carrying the URL, the status and the response body.
func Do(ctx context.Context, client Client, req *Request) (*Response, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("Failed to close response body", log.WithError(closeErr))
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	expected := req.Expected
	if len(expected) == 0 {
		expected = []int{http.StatusOK}
	}

	for _, status := range expected {
		if resp.StatusCode == status {
			return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
		}
	}

	logger.Debug("Unexpected response status",
		log.WithURL(req.URL), log.WithHTTPStatus(resp.StatusCode))

	return nil, walleterr.NewUnexpectedStatusCodeError(req.URL, resp.StatusCode, string(b))
}

// Get fetches rawURL and expects 200.
func Get(ctx context.Context, client Client, rawURL, accept string) ([]byte, error) {
	header := http.Header{}
	if accept != "" {
		header.Set("Accept", accept)
	}

	resp, err := Do(ctx, client, &Request{Method: http.MethodGet, URL: rawURL, Header: header})
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func GetJSON(ctx context.Context, client Client, rawURL string, v interface{}) error {
	b, err := Get(ctx, client, rawURL, ContentTypeJSON)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}

	return nil
}

// PostForm sends form as application/x-www-form-urlencoded.
func PostForm(ctx context.Context, client Client, rawURL string, form url.Values, header http.Header,
	expected ...int) (*Response, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}

	h.Set("Content-Type", ContentTypeForm)

	return Do(ctx, client, &Request{
		Method:   http.MethodPost,
		URL:      rawURL,
		Header:   h,
		Body:     []byte(form.Encode()),
		Expected: expected,
	})
}

// PostJSON marshals payload and sends it as application/json.
func PostJSON(ctx context.Context, client Client, rawURL string, payload interface{}, header http.Header,
	expected ...int) (*Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}

	h.Set("Content-Type", ContentTypeJSON)

	return Do(ctx, client, &Request{
		Method:   http.MethodPost,
		URL:      rawURL,
		Header:   h,
		Body:     b,
		Expected: expected,
	})
}

// WithQuery returns rawURL with params merged into its query.
func WithQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	q := u.Query()

	for k, v := range params {
		q[k] = v
	}

	u.RawQuery = q.Encode()

	return u.String(), nil
}

// JoinPath appends a path to a base URL, keeping exactly one slash between them.
func JoinPath(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

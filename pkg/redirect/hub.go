/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package redirect

import (
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"
)

const landingPage = "<p>Authorization completed. You may now close this page.</p>"

// Hub is a Source fed by an HTTP callback endpoint.
type Hub struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(string)
}

// NewHub returns a Hub without listeners.
func NewHub() *Hub {
	return &Hub{listeners: map[int]func(string){}}
}

// Subscribe implements Source.
func (h *Hub) Subscribe(fn func(redirectURL string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	h.listeners[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.listeners, id)
	}
}

// Publish hands redirectURL to every listener.
func (h *Hub) Publish(redirectURL string) {
	h.mu.Lock()
	listeners := make([]func(string), 0, len(h.listeners))

	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(redirectURL)
	}
}

// Listeners returns the number of registered listeners.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.listeners)
}

// Handler publishes the URL of every request, rebuilt against publicBaseURL so that it matches
// the redirect_uri registered with the authorization server.
func (h *Hub) Handler(publicBaseURL string) echo.HandlerFunc {
	base := strings.TrimRight(publicBaseURL, "/")

	return func(c echo.Context) error {
		redirectURL := base + c.Request().URL.RequestURI()

		logger.Debug("Redirect received", log.WithURL(redirectURL))

		h.Publish(redirectURL)

		return c.HTML(http.StatusOK, landingPage)
	}
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where the wallet metrics are scraped from.
const MetricsPath = "/metrics"

// Handler returns the echo handler serving the metrics of gatherer in the OpenMetrics format.
// A nil gatherer serves the default registry the wallet metrics are registered with.
func Handler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}))
}

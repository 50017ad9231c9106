// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends every collector in the default registry to a Pushgateway.
// The CLI is short-lived, so metrics are pushed once at exit rather than
// scraped.
func Push(gatewayURL, job string) error {
	return PushFrom(prometheus.DefaultGatherer, gatewayURL, job)
}

// PushFrom pushes the metrics gathered by g.
func PushFrom(g prometheus.Gatherer, gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(g).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

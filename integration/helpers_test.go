//go:build integration

package integration

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/bebsworthy/pathsieve/internal/metrics"
)

func mustRegistry(t *testing.T, c *metrics.Collector) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, c.Register(reg))
	return reg
}

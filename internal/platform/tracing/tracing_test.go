package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/phrazzld/cityinfo-api/internal/config"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.ObservabilityConfig{TracingEnabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitEnabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, config.ObservabilityConfig{
		TracingEnabled: true,
		OTLPEndpoint:   "localhost:4318",
		ServiceName:    "cityinfo-test",
	})
	require.NoError(t, err)
	// No spans were recorded, so shutdown does not need a reachable collector.
	assert.NoError(t, shutdown(ctx))
}

func TestNewResourceCarriesServiceName(t *testing.T) {
	res := newResource("cityinfo-api")
	value, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "cityinfo-api", value.AsString())
}

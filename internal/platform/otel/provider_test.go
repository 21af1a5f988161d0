package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"storeops/internal/platform/config"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OtelConfig{ServiceName: "storeops"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

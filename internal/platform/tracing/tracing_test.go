package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStdoutExporterWhenNoEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, Config{Enabled: true, ServiceName: "kashpages-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

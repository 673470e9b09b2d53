package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid ports", func(t *testing.T) {
		ports := &Ports{Resources: &mockResourceService{}, Jobs: &mockJobService{}}
		server, err := NewServer(ports)

		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.server)
	})

	t.Run("fails without job service", func(t *testing.T) {
		_, err := NewServer(&Ports{Resources: &mockResourceService{}})
		assert.ErrorIs(t, err, ErrMissingJobService)
	})

	t.Run("fails with nil ports", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.Error(t, err)
	})
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports Ports
		want  error
	}{
		{"complete", Ports{Resources: &mockResourceService{}, Jobs: &mockJobService{}}, nil},
		{"missing resources", Ports{Jobs: &mockJobService{}}, ErrMissingResourceService},
		{"missing jobs", Ports{Resources: &mockResourceService{}}, ErrMissingJobService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ports.Validate())
		})
	}
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Resources: &mockResourceService{}, Jobs: &mockJobService{}})
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- server.RunHTTP(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

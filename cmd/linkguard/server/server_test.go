package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkguard/internal/config"
	"linkguard/pkg/testutil"
)

func TestRunShutsDownOnCancel(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.BackendResponse{Status: http.StatusOK, Body: testutil.MinimalHTTPResult})
	cfg := &config.Config{
		Backend: config.BackendConfig{URL: backend.CheckURL(), QueryParam: config.DefaultQueryParam},
		Report:  config.ReportConfig{DateLayout: config.DefaultDateLayout},
		Server:  config.ServerConfig{Addr: "127.0.0.1:0"},
		Handoff: config.HandoffConfig{File: testutil.CreateTestFile(t, t.TempDir(), "pending.txt", "")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- Run(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		require.Fail(t, "server did not shut down")
	}
}

func TestServerCommandFlags(t *testing.T) {
	cmd := NewServerCommand(func() (*config.Config, error) { return &config.Config{}, nil })

	addr := cmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, config.DefaultServerAddr, addr.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("handoff-file"))
}

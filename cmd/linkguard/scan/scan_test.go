package scan

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkguard/internal/config"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/hooks"
	"linkguard/pkg/logger"
	"linkguard/pkg/testutil"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	m.Run()
}

func testConfig(url string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{URL: url, QueryParam: config.DefaultQueryParam},
		Report:  config.ReportConfig{DateLayout: config.DefaultDateLayout},
	}
}

func TestAppRun(t *testing.T) {
	tests := []struct {
		name     string
		resp     testutil.BackendResponse
		output   string
		target   string
		wantErr  string
		contains []string
	}{
		{
			name:     "text report",
			resp:     testutil.BackendResponse{Status: http.StatusOK, Body: testutil.MaliciousHTTPResult},
			output:   "text",
			target:   "http://evil.example",
			contains: []string{"Domain &", "/100"},
		},
		{
			name:     "json report",
			resp:     testutil.BackendResponse{Status: http.StatusOK, Body: testutil.MinimalHTTPResult},
			output:   "json",
			target:   "http://example.com",
			contains: []string{`"view": "http"`, `"supported": true`},
		},
		{
			name:     "yaml report",
			resp:     testutil.BackendResponse{Status: http.StatusOK, Body: testutil.UnknownProtocolResult},
			output:   "yaml",
			target:   "telnet://host",
			contains: []string{"supported: false"},
		},
		{
			name:     "backend error",
			resp:     testutil.BackendResponse{Status: http.StatusBadGateway, Body: `{"detail":"upstream down"}`},
			output:   "text",
			target:   "http://example.com",
			wantErr:  "upstream down",
			contains: []string{"Analysis Failed", "upstream down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewBackend(t, tt.resp)
			var out bytes.Buffer
			app := NewApp(testConfig(backend.CheckURL()), &Options{Output: tt.output}, &out)

			err := app.Run(context.Background(), tt.target)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			assert.Len(t, backend.Requests(), 1)
		})
	}
}

func TestAppRunRejectsBadInput(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.BackendResponse{Status: http.StatusOK, Body: testutil.MinimalHTTPResult})

	app := NewApp(testConfig(backend.CheckURL()), &Options{Output: "text"}, &bytes.Buffer{})
	assert.ErrorIs(t, app.Run(context.Background(), "   "), apperrors.ErrBlankInput)

	app = NewApp(testConfig(backend.CheckURL()), &Options{Output: "xml"}, &bytes.Buffer{})
	assert.Error(t, app.Run(context.Background(), "http://example.com"))

	assert.Empty(t, backend.Requests())
}

func TestInitHooks(t *testing.T) {
	registry := hooks.NewRegistry()
	InitHooks(registry, logger.Default(), nil, "medium")
	assert.NotNil(t, registry.Get("summary"))
	assert.Nil(t, registry.Get("notifier"))
}

func TestListHooksCommand(t *testing.T) {
	cmd := NewListHooksCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "• notifier")
	assert.Contains(t, out.String(), "• summary")
}

package templates

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkguard/internal/dao"
	"linkguard/internal/services"
	"linkguard/pkg/report"
	"linkguard/pkg/risk"
	"linkguard/pkg/testutil"
)

func snapshot(t *testing.T, payload string) services.Snapshot {
	t.Helper()
	r, err := dao.DecodeResult([]byte(payload), "")
	require.NoError(t, err)
	return services.Snapshot{State: services.StateSuccess, Input: r.Input, Result: r, Report: report.Build(r, report.Options{})}
}

func render(t *testing.T, snap services.Snapshot) string {
	t.Helper()
	out, err := Render(context.Background(), Home(snap))
	require.NoError(t, err)
	return out
}

func TestHomeStates(t *testing.T) {
	tests := []struct {
		name     string
		snap     services.Snapshot
		contains []string
		absent   []string
	}{
		{
			name:     "idle",
			snap:     services.Snapshot{State: services.StateIdle},
			contains: []string{`action="/scan"`, `name="target"`},
			absent:   []string{"http-equiv=\"refresh\""},
		},
		{
			name:     "scanning",
			snap:     services.Snapshot{State: services.StateScanning, Input: "http://example.com"},
			contains: []string{"Analyzing", "http://example.com", `http-equiv="refresh"`},
		},
		{
			name:     "error",
			snap:     services.Snapshot{State: services.StateError, Error: "scan <timed> out"},
			contains: []string{"Analysis Failed", "scan &lt;timed&gt; out", "Scan Another Link"},
		},
		{
			name:     "unsupported",
			snap:     snapshot(t, testutil.UnknownProtocolResult),
			contains: []string{"Unsupported Result", "unknown protocol type: &#39;telnet&#39;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.snap)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestResultPage(t *testing.T) {
	snap := snapshot(t, testutil.MaliciousHTTPResult)
	require.NoError(t, snap.Report.ToggleCard("content"))

	out := render(t, snap)

	assert.Contains(t, out, `data-tier="high"`)
	assert.Contains(t, out, `stroke="#ef4444"`)
	assert.Contains(t, out, "<h2>Malicious</h2>")
	assert.Contains(t, out, "Redirected to: http://bad.example/login")
	assert.Contains(t, out, `href="https://urlscan.io/result/123/"`)
	assert.Contains(t, out, "View Report")
	assert.Contains(t, out, `class="v-warning">&#9888; Malicious`)
	assert.Contains(t, out, "88%")
	assert.Contains(t, out, "Shady Registrar")
	assert.Contains(t, out, `id="card-content"`)
	assert.Contains(t, out, `aria-expanded="false"`)
	assert.Contains(t, out, "Scan Another Link")
}

func TestLinkValueIsSanitized(t *testing.T) {
	snap := snapshot(t, `{"input":"x","protocol":"http","verdict":"","risk_score":0,
		"details":{"urlscan":{"result_url":"javascript:alert(1)"}}}`)

	out := render(t, snap)
	assert.NotContains(t, out, "javascript:alert")
}

func TestContentOmitsLayout(t *testing.T) {
	tests := []struct {
		name string
		snap services.Snapshot
		want string
	}{
		{name: "idle", snap: services.Snapshot{State: services.StateIdle}, want: `name="target"`},
		{name: "scanning", snap: services.Snapshot{State: services.StateScanning, Input: "ftp://files"}, want: "ftp://files"},
		{name: "success without report", snap: services.Snapshot{State: services.StateSuccess}, want: "Unsupported Result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(context.Background(), Content(tt.snap))
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "<!DOCTYPE html>")
			assert.NotContains(t, out, "/static/linkguard.css")
		})
	}
}

func TestCardCollapseHidesRows(t *testing.T) {
	snap := snapshot(t, testutil.MaliciousHTTPResult)
	card := snap.Report.Card("domain")
	require.NotNil(t, card)
	require.NotEmpty(t, card.Rows)
	label := card.Rows[0].Label

	expanded, err := Render(context.Background(), CardView(card))
	require.NoError(t, err)
	assert.Contains(t, expanded, `aria-expanded="true"`)
	assert.Contains(t, expanded, label)
	assert.Contains(t, expanded, `action="/cards/domain/toggle"`)

	require.NoError(t, snap.Report.ToggleCard("domain"))
	collapsed, err := Render(context.Background(), CardView(snap.Report.Card("domain")))
	require.NoError(t, err)
	assert.Contains(t, collapsed, `aria-expanded="false"`)
	assert.NotContains(t, collapsed, `class="row"`)
}

func TestGaugeAttributes(t *testing.T) {
	out, err := Render(context.Background(), Gauge(risk.NewGauge(50)))
	require.NoError(t, err)

	assert.Contains(t, out, `data-tier="medium"`)
	assert.Contains(t, out, `stroke-dasharray="`+svgNumber(risk.NewGauge(50).Circumference)+`"`)
	assert.Contains(t, out, ">50</text>")
}

func TestLayoutLinksStylesheet(t *testing.T) {
	out := render(t, services.Snapshot{State: services.StateIdle})
	assert.Contains(t, out, `<link rel="stylesheet" href="/static/linkguard.css">`)

	css, err := fs.ReadFile(Static(), "linkguard.css")
	require.NoError(t, err)
	assert.Contains(t, string(css), ".v-warning")
}

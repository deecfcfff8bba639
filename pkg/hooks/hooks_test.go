package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkguard/internal/models"
	"linkguard/internal/notification"
	"linkguard/pkg/report"
	"linkguard/pkg/risk"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(msg notification.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func hookContext(t *testing.T, payload string) HookContext {
	t.Helper()
	var r models.ScanResult
	require.NoError(t, json.Unmarshal([]byte(payload), &r))
	return HookContext{Context: context.Background(), Result: &r, Report: report.Build(&r, report.Options{})}
}

func TestNotifierHookTierGate(t *testing.T) {
	tests := []struct {
		name     string
		minTier  risk.Tier
		score    string
		wantSent bool
	}{
		{name: "high result, high threshold", minTier: risk.High, score: "85", wantSent: true},
		{name: "medium result, high threshold", minTier: risk.High, score: "50", wantSent: false},
		{name: "medium result, medium threshold", minTier: risk.Medium, score: "30", wantSent: true},
		{name: "low result, medium threshold", minTier: risk.Medium, score: "29", wantSent: false},
		{name: "default threshold is high", minTier: "", score: "69", wantSent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(MockSender)
			if tt.wantSent {
				sender.On("Send", mock.AnythingOfType("notification.Message")).Return(nil)
			}

			hook := NewNotifierHook(NotifierHookConfig{MinTier: tt.minTier}, sender)
			ctx := hookContext(t, `{"input":"http://x.example","protocol":"http","verdict":"Bad","risk_score":`+tt.score+`,"details":{}}`)

			require.NoError(t, hook.Execute(ctx))
			if tt.wantSent {
				sender.AssertExpectations(t)
			} else {
				sender.AssertNotCalled(t, "Send", mock.Anything)
			}
		})
	}
}

func TestNotifierHookMessage(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.MatchedBy(func(msg notification.Message) bool {
		return msg.Severity == "high" &&
			msg.Description == "Analysis for: http://bad.example" &&
			msg.Fields["Verdict"] == "Malicious" &&
			msg.Fields["Risk Score"] == "95" &&
			msg.Fields["Redirected To"] == "http://bad.example/login" &&
			msg.URL == "https://urlscan.io/result/123/"
	})).Return(nil)

	ctx := hookContext(t, `{
		"input": "http://bad.example",
		"protocol": "http",
		"verdict": "❌ Malicious",
		"risk_score": 95,
		"details": {"final_url": "http://bad.example/login", "urlscan": {"result_url": "https://urlscan.io/result/123/"}}
	}`)

	require.NoError(t, NewNotifierHook(NotifierHookConfig{}, sender).Execute(ctx))
	sender.AssertExpectations(t)
}

func TestNotifierHookSkipsUnsupported(t *testing.T) {
	sender := new(MockSender)
	ctx := hookContext(t, `{"input":"x","protocol":"telnet","verdict":"","risk_score":100,"details":{}}`)

	require.NoError(t, NewNotifierHook(NotifierHookConfig{MinTier: risk.Low}, sender).Execute(ctx))
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

type stubHook struct {
	name  string
	err   error
	panic bool
	calls int
}

func (s *stubHook) Name() string        { return s.name }
func (s *stubHook) Description() string { return "stub " + s.name }
func (s *stubHook) Execute(HookContext) error {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.err
}

func TestRegistryRunAll(t *testing.T) {
	r := NewRegistry()
	ok := &stubHook{name: "a"}
	failing := &stubHook{name: "b", err: errors.New("send failed")}
	panicking := &stubHook{name: "c", panic: true}
	r.Register("a", ok)
	r.Register("b", failing)
	r.Register("c", panicking)

	err := r.RunAll(HookContext{Context: context.Background()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hook b: send failed")
	assert.Contains(t, err.Error(), "hook c: panic: boom")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, panicking.calls)

	assert.Equal(t, []HookInfo{
		{Name: "a", Description: "stub a"},
		{Name: "b", Description: "stub b"},
		{Name: "c", Description: "stub c"},
	}, r.List())
	assert.Same(t, ok, r.Get("a"))
}

func TestSummaryHook(t *testing.T) {
	h := NewSummaryHook(nil)
	assert.Equal(t, "summary", h.Name())
	assert.NoError(t, h.Execute(hookContext(t, `{"input":"x","protocol":"ssh","verdict":"Safe","risk_score":1,"details":{}}`)))
	assert.NoError(t, h.Execute(HookContext{}))
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkguard/internal/config"
	"linkguard/internal/dao"
	"linkguard/internal/models"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/formatter"
	"linkguard/pkg/hooks"
	"linkguard/pkg/logger"
	"linkguard/pkg/risk"
	"linkguard/pkg/testutil"
)

type MockScanDAO struct {
	mock.Mock
}

func (m *MockScanDAO) CheckTarget(ctx context.Context, input string) (*models.ScanResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScanResult), args.Error(1)
}

func quietLogger() *logger.Logger {
	return logger.NewLogger(logrus.PanicLevel)
}

func wait(t *testing.T, ch <-chan Snapshot) (Snapshot, bool) {
	t.Helper()
	select {
	case snap, ok := <-ch:
		return snap, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for scan")
		return Snapshot{}, false
	}
}

func TestSubmitSuccessEndToEnd(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.BackendResponse{Body: testutil.MinimalHTTPResult})
	d := dao.NewScanDAO(config.BackendConfig{URL: backend.CheckURL(), QueryParam: "url"}, nil, quietLogger())
	s := NewSession(d, WithLogger(quietLogger()))

	ch, ok := s.Submit(context.Background(), "  http://example.com  ")
	require.True(t, ok)
	assert.Equal(t, StateScanning, s.Snapshot().State)

	snap, _ := wait(t, ch)
	require.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, "http://example.com", snap.Input)
	assert.Empty(t, snap.Error)

	rep := snap.Report
	require.NotNil(t, rep)
	assert.Equal(t, risk.Low, rep.Tier())
	assert.Equal(t, "Safe", rep.Header.Verdict)

	domain := rep.Card("domain")
	require.NotNil(t, domain)
	require.Len(t, domain.Rows, 1)
	assert.Equal(t, "IP Address", domain.Rows[0].Label)

	content := rep.Card("content")
	require.Len(t, content.Rows, 1)
	assert.Equal(t, formatter.KindBoolean, content.Rows[0].Value.Kind)
	assert.True(t, content.Rows[0].Value.Positive)

	assert.Len(t, backend.Requests(), 1)
}

func TestSubmitErrorEndToEnd(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.BackendResponse{Status: 500, Body: `{"detail":"scan timed out"}`})
	d := dao.NewScanDAO(config.BackendConfig{URL: backend.CheckURL(), QueryParam: "url"}, nil, quietLogger())
	s := NewSession(d, WithLogger(quietLogger()))

	ch, ok := s.Submit(context.Background(), "http://example.com")
	require.True(t, ok)

	snap, _ := wait(t, ch)
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "scan timed out", snap.Error)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Report)
}

func TestSubmitBlankIsNoop(t *testing.T) {
	m := new(MockScanDAO)
	s := NewSession(m, WithLogger(quietLogger()))

	for _, input := range []string{"", "   ", "\t\n"} {
		ch, ok := s.Submit(context.Background(), input)
		assert.False(t, ok)
		assert.Nil(t, ch)
	}

	assert.Equal(t, StateIdle, s.Snapshot().State)
	m.AssertNotCalled(t, "CheckTarget", mock.Anything, mock.Anything)
}

func TestSubmitWhileScanningIsIgnored(t *testing.T) {
	release := make(chan time.Time)
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "http://first.example").
		WaitUntil(release).
		Return(&models.ScanResult{Input: "http://first.example", Protocol: models.ProtocolHTTP, RiskScore: 80}, nil).
		Once()

	s := NewSession(m, WithLogger(quietLogger()))

	ch, ok := s.Submit(context.Background(), "http://first.example")
	require.True(t, ok)

	_, ok = s.Submit(context.Background(), "http://second.example")
	assert.False(t, ok)
	assert.Equal(t, "http://first.example", s.Snapshot().Input)

	close(release)
	snap, _ := wait(t, ch)
	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, risk.High, snap.Report.Tier())

	m.AssertNumberOfCalls(t, "CheckTarget", 1)
}

func TestResetDuringScanDiscardsResponse(t *testing.T) {
	release := make(chan time.Time)
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "http://slow.example").
		WaitUntil(release).
		Return(&models.ScanResult{Input: "http://slow.example", Protocol: models.ProtocolHTTP}, nil)

	s := NewSession(m, WithLogger(quietLogger()))
	ch, ok := s.Submit(context.Background(), "http://slow.example")
	require.True(t, ok)

	s.Reset()
	close(release)

	_, delivered := wait(t, ch)
	assert.False(t, delivered, "discarded scan must not deliver a snapshot")

	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Input)
	assert.Nil(t, snap.Report)
}

func TestResetCancelsRequestContext(t *testing.T) {
	block := make(chan struct{})
	backend := testutil.NewBackend(t, testutil.BackendResponse{Body: testutil.MinimalHTTPResult, Block: block})
	t.Cleanup(func() { close(block) })

	d := dao.NewScanDAO(config.BackendConfig{URL: backend.CheckURL(), QueryParam: "url"}, nil, quietLogger())
	s := NewSession(d, WithLogger(quietLogger()))

	ch, ok := s.Submit(context.Background(), "http://example.com")
	require.True(t, ok)
	require.True(t, testutil.Eventually(t, 2*time.Second, func() bool { return len(backend.Requests()) == 1 }))

	s.Reset()
	_, delivered := wait(t, ch)
	assert.False(t, delivered)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestResetFromTerminalStates(t *testing.T) {
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "ok").Return(&models.ScanResult{Input: "ok", Protocol: models.ProtocolSSH}, nil)
	m.On("CheckTarget", mock.Anything, "bad").Return(nil, apperrors.NewBackendError(502, "upstream down", nil))

	s := NewSession(m, WithLogger(quietLogger()))

	for _, input := range []string{"ok", "bad"} {
		ch, ok := s.Submit(context.Background(), input)
		require.True(t, ok)
		wait(t, ch)
		assert.NotEqual(t, StateIdle, s.Snapshot().State)

		s.Reset()
		snap := s.Snapshot()
		assert.Equal(t, StateIdle, snap.State)
		assert.Empty(t, snap.Input)
		assert.Empty(t, snap.Error)
		assert.Nil(t, snap.Result)
	}
}

func TestNewSubmitClearsPreviousResult(t *testing.T) {
	release := make(chan time.Time)
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "first").Return(&models.ScanResult{Input: "first", Protocol: models.ProtocolHTTP}, nil).Once()
	m.On("CheckTarget", mock.Anything, "second").WaitUntil(release).Return(nil, errors.New("boom")).Once()

	s := NewSession(m, WithLogger(quietLogger()))
	ch, _ := s.Submit(context.Background(), "first")
	wait(t, ch)

	ch, ok := s.Submit(context.Background(), "second")
	require.True(t, ok)
	snap := s.Snapshot()
	assert.Equal(t, StateScanning, snap.State)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Report)

	close(release)
	snap, _ = wait(t, ch)
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "boom", snap.Error)
}

func TestToggleCardOnSession(t *testing.T) {
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "ftp://x").Return(&models.ScanResult{Input: "ftp://x", Protocol: models.ProtocolFTP}, nil)

	s := NewSession(m, WithLogger(quietLogger()))
	assert.ErrorIs(t, s.ToggleCard("ftp-server"), apperrors.ErrUnknownCard)

	ch, _ := s.Submit(context.Background(), "ftp://x")
	wait(t, ch)

	before := s.Snapshot()
	require.NoError(t, s.ToggleCard("ftp-server"))
	after := s.Snapshot()

	assert.False(t, before.Report.Card("ftp-server").Collapsed, "snapshots are copies")
	assert.True(t, after.Report.Card("ftp-server").Collapsed)
	assert.False(t, after.Report.Card("domain").Collapsed)
}

type recordingHook struct {
	calls chan hooks.HookContext
	err   error
}

func (r *recordingHook) Name() string        { return "recording" }
func (r *recordingHook) Description() string { return "records calls" }
func (r *recordingHook) Execute(ctx hooks.HookContext) error {
	r.calls <- ctx
	return r.err
}

func TestHooksRunOnSuccessOnly(t *testing.T) {
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "good").Return(&models.ScanResult{Input: "good", Protocol: models.ProtocolHTTP, RiskScore: 90}, nil)
	m.On("CheckTarget", mock.Anything, "bad").Return(nil, errors.New("nope"))

	hook := &recordingHook{calls: make(chan hooks.HookContext, 2), err: errors.New("hook failure is logged only")}
	reg := hooks.NewRegistry()
	reg.Register(hook.Name(), hook)

	s := NewSession(m, WithHooks(reg), WithLogger(quietLogger()))

	ch, _ := s.Submit(context.Background(), "good")
	snap, _ := wait(t, ch)
	assert.Equal(t, StateSuccess, snap.State)

	select {
	case hc := <-hook.calls:
		assert.Equal(t, "good", hc.Result.Input)
		assert.Equal(t, risk.High, hc.Report.Tier())
	default:
		t.Fatal("hook was not run before the snapshot was delivered")
	}

	s.Reset()
	ch, _ = s.Submit(context.Background(), "bad")
	wait(t, ch)
	assert.Len(t, hook.calls, 0)
}

func TestSeedTriggersScan(t *testing.T) {
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "http://seeded.example").Return(&models.ScanResult{Input: "http://seeded.example", Protocol: models.ProtocolHTTP}, nil)

	s := NewSession(m, WithLogger(quietLogger()))
	ch, ok := s.Seed(context.Background(), "http://seeded.example")
	require.True(t, ok)

	snap, _ := wait(t, ch)
	assert.Equal(t, StateSuccess, snap.State)
	assert.NotEmpty(t, snap.SessionID)
}

func TestSessionTimeout(t *testing.T) {
	m := new(MockScanDAO)
	m.On("CheckTarget", mock.Anything, "x").Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	}).Return(&models.ScanResult{Input: "x"}, nil)

	s := NewSession(m, WithTimeout(time.Minute), WithLogger(quietLogger()))
	ch, _ := s.Submit(context.Background(), "x")
	wait(t, ch)
}

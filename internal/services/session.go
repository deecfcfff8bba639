package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"linkguard/internal/dao"
	"linkguard/internal/models"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/hooks"
	"linkguard/pkg/logger"
	"linkguard/pkg/report"
)

type State string

const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
	StateSuccess  State = "success"
	StateError    State = "error"
)

// Snapshot is an immutable copy of the session for renderers.
type Snapshot struct {
	SessionID   string             `json:"session_id"`
	State       State              `json:"state"`
	Input       string             `json:"input"`
	Result      *models.ScanResult `json:"result,omitempty"`
	Report      *report.Report     `json:"report,omitempty"`
	Error       string             `json:"error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
}

type SessionMethods interface {
	Submit(ctx context.Context, input string) (<-chan Snapshot, bool)
	Seed(ctx context.Context, value string) (<-chan Snapshot, bool)
	Reset()
	Snapshot() Snapshot
	ToggleCard(id string) error
}

// Session drives one scan at a time: idle -> scanning -> success|error,
// and back to idle on Reset.
type Session struct {
	mu sync.Mutex

	id          string
	state       State
	input       string
	result      *models.ScanResult
	report      *report.Report
	errMsg      string
	startedAt   time.Time
	completedAt time.Time

	// generation is bumped on every submit and reset; a response whose
	// generation no longer matches is dropped.
	generation uint64
	cancel     context.CancelFunc

	scanDao    dao.ScanDAO
	hooks      *hooks.Registry
	reportOpts report.Options
	timeout    time.Duration
	logger     *logger.Logger
}

type OptFunc func(*Session)

func WithHooks(r *hooks.Registry) OptFunc {
	return func(s *Session) {
		s.hooks = r
	}
}

func WithReportOptions(opts report.Options) OptFunc {
	return func(s *Session) {
		s.reportOpts = opts
	}
}

// WithTimeout bounds each backend request. Zero means no timeout.
func WithTimeout(d time.Duration) OptFunc {
	return func(s *Session) {
		s.timeout = d
	}
}

func WithLogger(l *logger.Logger) OptFunc {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSession(scanDao dao.ScanDAO, opts ...OptFunc) *Session {
	s := &Session{
		id:      uuid.NewString(),
		state:   StateIdle,
		scanDao: scanDao,
		logger:  logger.NewLogger(logrus.InfoLevel),
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Submit starts a scan of input. It returns false without contacting the
// backend when input is blank or a scan is already running. The returned
// channel receives the final snapshot once; it is closed without a value if
// the scan is discarded by Reset.
func (s *Session) Submit(ctx context.Context, input string) (<-chan Snapshot, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		s.logger.WithError(apperrors.ErrBlankInput).Debug("Ignoring submit")
		return nil, false
	}

	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		s.logger.WithFields(logger.Fields{"input": input}).WithError(apperrors.ErrScanInFlight).Debug("Ignoring submit")
		return nil, false
	}

	s.generation++
	gen := s.generation
	s.state = StateScanning
	s.input = input
	s.result = nil
	s.report = nil
	s.errMsg = ""
	s.startedAt = time.Now()
	s.completedAt = time.Time{}

	reqCtx := logger.ContextWithSessionID(context.WithoutCancel(ctx), s.id)
	var cancel context.CancelFunc
	if s.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(reqCtx, s.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(reqCtx)
	}
	s.cancel = cancel
	s.mu.Unlock()

	done := make(chan Snapshot, 1)
	go s.run(reqCtx, cancel, gen, input, done)
	return done, true
}

// Seed sets the input and triggers a scan; it is the entry point for a
// pending target handed over by the host.
func (s *Session) Seed(ctx context.Context, value string) (<-chan Snapshot, bool) {
	return s.Submit(ctx, value)
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, input string, done chan<- Snapshot) {
	defer close(done)
	defer cancel()

	result, err := s.scanDao.CheckTarget(ctx, input)

	var rep *report.Report
	if err == nil {
		rep = report.Build(result, s.reportOpts)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.WithFields(logger.Fields{"input": input}).Info("Discarding response for reset scan")
		return
	}
	s.cancel = nil
	s.completedAt = time.Now()
	if err != nil {
		s.state = StateError
		s.errMsg = apperrors.UserMessage(err)
	} else {
		s.state = StateSuccess
		s.result = result
		s.report = rep
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.WithScan(input, "").WithError(err).Warn("Scan failed")
	} else {
		s.runHooks(ctx, snap)
	}

	done <- snap
}

func (s *Session) runHooks(ctx context.Context, snap Snapshot) {
	if s.hooks == nil {
		return
	}
	err := s.hooks.RunAll(hooks.HookContext{
		Context: ctx,
		Result:  snap.Result,
		Report:  snap.Report,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Post-scan hook failed")
	}
}

// Reset returns to idle from any state. An in-flight request is cancelled
// and its response discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = StateIdle
	s.input = ""
	s.result = nil
	s.report = nil
	s.errMsg = ""
	s.startedAt = time.Time{}
	s.completedAt = time.Time{}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:   s.id,
		State:       s.state,
		Input:       s.input,
		Result:      s.result,
		Report:      s.report.Clone(),
		Error:       s.errMsg,
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
	}
}

// ToggleCard flips one card of the current report.
func (s *Session) ToggleCard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return apperrors.ErrUnknownCard
	}
	return s.report.ToggleCard(id)
}

package hooks

import (
	"linkguard/pkg/logger"
)

// SummaryHook writes one structured log line per completed scan.
type SummaryHook struct {
	logger *logger.Logger
}

func NewSummaryHook(l *logger.Logger) *SummaryHook {
	if l == nil {
		l = logger.Default()
	}
	return &SummaryHook{logger: l}
}

func (s *SummaryHook) Name() string {
	return "summary"
}

func (s *SummaryHook) Description() string {
	return "Logs the verdict, tier and card count of every completed scan"
}

func (s *SummaryHook) Execute(ctx HookContext) error {
	if ctx.Report == nil {
		return nil
	}
	fields := logger.Fields{
		"view":  ctx.Report.View,
		"cards": len(ctx.Report.Cards),
	}
	if ctx.Report.Header != nil {
		fields["verdict"] = ctx.Report.Header.Verdict
		fields["risk_score"] = ctx.Report.Header.Gauge.Score
		fields["tier"] = ctx.Report.Tier()
	}
	if ctx.Result != nil {
		fields["target"] = ctx.Result.Input
	}
	s.logger.WithFields(fields).Info("Scan completed")
	return nil
}

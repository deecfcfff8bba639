// Package report turns a backend ScanResult into a protocol-specific view
// model: a gauge header plus labeled detail cards.
package report

import (
	"fmt"

	"linkguard/internal/models"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/formatter"
	"linkguard/pkg/risk"
)

const DefaultDateLayout = "Jan 2, 2006"

type Options struct {
	DateLayout string
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}

// Header is the top of a report.
type Header struct {
	Gauge        risk.Gauge `json:"gauge" yaml:"gauge"`
	Verdict      string     `json:"verdict" yaml:"verdict"`
	SubjectLabel string     `json:"subject_label" yaml:"subject_label"`
	Subject      string     `json:"subject" yaml:"subject"`
	RedirectedTo string     `json:"redirected_to,omitempty" yaml:"redirected_to,omitempty"`
}

// SubjectLine is the label and subject joined for display.
func (h Header) SubjectLine() string {
	return fmt.Sprintf("%s: %s", h.SubjectLabel, h.Subject)
}

// Report is the rendered view model of one ScanResult. Unsupported reports
// carry only Protocol and Message.
type Report struct {
	View      string  `json:"view" yaml:"view"`
	Protocol  string  `json:"protocol" yaml:"protocol"`
	Supported bool    `json:"supported" yaml:"supported"`
	Message   string  `json:"message,omitempty" yaml:"message,omitempty"`
	Header    *Header `json:"header,omitempty" yaml:"header,omitempty"`
	Cards     []*Card `json:"cards" yaml:"cards"`
}

// Card returns the card with id, or nil.
func (r *Report) Card(id string) *Card {
	for _, c := range r.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ToggleCard flips the card with id.
func (r *Report) ToggleCard(id string) error {
	c := r.Card(id)
	if c == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownCard, id)
	}
	c.Toggle()
	return nil
}

// Tier returns the risk tier of a supported report.
func (r *Report) Tier() risk.Tier {
	if r.Header == nil {
		return risk.Low
	}
	return r.Header.Gauge.Tier
}

// Clone returns a deep copy safe to hand to renderers.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Header != nil {
		h := *r.Header
		cp.Header = &h
	}
	cp.Cards = make([]*Card, len(r.Cards))
	for i, c := range r.Cards {
		cc := *c
		cc.Rows = append([]Row(nil), c.Rows...)
		cp.Cards[i] = &cc
	}
	return &cp
}

// NewHeader builds the gauge and subject line shared by all protocol views.
// A captured curl command is summarized by the URL it resolved to.
func NewHeader(result *models.ScanResult) *Header {
	h := &Header{
		Gauge:        risk.NewGauge(result.RiskScore),
		Verdict:      formatter.SanitizeVerdict(result.Verdict),
		SubjectLabel: "Analysis for",
		Subject:      result.Input,
	}

	finalURL := result.FinalURL()
	if result.IsCommandInput() {
		if finalURL != "" {
			h.SubjectLabel = "Analyzed URL from command"
			h.Subject = finalURL
		}
		return h
	}
	if finalURL != "" && finalURL != result.Input {
		h.RedirectedTo = finalURL
	}
	return h
}

// Build renders result through the view registered for its protocol.
func Build(result *models.ScanResult, opts Options) *Report {
	return Dispatch(result.Protocol).Build(result, opts)
}

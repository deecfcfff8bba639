// Package render writes a report for the terminal or as structured data.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"linkguard/pkg/formatter"
	"linkguard/pkg/report"
	"linkguard/pkg/risk"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const gaugeWidth = 20

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", s)
	}
}

// Write renders rep in the given format.
func Write(w io.Writer, format Format, rep *report.Report) error {
	switch format {
	case FormatJSON:
		return JSON(w, rep)
	case FormatYAML:
		return YAML(w, rep)
	default:
		return Text(w, rep)
	}
}

func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func YAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Text writes the report as boxed header plus one table per card.
func Text(w io.Writer, rep *report.Report) error {
	if rep == nil {
		return nil
	}
	if !rep.Supported {
		_, err := fmt.Fprintln(w, pterm.DefaultBox.WithTitle("Unsupported Result").Sprint(rep.Message))
		return err
	}

	if _, err := fmt.Fprintln(w, header(rep.Header)); err != nil {
		return err
	}

	for _, c := range rep.Cards {
		out, err := card(c)
		if err != nil {
			return fmt.Errorf("failed to render card %s: %w", c.ID, err)
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}
	return nil
}

// Error writes a failed scan.
func Error(w io.Writer, message string) error {
	_, err := fmt.Fprintln(w, pterm.DefaultBox.WithTitle("Analysis Failed").Sprint(pterm.FgRed.Sprint(message)))
	return err
}

func header(h *report.Header) string {
	lines := []string{
		GaugeBar(h.Gauge),
		h.SubjectLine(),
	}
	if h.RedirectedTo != "" {
		lines = append(lines, "Redirected to: "+h.RedirectedTo)
	}
	title := h.Verdict
	if title == "" {
		title = "Result"
	}
	return pterm.DefaultBox.WithTitle(title).Sprint(strings.Join(lines, "\n"))
}

// GaugeBar draws the score as a fixed-width bar colored by tier.
func GaugeBar(g risk.Gauge) string {
	filled := int(g.Fill*gaugeWidth + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", gaugeWidth-filled)
	return fmt.Sprintf("Risk %s %d/100 (%s)", tierColor(g.Tier).Sprint(bar), g.Score, g.Tier)
}

func tierColor(t risk.Tier) pterm.Color {
	switch t {
	case risk.High:
		return pterm.FgRed
	case risk.Medium:
		return pterm.FgYellow
	default:
		return pterm.FgGreen
	}
}

func card(c *report.Card) (string, error) {
	title := pterm.Bold.Sprint(c.Title)
	if c.Collapsed {
		return "▸ " + title + " (collapsed)", nil
	}
	if len(c.Rows) == 0 {
		return "▾ " + title + "\n  No details available", nil
	}

	td := pterm.TableData{{"Field", "Value"}}
	for _, r := range c.Rows {
		td = append(td, []string{r.Label, Value(r.Value)})
	}
	table, err := pterm.DefaultTable.WithHasHeader(true).WithBoxed(true).WithData(td).Srender()
	if err != nil {
		return "", err
	}
	return "▾ " + title + "\n" + table, nil
}

// Value renders one token for the terminal.
func Value(t formatter.Token) string {
	switch t.Kind {
	case formatter.KindBoolean:
		if t.Positive {
			return pterm.FgGreen.Sprint("✔ Yes")
		}
		return pterm.FgRed.Sprint("✘ No")
	case formatter.KindLink:
		return fmt.Sprintf("%s (%s)", t.Text, t.Href)
	case formatter.KindWarning:
		return pterm.FgYellow.Sprint("⚠ " + t.Text)
	case formatter.KindSafe:
		return pterm.FgGreen.Sprint("✔ " + t.Text)
	default:
		return t.Text
	}
}

// Package formatter turns raw detail keys and values into display labels and
// styled value tokens.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

type Kind string

const (
	KindBoolean Kind = "boolean"
	KindLink    Kind = "link"
	KindWarning Kind = "warning"
	KindSafe    Kind = "safe"
	KindPlain   Kind = "plain"
)

const LinkText = "View Report"

var (
	warningKeywords = []string{"malicious", "suspicious", "Suspicious"}
	safeKeywords    = []string{"clean", "Safe", "Informational"}
)

// Token is a classified display value. Href is set for links; Positive is
// meaningful for booleans only.
type Token struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Text     string `json:"text" yaml:"text"`
	Href     string `json:"href,omitempty" yaml:"href,omitempty"`
	Positive bool   `json:"positive,omitempty" yaml:"positive,omitempty"`
}

// FormatLabel converts a snake_case key into a title-cased label.
func FormatLabel(key string) string {
	b := []byte(strings.ReplaceAll(key, "_", " "))
	prevWord := false
	for i, c := range b {
		word := isWordByte(c)
		if word && !prevWord && c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		prevWord = word
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Classify picks the display treatment for a detail value. Rules are tried in
// order and the first match wins: boolean, link, warning keyword, safe
// keyword, plain.
func Classify(value interface{}, link bool) Token {
	if b, ok := value.(bool); ok {
		text := "No"
		if b {
			text = "Yes"
		}
		return Token{Kind: KindBoolean, Text: text, Positive: b}
	}

	text := fmt.Sprint(value)
	if link {
		return Token{Kind: KindLink, Text: LinkText, Href: text}
	}

	if s, ok := value.(string); ok {
		if containsAny(s, warningKeywords) {
			return Token{Kind: KindWarning, Text: FormatLabel(s)}
		}
		if containsAny(s, safeKeywords) {
			return Token{Kind: KindSafe, Text: FormatLabel(s)}
		}
	}

	return Token{Kind: KindPlain, Text: text}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// SanitizeVerdict strips everything except ASCII letters and whitespace, so
// "⚠️ Malicious Site" becomes "Malicious Site".
func SanitizeVerdict(verdict string) string {
	var sb strings.Builder
	sb.Grow(len(verdict))
	for _, r := range verdict {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

var dateConfig = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats: []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05 MST",
		"2006-01-02",
		"2006/01/02",
		"02-Jan-2006",
		"January 2, 2006",
		time.RFC1123,
		time.RFC1123Z,
		time.ANSIC,
	},
}

// FormatDate renders raw with layout. Unparseable input is returned as is.
func FormatDate(raw, layout string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateConfig.Parse(raw)
	if err != nil {
		return raw
	}
	return t.Format(layout)
}

// Percent renders a score as a percentage, "42" -> "42%".
func Percent(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return ""
	}
	return raw + "%"
}

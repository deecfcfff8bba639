package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

type Protocol string

const (
	ProtocolHTTP Protocol = "http"
	ProtocolFTP  Protocol = "ftp"
	ProtocolSSH  Protocol = "ssh"
)

// ScanResult is one backend verdict. Details keeps the backend's nested object
// as-is; every sub-object in it is optional.
type ScanResult struct {
	Input     string   `json:"input" yaml:"input"`
	Protocol  Protocol `json:"protocol" yaml:"protocol"`
	Verdict   string   `json:"verdict" yaml:"verdict"`
	RiskScore int      `json:"risk_score" yaml:"risk_score"`
	Details   Details  `json:"details" yaml:"details"`
}

// FinalURL returns details.final_url, or "" when absent.
func (r *ScanResult) FinalURL() string {
	return r.Details.String("final_url")
}

// IsCommandInput reports whether the input was a captured curl command rather
// than a bare target.
func (r *ScanResult) IsCommandInput() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.Input)), "curl")
}

var emptyObject = []byte("{}")

// Details is a read-only view over the raw details object.
type Details struct {
	raw json.RawMessage
}

// NewDetails wraps raw. Anything that is not a JSON object becomes {}.
func NewDetails(raw []byte) Details {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return Details{raw: emptyObject}
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Details{raw: cp}
}

func (d Details) bytes() []byte {
	if len(d.raw) == 0 {
		return emptyObject
	}
	return d.raw
}

// Lookup resolves a dotted path such as "whois_info.registrar". It reports
// false when any link is missing, an intermediate is not an object, or the
// value is null or the empty string.
func (d Details) Lookup(path string) (gjson.Result, bool) {
	r := gjson.GetBytes(d.bytes(), path)
	if !r.Exists() || r.Type == gjson.Null {
		return r, false
	}
	if r.Type == gjson.String && r.Str == "" {
		return r, false
	}
	return r, true
}

// Has reports whether path names an object.
func (d Details) Has(path string) bool {
	return gjson.GetBytes(d.bytes(), path).IsObject()
}

// Value returns the value at path as a bool, string or json.Number, or the
// raw JSON text for arrays and objects.
func (d Details) Value(path string) (interface{}, bool) {
	r, ok := d.Lookup(path)
	if !ok {
		return nil, false
	}
	switch r.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	case gjson.Number:
		return json.Number(r.Raw), true
	case gjson.String:
		return r.Str, true
	default:
		return r.Raw, true
	}
}

// String returns the value at path as text, or "" when absent.
func (d Details) String(path string) string {
	r, ok := d.Lookup(path)
	if !ok {
		return ""
	}
	if r.Type == gjson.String {
		return r.Str
	}
	return r.Raw
}

// Raw returns the underlying JSON object.
func (d Details) Raw() json.RawMessage {
	return d.bytes()
}

func (d Details) MarshalJSON() ([]byte, error) {
	return d.bytes(), nil
}

func (d *Details) UnmarshalJSON(data []byte) error {
	*d = NewDetails(data)
	return nil
}

// MarshalYAML emits the details as a plain mapping.
func (d Details) MarshalYAML() (interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(d.bytes(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

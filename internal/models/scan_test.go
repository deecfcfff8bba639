package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDetails = `{
	"ip_address": "93.184.216.34",
	"is_reachable": true,
	"ssl_valid": false,
	"final_url": "",
	"whois_info": {"registrar": "Example Registrar", "creation_date": null},
	"abuseipdb": "key_missing",
	"lexical_analysis": {"url_length": 23, "dot_count": 1}
}`

func TestDetailsLookup(t *testing.T) {
	d := NewDetails([]byte(sampleDetails))

	tests := []struct {
		path    string
		present bool
	}{
		{"ip_address", true},
		{"is_reachable", true},
		{"ssl_valid", true},
		{"final_url", false},
		{"whois_info.registrar", true},
		{"whois_info.creation_date", false},
		{"whois_info.expiration_date", false},
		{"abuseipdb.abuse_confidence_score", false},
		{"ssl_info.issuer.commonName", false},
		{"lexical_analysis.url_length", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, ok := d.Lookup(tt.path)
			assert.Equal(t, tt.present, ok)
		})
	}
}

func TestDetailsValue(t *testing.T) {
	d := NewDetails([]byte(sampleDetails))

	v, ok := d.Value("is_reachable")
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = d.Value("ssl_valid")
	require.True(t, ok)
	assert.Equal(t, false, v)

	v, ok = d.Value("lexical_analysis.url_length")
	require.True(t, ok)
	assert.Equal(t, json.Number("23"), v)

	assert.Equal(t, "Example Registrar", d.String("whois_info.registrar"))
	assert.True(t, d.Has("lexical_analysis"))
	assert.False(t, d.Has("abuseipdb"))
}

func TestNewDetailsRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"", "null", "[1,2]", `"text"`, "{broken"} {
		d := NewDetails([]byte(raw))
		assert.JSONEq(t, "{}", string(d.Raw()), "input %q", raw)
	}
}

func TestScanResultJSON(t *testing.T) {
	var r ScanResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"input": "http://example.com",
		"protocol": "http",
		"verdict": "✅ Safe",
		"risk_score": 12,
		"details": {"final_url": "https://example.com/"}
	}`), &r))

	assert.Equal(t, ProtocolHTTP, r.Protocol)
	assert.Equal(t, "https://example.com/", r.FinalURL())
	assert.False(t, r.IsCommandInput())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"input": "http://example.com",
		"protocol": "http",
		"verdict": "✅ Safe",
		"risk_score": 12,
		"details": {"final_url": "https://example.com/"}
	}`, string(out))
}

func TestIsCommandInput(t *testing.T) {
	r := ScanResult{Input: "  CURL -X GET https://example.com"}
	assert.True(t, r.IsCommandInput())
}

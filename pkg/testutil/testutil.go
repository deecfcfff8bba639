// Package testutil provides testing utilities for the linkguard application
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// Sample backend payloads.
const (
	MinimalHTTPResult = `{
		"input": "http://example.com",
		"protocol": "http",
		"verdict": "✅ Safe",
		"risk_score": 12,
		"details": {"ip_address": "93.184.216.34", "is_reachable": true}
	}`

	MaliciousHTTPResult = `{
		"input_string": "http://bad.example",
		"protocol": "http",
		"verdict": "❌ Malicious",
		"risk_score": 95,
		"details": {
			"google_safe_browsing": "malicious",
			"virustotal": "suspicious",
			"urlscan": {"result_url": "https://urlscan.io/result/123/"},
			"abuseipdb": {"abuse_confidence_score": 88, "total_reports": 40, "country_code": "RU"},
			"ip_address": "203.0.113.9",
			"ssl_valid": false,
			"final_url": "http://bad.example/login",
			"dns_whois_info": {"registrar": "Shady Registrar", "creation_date": "2024-05-01 00:00:00"}
		}
	}`

	FTPResult = `{
		"input": "ftp://files.example.com",
		"verdict": "⚠️ Suspicious",
		"risk_score": 40,
		"details": {
			"protocol": "ftp",
			"is_reachable": true,
			"anonymous_login_allowed": true,
			"welcome_message": "220 Welcome",
			"directory_listing_count": 12
		}
	}`

	SSHResult = `{
		"input": "ssh://host.example.com",
		"protocol": "ssh",
		"verdict": "Safe",
		"risk_score": 10,
		"details": {
			"is_reachable": true,
			"server_banner": "SSH-2.0-OpenSSH_9.6",
			"host_key_type": "ssh-ed25519",
			"host_key_fingerprint": "SHA256:abc"
		}
	}`

	UnknownProtocolResult = `{
		"input": "telnet://legacy.example.com",
		"protocol": "telnet",
		"verdict": "Unknown",
		"risk_score": 50,
		"details": {}
	}`
)

// BackendResponse is what the stub replies with.
type BackendResponse struct {
	Status int
	Body   string
	Delay  time.Duration
	// Block, when non-nil, holds the response until it is closed or the
	// request context ends.
	Block chan struct{}
}

// RecordedRequest is one request seen by the stub.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

// Backend is an httptest server standing in for the scan backend.
type Backend struct {
	*httptest.Server

	mu       sync.RWMutex
	response BackendResponse
	requests []RecordedRequest
}

// NewBackend starts a stub that answers every request with resp. It is closed
// when the test ends.
func NewBackend(t *testing.T, resp BackendResponse) *Backend {
	t.Helper()

	b := &Backend{response: resp}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	})
	resp := b.response
	b.mu.Unlock()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	if resp.Block != nil {
		select {
		case <-resp.Block:
		case <-r.Context().Done():
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

// SetResponse replaces the reply used for subsequent requests.
func (b *Backend) SetResponse(resp BackendResponse) {
	b.mu.Lock()
	b.response = resp
	b.mu.Unlock()
}

// Requests returns a copy of the requests received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// CheckURL is the endpoint to configure as backend.url.
func (b *Backend) CheckURL() string {
	return b.URL + "/api/check"
}

// CreateTestFile creates a test file with the given content
func CreateTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}

	return filePath
}

// WithTimeout creates a context with timeout for tests
func WithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

// Eventually polls cond until it holds or timeout passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

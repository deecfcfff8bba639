package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"linkguard/internal/config"
	"linkguard/internal/models"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/logger"
	"linkguard/pkg/risk"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxBodyBytes    = 10 << 20
)

// ScanDAO is the gateway to the scan backend.
type ScanDAO interface {
	CheckTarget(ctx context.Context, input string) (*models.ScanResult, error)
}

type scanDAO struct {
	endpoint   string
	queryParam string
	httpClient *http.Client
	log        *logger.Logger
}

// NewScanDAO returns a ScanDAO for the configured backend. A nil client gets
// one with cfg.Timeout, where zero means no timeout.
func NewScanDAO(cfg config.BackendConfig, client *http.Client, log *logger.Logger) ScanDAO {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.Default()
	}
	param := cfg.QueryParam
	if param == "" {
		param = config.DefaultQueryParam
	}
	return &scanDAO{
		endpoint:   cfg.URL,
		queryParam: param,
		httpClient: client,
		log:        log,
	}
}

// CheckTarget issues exactly one GET for input. Every failure is returned as
// a *errors.BackendError carrying the message to show the user.
func (dao *scanDAO) CheckTarget(ctx context.Context, input string) (*models.ScanResult, error) {
	reqID := logger.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, reqID)
	}

	target, err := dao.buildURL(input)
	if err != nil {
		return nil, apperrors.NewBackendError(0, apperrors.MsgBackendUnreachable, err)
	}

	var result *models.ScanResult
	err = dao.log.LogRequest(ctx, input, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return apperrors.NewBackendError(0, apperrors.MsgBackendUnreachable, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(RequestIDHeader, reqID)

		resp, err := dao.httpClient.Do(req)
		if err != nil {
			return apperrors.NewBackendError(0, apperrors.MsgBackendUnreachable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return apperrors.NewBackendError(resp.StatusCode, apperrors.MsgBackendUnreachable, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return apperrors.NewBackendError(resp.StatusCode, ErrorMessage(resp.StatusCode, body), nil)
		}

		result, err = DecodeResult(body, input)
		if err != nil {
			return apperrors.NewBackendError(resp.StatusCode, apperrors.MsgMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dao.log.WithScan(result.Input, string(result.Protocol)).WithFields(map[string]interface{}{
		"request_id": reqID,
		"risk_score": result.RiskScore,
	}).Debug("Decoded scan result")

	return result, nil
}

func (dao *scanDAO) buildURL(input string) (string, error) {
	u, err := url.Parse(dao.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid backend url %q: %w", dao.endpoint, err)
	}
	q := u.Query()
	q.Set(dao.queryParam, input)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ErrorMessage extracts the user-facing message from a failed response:
// a string "detail", then a string "message", then a status-based fallback
// for JSON bodies and a generic one for anything else.
func ErrorMessage(status int, body []byte) string {
	if !gjson.ValidBytes(body) {
		return apperrors.MsgUnknownServerError
	}
	root := gjson.ParseBytes(body)
	for _, key := range []string{"detail", "message"} {
		v := root.Get(key)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

// DecodeResult parses a success body and reconciles the field names used by
// different backend versions.
func DecodeResult(body []byte, submitted string) (*models.ScanResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("response is not a JSON object")
	}

	details := root.Get("details")
	detailsRaw, err := normalizeDetails(details)
	if err != nil {
		return nil, err
	}

	result := &models.ScanResult{
		Input:     firstString(root, "input", "input_string", "url"),
		Protocol:  models.Protocol(firstString(root, "protocol", "details.protocol")),
		Verdict:   root.Get("verdict").String(),
		RiskScore: risk.Clamp(int(root.Get("risk_score").Int())),
		Details:   models.NewDetails(detailsRaw),
	}
	if result.Input == "" {
		result.Input = submitted
	}
	return result, nil
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := root.Get(p)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// normalizeDetails renames dns_whois_info to whois_info unless the canonical
// key already holds a value; a null whois_info is replaced. Non-objects are
// left for NewDetails to replace.
func normalizeDetails(details gjson.Result) ([]byte, error) {
	if !details.IsObject() {
		return []byte(details.Raw), nil
	}
	legacy, canonical := details.Get("dns_whois_info"), details.Get("whois_info")
	if !legacy.Exists() || legacy.Type == gjson.Null || (canonical.Exists() && canonical.Type != gjson.Null) {
		return []byte(details.Raw), nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(details.Raw), &m); err != nil {
		return nil, fmt.Errorf("failed to decode details: %w", err)
	}
	m["whois_info"] = m["dns_whois_info"]
	delete(m, "dns_whois_info")

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode details: %w", err)
	}
	return out, nil
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

const (
	// defaultTimeout bounds order and status calls.
	defaultTimeout = 30 * time.Second
	// catalogTimeout bounds product list calls, which carry large payloads.
	catalogTimeout = 60 * time.Second
)

// headerFunc supplies provider-specific authentication headers.
type headerFunc func() map[string]string

// transport is the single request routine shared by all provider clients:
// build URL, attach headers, apply the per-call timeout, issue the request
// and route the HTTP status into a normalized result. It never returns a
// raw HTTP error for a non-2xx status.
type transport struct {
	code           domain.ProviderCode
	baseURL        string
	headers        headerFunc
	httpClient     *http.Client
	logger         *zap.Logger
	timeout        time.Duration
	catalogTimeout time.Duration
}

func newTransport(code domain.ProviderCode, baseURL string, headers headerFunc, logger *zap.Logger) *transport {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &transport{
		code:    code,
		baseURL: baseURL,
		headers: headers,
		// Per-call deadlines come from the request context, so the
		// underlying client carries no timeout of its own.
		httpClient:     &http.Client{},
		logger:         logger,
		timeout:        defaultTimeout,
		catalogTimeout: catalogTimeout,
	}
}

func (t *transport) get(ctx context.Context, endpoint string) ([]byte, error) {
	return t.do(ctx, http.MethodGet, endpoint, nil, t.timeout)
}

// getCatalog issues a GET with the extended catalog timeout. The override
// is scoped to the single call; the default timeout is untouched.
func (t *transport) getCatalog(ctx context.Context, endpoint string) ([]byte, error) {
	return t.do(ctx, http.MethodGet, endpoint, nil, t.catalogTimeout)
}

func (t *transport) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	return t.do(ctx, http.MethodPost, endpoint, payload, t.timeout)
}

func (t *transport) do(ctx context.Context, method, endpoint string, payload any, timeout time.Duration) ([]byte, error) {
	url := t.baseURL + strings.TrimPrefix(endpoint, "/")

	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range t.headers() {
		req.Header.Set(key, value)
	}

	t.logger.Debug("Provider request",
		zap.String("provider", string(t.code)),
		zap.String("method", method),
		zap.String("url", url),
	)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, normalizeTransportError(t.code, err, timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.ErrProvider{
			Provider: string(t.code),
			Kind:     apperrors.KindUnreachable,
			Message:  "connection failed: unable to read response body",
		}
	}

	t.logger.Debug("Provider response",
		zap.String("provider", string(t.code)),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	return nil, normalizeStatus(t.code, resp.StatusCode, body)
}

// decode unmarshals a response body into v. An empty or unparseable body
// is not an error; v is left at its zero value.
func decode(body []byte, v any) {
	if len(bytes.TrimSpace(body)) == 0 {
		return
	}
	_ = json.Unmarshal(body, v)
}

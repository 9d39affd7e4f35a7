// Package mltransport is the HTTP wire layer for the toxicity model sidecar.
package mltransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single sidecar request.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of a failed response is read for the error message.
const maxErrorBody = 4096

// ScoreRequest is the body of POST /score.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ScoreResponse is the body returned by POST /score.
type ScoreResponse struct {
	Toxicity     *float64 `json:"toxicity"`
	ModelVersion string   `json:"model_version,omitempty"`
}

type healthResponse struct {
	ModelVersion string `json:"model_version"`
}

// HTTPError is a non-2xx answer from the sidecar.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ml service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("ml service returned %d: %s", e.StatusCode, e.Message)
}

// NewHTTPClient returns a client with the given timeout, or DefaultTimeout when zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// DoScore sends POST /score to baseURL and decodes the toxicity answer.
func DoScore(ctx context.Context, client *http.Client, baseURL string, req *ScoreRequest) (*ScoreResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp)
	}

	var out ScoreResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.Toxicity == nil {
		return nil, fmt.Errorf("decode response: missing toxicity field")
	}
	return &out, nil
}

// DoHealth calls GET /health and reports reachability, latency and model version.
func DoHealth(ctx context.Context, client *http.Client, baseURL string) (reachable bool, latencyMs int64, modelVersion string, err error) {
	start := time.Now()

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", http.NoBody)
	if reqErr != nil {
		return false, 0, "", fmt.Errorf("create request: %w", reqErr)
	}

	resp, doErr := client.Do(httpReq)
	latencyMs = time.Since(start).Milliseconds()
	if doErr != nil {
		return false, latencyMs, "", fmt.Errorf("service unreachable: %w", doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return true, latencyMs, "", parseHTTPError(resp)
	}

	var health healthResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&health); decodeErr == nil {
		modelVersion = health.ModelVersion
	}
	return true, latencyMs, modelVersion, nil
}

// parseHTTPError builds an HTTPError, taking the message from a JSON
// "error" or "message" field when the body has one.
func parseHTTPError(resp *http.Response) *HTTPError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(raw, &payload) == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext carries one scenario's HTTP state against a running gateway.
type TestContext struct {
	BaseURL      string
	ValidToken   string
	InvalidToken string

	client       *http.Client
	token        string
	lastStatus   int
	lastBody     []byte
	lastResponse map[string]interface{}
}

// NewTestContext reads the gateway address and fixture tokens from the
// environment.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:      strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/"),
		ValidToken:   os.Getenv("E2E_VALID_TOKEN"),
		InvalidToken: envOr("E2E_INVALID_TOKEN", "not-a-real-token"),
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
}

func (tc *TestContext) GetValidToken() string   { return tc.ValidToken }
func (tc *TestContext) GetInvalidToken() string { return tc.InvalidToken }
func (tc *TestContext) GetToken() string        { return tc.token }
func (tc *TestContext) SetToken(token string)   { tc.token = token }
func (tc *TestContext) GetLastStatusCode() int  { return tc.lastStatus }
func (tc *TestContext) GetLastBody() []byte     { return tc.lastBody }

func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) POST(path string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	tc.lastResponse = nil
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var parsed map[string]interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			tc.lastResponse = parsed
		}
	}
	return nil
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("last response was not a JSON object: %s", tc.lastBody)
	}
	v, ok := tc.lastResponse[field]
	if !ok {
		return nil, fmt.Errorf("field %q not found in response: %s", field, tc.lastBody)
	}
	return v, nil
}

// Package e2e drives a running storeops server through Gherkin scenarios.
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

	"github.com/golang-jwt/jwt/v5"
)

// TestContext holds per-scenario state: the caller identity and the last response.
type TestContext struct {
	BaseURL    string
	SigningKey string
	SystemKey  string

	client       *http.Client
	token        string
	tenantID     string
	savedEntryID string

	lastStatus int
	lastBody   []byte
}

// NewTestContext reads the target server settings from the environment.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/"),
		SigningKey: os.Getenv("E2E_JWT_SIGNING_KEY"),
		SystemKey:  os.Getenv("E2E_SYSTEM_API_KEY"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state between scenarios.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.tenantID = ""
	tc.savedEntryID = ""
	tc.lastStatus = 0
	tc.lastBody = nil
}

// SignIn mints a bearer token for the given tenant and role.
func (tc *TestContext) SignIn(tenantID, username, role string) error {
	if tc.SigningKey == "" {
		return fmt.Errorf("E2E_JWT_SIGNING_KEY is not set")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"tenant_id": tenantID,
		"username":  username,
		"role":      role,
		"iss":       envOr("E2E_JWT_ISSUER", "storeops"),
		"iat":       now.Unix(),
		"exp":       now.Add(15 * time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.SigningKey))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	tc.token = signed
	tc.tenantID = tenantID
	return nil
}

func (tc *TestContext) SignOut()                  { tc.token = "" }
func (tc *TestContext) GetTenantID() string       { return tc.tenantID }
func (tc *TestContext) GetSystemKey() string      { return tc.SystemKey }
func (tc *TestContext) GetSavedEntryID() string   { return tc.savedEntryID }
func (tc *TestContext) SetSavedEntryID(id string) { tc.savedEntryID = id }
func (tc *TestContext) GetLastStatus() int        { return tc.lastStatus }

// POST sends body as JSON with the current bearer token.
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body, nil)
}

// POSTWithHeaders sends body as JSON with extra headers and no bearer token.
func (tc *TestContext) POSTWithHeaders(path string, body interface{}, headers map[string]string) error {
	return tc.do(http.MethodPost, path, body, headers)
}

// GET requests path with the current bearer token.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" && headers == nil {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

// GetLastBody returns the raw body of the last response.
func (tc *TestContext) GetLastBody() []byte { return tc.lastBody }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

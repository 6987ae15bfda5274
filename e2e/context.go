package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"custodian/internal/app"
	"custodian/internal/audit"
	"custodian/internal/platform/config"
	"custodian/pkg/secrets"
)

const adminToken = "e2e-admin-token"

// TestContext holds state between test steps. Every scenario gets its own
// in-process server over in-memory stores.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	Saved            map[string]string

	app    *app.App
	server *httptest.Server
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	return &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Saved:      map[string]string{},
	}
}

// Start boots the services. secure turns on at-rest encryption and TLS in
// the probed security configuration.
func (tc *TestContext) Start(ctx context.Context, secure bool) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	cfg.Server.AdminToken = adminToken
	cfg.Server.Environment = "test"
	cfg.Jobs.Enabled = false
	if secure {
		key, err := secrets.Generate()
		if err != nil {
			return err
		}
		cfg.Security.EncryptionKey = key
		cfg.Security.TLSEnabled = true
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	tc.app = a
	tc.server = httptest.NewServer(a.Router())
	tc.BaseURL = tc.server.URL
	return nil
}

// PublishHook delivers a lifecycle event to the running logger the way the
// hook relay does.
func (tc *TestContext) PublishHook(ctx context.Context, ev audit.HookEvent) error {
	if tc.app == nil {
		return fmt.Errorf("custodian is not running")
	}
	tc.app.Bus.Publish(ctx, ev)
	return nil
}

// Stop shuts the server down and releases the services.
func (tc *TestContext) Stop(ctx context.Context) {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.app != nil {
		_ = tc.app.Close(ctx)
	}
}

// Seed inserts a personal-data row for subjectID into table.
func (tc *TestContext) Seed(table, subjectID string) error {
	seeder, ok := tc.app.Personal.(interface {
		Seed(table string, row map[string]any)
	})
	if !ok {
		return fmt.Errorf("personal data store cannot be seeded")
	}
	for _, t := range tc.app.DSR.Tables() {
		if t.Name != table {
			continue
		}
		row := map[string]any{t.SubjectColumn: subjectID}
		if t.SubjectColumn != "id" {
			row["id"] = fmt.Sprintf("%s-%s-%d", table, subjectID, time.Now().UnixNano())
		}
		seeder.Seed(table, row)
		return nil
	}
	return fmt.Errorf("unknown personal data table %q", table)
}

// RowCount returns how many rows remain in a seeded table.
func (tc *TestContext) RowCount(table string) (int, error) {
	reader, ok := tc.app.Personal.(interface {
		Rows(table string) []map[string]any
	})
	if !ok {
		return 0, fmt.Errorf("personal data store cannot be inspected")
	}
	return len(reader.Rows(table)), nil
}

// Request sends an admin API call and stores the response. Saved values are
// substituted for {name} placeholders in path.
func (tc *TestContext) Request(method, path string, body any) error {
	return tc.RequestWithHeaders(method, path, body, map[string]string{"X-Admin-Token": adminToken})
}

// RequestWithHeaders sends a call with exactly the given headers.
func (tc *TestContext) RequestWithHeaders(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+tc.expand(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

func (tc *TestContext) expand(path string) string {
	for k, v := range tc.Saved {
		path = strings.ReplaceAll(path, "{"+k+"}", v)
	}
	return path
}

// GetResponseField resolves a dotted path such as "data.checks.0.score" in
// the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var cur any
	if err := json.Unmarshal(tc.LastResponseBody, &cur); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	for part := range strings.SplitSeq(field, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %s not found in response", field)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("field %s: no element %q", field, part)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return cur, nil
}

func (tc *TestContext) Save(name, value string) {
	tc.Saved[name] = value
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

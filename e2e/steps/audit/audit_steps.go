package audit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cucumber/godog"

	auditlog "custodian/internal/audit"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Request(method, path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	PublishHook(ctx context.Context, ev auditlog.HookEvent) error
}

// RegisterSteps registers audit logger step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &auditSteps{tc: tc}

	ctx.Step(`^(\d+) audit events dated (\d+) days? ago$`, steps.logEventsDaysAgo)
	ctx.Step(`^I log a "([^"]*)" event "([^"]*)" by "([^"]*)"$`, steps.logEvent)
	ctx.Step(`^I apply retention with (\d+) days and high-risk entries not kept$`, steps.applyRetention)
	ctx.Step(`^I query audit events for operation "([^"]*)"$`, steps.queryByOperation)
}

type auditSteps struct {
	tc TestContext
}

// logEventsDaysAgo replays backdated events through the hook bus; the admin
// API only accepts timestamps close to the server clock.
func (s *auditSteps) logEventsDaysAgo(ctx context.Context, count, days int) error {
	at := time.Now().UTC().AddDate(0, 0, -days)
	for i := range count {
		err := s.tc.PublishHook(ctx, auditlog.HookEvent{
			Name:      "api:request",
			Actor:     "e2e",
			Timestamp: at.Add(time.Duration(i) * time.Minute),
			Payload:   map[string]any{"path": fmt.Sprintf("/items/%d", i)},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *auditSteps) logEvent(_ context.Context, category, operation, actor string) error {
	return s.tc.Request("POST", "/audit/events", map[string]any{
		"category":  category,
		"operation": operation,
		"actor":     actor,
	})
}

func (s *auditSteps) applyRetention(_ context.Context, days int) error {
	return s.tc.Request("POST", "/audit/retention", map[string]any{
		"retention_days": days,
		"keep_high_risk": false,
	})
}

func (s *auditSteps) queryByOperation(_ context.Context, operation string) error {
	return s.tc.Request("GET", "/audit/events?operation="+url.QueryEscape(operation), nil)
}

package dsr

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Request(method, path string, body any) error
	GetResponseField(field string) (any, error)
	Save(name, value string)
	Seed(table, subjectID string) error
	RowCount(table string) (int, error)
}

// RegisterSteps registers data-subject request step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &dsrSteps{tc: tc}

	ctx.Step(`^the "([^"]*)" table holds a row for subject "([^"]*)"$`, steps.seedRow)
	ctx.Step(`^the "([^"]*)" table should hold (\d+) rows?$`, steps.tableShouldHold)
	ctx.Step(`^I submit an? "([^"]*)" request for subject "([^"]*)"$`, steps.submit)
	ctx.Step(`^I process the saved request$`, steps.process)
	ctx.Step(`^I approve the saved request$`, steps.approve)
	ctx.Step(`^I reject the saved request because "([^"]*)"$`, steps.reject)
	ctx.Step(`^I fetch the saved request$`, steps.fetch)
}

type dsrSteps struct {
	tc TestContext
}

func (s *dsrSteps) seedRow(_ context.Context, table, subject string) error {
	return s.tc.Seed(table, subject)
}

func (s *dsrSteps) tableShouldHold(_ context.Context, table string, want int) error {
	got, err := s.tc.RowCount(table)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("table %s: expected %d rows but found %d", table, want, got)
	}
	return nil
}

func (s *dsrSteps) submit(_ context.Context, requestType, subject string) error {
	if err := s.tc.Request("POST", "/dsr/requests", map[string]any{
		"type":       requestType,
		"subject_id": subject,
	}); err != nil {
		return err
	}
	id, err := s.tc.GetResponseField("data.id")
	if err != nil {
		return fmt.Errorf("request not created: %w", err)
	}
	s.tc.Save("request_id", fmt.Sprint(id))
	return nil
}

func (s *dsrSteps) process(context.Context) error {
	return s.tc.Request("POST", "/dsr/requests/{request_id}/process", nil)
}

func (s *dsrSteps) approve(context.Context) error {
	return s.tc.Request("POST", "/dsr/requests/{request_id}/approve", map[string]any{})
}

func (s *dsrSteps) reject(_ context.Context, reason string) error {
	return s.tc.Request("POST", "/dsr/requests/{request_id}/reject", map[string]any{"reason": reason})
}

func (s *dsrSteps) fetch(context.Context) error {
	return s.tc.Request("GET", "/dsr/requests/{request_id}", nil)
}

package compliance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Request(method, path string, body any) error
}

// RegisterSteps registers compliance engine step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &complianceSteps{tc: tc}

	ctx.Step(`^I create an? "([^"]*)" policy "([^"]*)" for framework "([^"]*)" with rules:$`, steps.createPolicy)
	ctx.Step(`^I run a compliance check for "([^"]*)"$`, steps.runCheck)
	ctx.Step(`^I request the compliance score for "([^"]*)"$`, steps.score)
	ctx.Step(`^I seed the default policies for "([^"]*)"$`, steps.seed)
}

type complianceSteps struct {
	tc TestContext
}

func (s *complianceSteps) createPolicy(_ context.Context, policyType, name, framework string, rules *godog.DocString) error {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(rules.Content), &parsed); err != nil {
		return fmt.Errorf("parse rules: %w", err)
	}
	return s.tc.Request("POST", "/compliance/policies", map[string]any{
		"name":      name,
		"type":      policyType,
		"framework": framework,
		"rules":     parsed,
	})
}

func (s *complianceSteps) runCheck(_ context.Context, framework string) error {
	return s.tc.Request("POST", "/compliance/frameworks/"+framework+"/check", nil)
}

func (s *complianceSteps) score(_ context.Context, framework string) error {
	return s.tc.Request("GET", "/compliance/frameworks/"+framework+"/score", nil)
}

func (s *complianceSteps) seed(_ context.Context, framework string) error {
	return s.tc.Request("POST", "/compliance/frameworks/"+framework+"/seed", nil)
}

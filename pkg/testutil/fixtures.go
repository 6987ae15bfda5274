package testutil

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"custodian/internal/compliance"
	"custodian/internal/dsr"
)

// PolicyBuilder provides a fluent interface for building stored policies.
type PolicyBuilder struct {
	policy *compliance.Policy
}

// NewPolicyBuilder starts from an enabled, high-severity gdpr encryption
// policy created now.
func NewPolicyBuilder() *PolicyBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &PolicyBuilder{
		policy: &compliance.Policy{
			ID:        uuid.NewString(),
			Name:      "Test policy",
			Type:      compliance.TypeEncryption,
			Framework: "gdpr",
			Rules:     compliance.Rules{},
			Enabled:   true,
			Severity:  compliance.SeverityHigh,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *PolicyBuilder) WithType(t compliance.PolicyType) *PolicyBuilder {
	b.policy.Type = t
	b.policy.Name = string(t)
	return b
}

func (b *PolicyBuilder) WithFramework(f compliance.Framework) *PolicyBuilder {
	b.policy.Framework = f
	return b
}

func (b *PolicyBuilder) WithRules(rules compliance.Rules) *PolicyBuilder {
	b.policy.Rules = maps.Clone(rules)
	return b
}

func (b *PolicyBuilder) Disabled() *PolicyBuilder {
	b.policy.Enabled = false
	return b
}

// CreatedAt sets both timestamps.
func (b *PolicyBuilder) CreatedAt(t time.Time) *PolicyBuilder {
	b.policy.CreatedAt = t
	b.policy.UpdatedAt = t
	return b
}

func (b *PolicyBuilder) Build() *compliance.Policy {
	p := *b.policy
	return &p
}

// RequestBuilder provides a fluent interface for building stored
// data-subject requests.
type RequestBuilder struct {
	request *dsr.Request
}

// NewRequestBuilder starts from a pending access request created now, with
// the statutory deadline.
func NewRequestBuilder() *RequestBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &RequestBuilder{
		request: &dsr.Request{
			ID:          uuid.NewString(),
			Type:        dsr.TypeAccess,
			SubjectID:   "subject-1",
			Status:      dsr.StatusPending,
			RequestData: map[string]any{},
			CreatedAt:   now,
			UpdatedAt:   now,
			Deadline:    now.Add(dsr.Window),
		},
	}
}

func (b *RequestBuilder) WithType(t dsr.RequestType) *RequestBuilder {
	b.request.Type = t
	return b
}

func (b *RequestBuilder) WithSubject(subjectID string) *RequestBuilder {
	b.request.SubjectID = subjectID
	return b
}

func (b *RequestBuilder) WithStatus(status dsr.Status) *RequestBuilder {
	b.request.Status = status
	return b
}

func (b *RequestBuilder) WithData(data map[string]any) *RequestBuilder {
	b.request.RequestData = maps.Clone(data)
	return b
}

// CreatedAt sets the creation time and moves the deadline with it.
func (b *RequestBuilder) CreatedAt(t time.Time) *RequestBuilder {
	b.request.CreatedAt = t
	b.request.UpdatedAt = t
	b.request.Deadline = t.Add(dsr.Window)
	return b
}

func (b *RequestBuilder) Build() *dsr.Request {
	r := *b.request
	return &r
}

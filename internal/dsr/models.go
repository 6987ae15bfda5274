// Package dsr manages data-subject requests: their lifecycle, the statutory
// deadline and the export, deletion and rectification they trigger.
package dsr

import (
	"time"

	"custodian/pkg/platform/validation"
)

// Window is the statutory response window measured from creation.
const Window = 30 * 24 * time.Hour

type RequestType string

const (
	TypeAccess        RequestType = "access"
	TypeDeletion      RequestType = "deletion"
	TypeRectification RequestType = "rectification"
	TypePortability   RequestType = "portability"
)

var RequestTypes = []RequestType{TypeAccess, TypeDeletion, TypeRectification, TypePortability}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusRejected}

// Open reports whether the request still awaits an outcome.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

// Request is one data-subject request. Deadline is fixed at creation.
type Request struct {
	ID              string         `json:"id"`
	Type            RequestType    `json:"type"`
	SubjectID       string         `json:"subject_id"`
	Status          Status         `json:"status"`
	RequestData     map[string]any `json:"request_data"`
	ResponseData    map[string]any `json:"response_data,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	Deadline        time.Time      `json:"deadline"`
}

// CreateRequest is the input of Service.CreateRequest.
type CreateRequest struct {
	Type      RequestType    `json:"type" validate:"required"`
	SubjectID string         `json:"subject_id" validate:"required,notblank,max=256"`
	Payload   map[string]any `json:"payload"`
}

func (r *CreateRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.OneOf("type", r.Type, RequestTypes)
}

// Filter narrows ListRequests. Zero fields match everything.
type Filter struct {
	Status    Status      `json:"status,omitempty"`
	Type      RequestType `json:"type,omitempty"`
	SubjectID string      `json:"subject_id,omitempty"`
}

func (f Filter) Matches(r Request) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.SubjectID != "" && r.SubjectID != f.SubjectID {
		return false
	}
	return true
}

// OverdueRequest is an open request past its deadline.
type OverdueRequest struct {
	Request
	DaysOverdue int `json:"days_overdue"`
}

// Table is a personal-data table keyed by a subject column. Rows are
// addressed by their id column for rectification.
type Table struct {
	Name           string `json:"name" validate:"required,identifier"`
	SubjectColumn  string `json:"subject_column" validate:"required,identifier"`
	Classification string `json:"classification,omitempty"`
}

// DefaultTables is the personal-data table set used when none is configured.
func DefaultTables() []Table {
	return []Table{
		{Name: "users", SubjectColumn: "id", Classification: "confidential"},
		{Name: "user_profiles", SubjectColumn: "user_id", Classification: "confidential"},
		{Name: "user_preferences", SubjectColumn: "user_id", Classification: "internal"},
		{Name: "sessions", SubjectColumn: "user_id", Classification: "internal"},
		{Name: "consents", SubjectColumn: "subject_id", Classification: "restricted"},
		{Name: "identities", SubjectColumn: "subject_id", Classification: "restricted"},
	}
}

// Rectification changes fields of one record owned by the subject.
type Rectification struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

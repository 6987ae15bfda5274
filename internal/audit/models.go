package audit

import (
	"time"
)

// Category groups events by the subsystem that emitted them.
type Category string

const (
	CategoryBrowserAutomation Category = "browser-automation"
	CategoryPermission        Category = "permission"
	CategoryFile              Category = "file"
	CategoryDataStore         Category = "data-store"
	CategoryAPI               Category = "api"
	CategoryCollaboration     Category = "collaboration"
	CategoryAuth              Category = "auth"
	CategorySystem            Category = "system"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryBrowserAutomation,
	CategoryPermission,
	CategoryFile,
	CategoryDataStore,
	CategoryAPI,
	CategoryCollaboration,
	CategoryAuth,
	CategorySystem,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// RiskLevel is derived from category, operation and details. Callers never set it.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// AtLeastHigh reports whether the level is high or critical.
func (r RiskLevel) AtLeastHigh() bool {
	return r == RiskHigh || r == RiskCritical
}

// Entry is one recorded event. It is immutable once logged.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Category   Category       `json:"category"`
	Operation  string         `json:"operation"`
	Actor      string         `json:"actor"`
	Risk       RiskLevel      `json:"risk_level"`
	Success    bool           `json:"success"`
	Details    map[string]any `json:"details"`
	Context    map[string]any `json:"context,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs *int64         `json:"duration_ms,omitempty"`
	Origin     string         `json:"origin,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	CreatedAt  int64          `json:"created_at"`
	// Seq orders entries by creation. It is assigned by the backend on append.
	Seq int64 `json:"seq"`
}

// LogResult is returned by Log.
type LogResult struct {
	ID   string    `json:"id"`
	Risk RiskLevel `json:"risk_level"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
	exportBatchSize = 500
)

// Filter selects entries for Query and Export. Zero values mean "any".
type Filter struct {
	Category    Category   `json:"category,omitempty"`
	Operation   string     `json:"operation,omitempty"` // case-insensitive substring
	Actor       string     `json:"actor,omitempty"`
	Risk        RiskLevel  `json:"risk_level,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	SuccessOnly bool       `json:"success_only,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
	Page        int        `json:"page,omitempty"`
	PageSize    int        `json:"page_size,omitempty"`
}

// Normalized applies the page defaults shared by every backend.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Offset is the number of matching entries skipped before the page starts.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

func newPagination(f Filter, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + f.PageSize - 1) / f.PageSize
	}
	return Pagination{
		Page:       f.Page,
		PageSize:   f.PageSize,
		Total:      total,
		TotalPages: pages,
		HasMore:    f.Page < pages,
	}
}

type QueryResult struct {
	Entries    []Entry    `json:"entries"`
	Pagination Pagination `json:"pagination"`
}

// Granularity sets the trend bucket width for Statistics.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

type StatsRequest struct {
	Start       *time.Time  `json:"start,omitempty"`
	End         *time.Time  `json:"end,omitempty"`
	Granularity Granularity `json:"granularity,omitempty"`
}

type Summary struct {
	Total    int `json:"total"`
	Success  int `json:"success"`
	Failure  int `json:"failure"`
	HighRisk int `json:"high_risk"`
}

type ActorCount struct {
	Actor string `json:"actor"`
	Count int    `json:"count"`
}

type TrendBucket struct {
	Start    time.Time `json:"start"`
	Total    int       `json:"total"`
	Failure  int       `json:"failure"`
	HighRisk int       `json:"high_risk"`
}

type Statistics struct {
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Granularity Granularity       `json:"granularity"`
	Summary     Summary           `json:"summary"`
	ByCategory  map[Category]int  `json:"by_category"`
	ByRisk      map[RiskLevel]int `json:"by_risk"`
	TopActors   []ActorCount      `json:"top_actors"`
	Trend       []TrendBucket     `json:"trend"`
}

// RetentionOptions drive one retention sweep.
type RetentionOptions struct {
	RetentionDays         int  `json:"retention_days"`
	MaxRecords            int  `json:"max_records,omitempty"` // 0 disables count trimming
	KeepHighRisk          bool `json:"keep_high_risk"`
	HighRiskRetentionDays int  `json:"high_risk_retention_days,omitempty"`
}

type RetentionResult struct {
	Deleted   int `json:"deleted_count"`
	Remaining int `json:"remaining_count"`
}

// Counters is a snapshot of the running totals kept by the logger.
type Counters struct {
	Total      int64               `json:"total"`
	ByCategory map[Category]int64  `json:"by_category"`
	ByRisk     map[RiskLevel]int64 `json:"by_risk"`
}

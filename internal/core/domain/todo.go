package domain

import (
	"math"
	"time"
)

// StatusFilter restricts a collection read to one side of the completed flag.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterCompleted
	FilterPending
)

func (f StatusFilter) String() string {
	return []string{"all", "completed", "pending"}[f]
}

// ParseStatusFilter maps a query-level status value to a filter. Anything
// other than "completed" or "pending" (including empty and "all") means no
// filtering.
func ParseStatusFilter(status string) StatusFilter {
	switch status {
	case "completed":
		return FilterCompleted
	case "pending":
		return FilterPending
	default:
		return FilterAll
	}
}

const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 1000
)

// Todo is a single task record. IDs are assigned by the storage layer and
// exposed as opaque strings.
type Todo struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch carries a partial update. Nil fields are left untouched by the
// storage layer; this is what distinguishes "clear the description" from
// "don't change the description".
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// ListOptions parametrizes a collection read. Limit == 0 means no limit.
// Results are always sorted by creation time, newest first.
type ListOptions struct {
	Filter StatusFilter
	Skip   int64
	Limit  int64
}

// Stats aggregates completion counts. Pending is derived, not queried.
type Stats struct {
	Total     int64
	Completed int64
	Pending   int64
}

// Page is the result of a paginated collection read.
type Page struct {
	Items      []Todo
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p Page) HasPrev() bool {
	return p.Page > 1
}

// TotalPages computes ceil(total/limit) for a positive limit.
func TotalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}

	return int64(math.Ceil(float64(total) / float64(limit)))
}

package structs

import (
	"time"
)

const (
	queryLimitDefault = 99
	queryLimitMax     = 10000
)

// Query pages through batched reads.
type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// After, if set, starts the page after this row instead of at Offset.
	After *Cursor `json:"after,omitempty"`
}

// Cursor is the last row of a page of tasks ordered by (due, id).
type Cursor struct {
	Due time.Time `json:"due"`
	ID  int64     `json:"id"`
}

// CursorFor returns the cursor of the given task.
func CursorFor(t *Task) *Cursor {
	return &Cursor{Due: t.Due, ID: t.ID}
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.After != nil {
		q.Offset = 0
	}
}

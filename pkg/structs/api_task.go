package structs

import (
	"time"
)

// TaskResponse is what callers are shown of a task. Request data is only
// included for callers allowed to see it.
type TaskResponse struct {
	ID         int64  `json:"id"`
	URL        string `json:"url"`
	Status     Status `json:"status"`
	Due        string `json:"due"`
	RetryCount int64  `json:"retry_count"`
	Timeout    int64  `json:"timeout"`

	Charset string            `json:"charset,omitempty"`
	Enctype string            `json:"enctype,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    *string           `json:"body,omitempty"`
}

// NewTaskResponse renders a task, with or without its request data.
func NewTaskResponse(t *Task, withRequest bool) *TaskResponse {
	out := &TaskResponse{
		ID:         t.ID,
		URL:        t.URL,
		Status:     t.Status,
		Due:        t.Due.UTC().Format(time.RFC3339),
		RetryCount: t.RetryCount,
		Timeout:    t.Timeout,
	}
	if withRequest {
		body := t.Body
		out.Charset = t.Charset
		out.Enctype = t.Enctype
		out.Headers = t.Headers
		out.Body = &body
	}
	return out
}

// CreateApplicationResponse carries a new application and its first key.
type CreateApplicationResponse struct {
	Application *Application `json:"application"`
	Key         *APIKey      `json:"key"`
}

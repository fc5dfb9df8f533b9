package structs

import (
	"time"
)

// TaskSpec are the delivery fields of a task, fixed when the task is created.
type TaskSpec struct {
	// URL is the web hook that receives the POST delivery.
	//
	// Required.
	URL string `json:"url"`

	// Charset the body was submitted in, and will be re-encoded to on delivery.
	Charset string `json:"charset"`

	// Enctype is the content type of the body (sans charset).
	Enctype string `json:"enctype"`

	// Headers are passed through to the web hook on delivery.
	Headers map[string]string `json:"headers"`

	// Body is the payload decoded to text using Charset.
	Body string `json:"body"`

	// Timeout in seconds a single delivery attempt may take.
	Timeout int64 `json:"timeout"`
}

// Task is a single unit of web hook delivery work with its own retry state.
type Task struct {
	// TaskSpec are fields set when the task is created
	TaskSpec `json:",inline"`

	// ID is assigned by the database
	ID int64 `json:"id"`

	// ApplicationID of the owning application, if the task was created with
	// an API key.
	ApplicationID *int64 `json:"application_id,omitempty"`

	// RetryCount is the number of delivery attempts so far. It is also the
	// token that guards every state transition.
	RetryCount int64 `json:"retry_count"`

	// Due is when the task is next eligible for delivery
	Due time.Time `json:"due"`

	// Status is the current status of this task
	Status Status `json:"status"`

	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Version is incremented on every update; kept for auditing.
	Version int64 `json:"version"`
}

// TaskRef identifies a task at a given retry generation.
type TaskRef struct {
	ID         int64
	RetryCount int64
}

// TaskUpdate are the fields a state transition may set. Nil fields are left
// untouched.
type TaskUpdate struct {
	Status Status
	Due    *time.Time
}

package structs

// CreateTaskRequest is an outline to create a new task, as received by the
// front end before validation.
type CreateTaskRequest struct {
	// URL of the web hook
	URL string `json:"url"`

	// Timeout in seconds; nil means use the configured default.
	Timeout *int64 `json:"timeout,omitempty"`

	// ContentType of the submitted body, including any charset parameter.
	ContentType string `json:"content_type"`

	// Headers to pass through, already stripped of their prefix.
	Headers map[string]string `json:"headers"`

	// Body is the raw submitted payload in its declared charset.
	Body []byte `json:"body"`

	// APIKey presented by the caller, if any.
	APIKey string `json:"-"`
}

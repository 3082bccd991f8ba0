package entities

// Event names emitted to the observer over the session's event stream
const (
	EventProcessLog        = "process-log"
	EventProcessScreenshot = "process-screenshot"
	EventSuggestedFields   = "suggested-fields"
	EventRequestUserInput  = "request-user-input"
	EventRequestFileUpload = "request-file-upload"
	EventConfirmSubmission = "confirm-form-submission"
	EventProcessResult     = "process-result"
)

// LogEvent carries a single progress-log line
type LogEvent struct {
	Message string `json:"message"`
}

// SuggestedFieldsEvent shows the observer what the model inferred
type SuggestedFieldsEvent struct {
	Fields     []FieldSpec            `json:"fields"`
	Strategies []ConfirmationStrategy `json:"confirmation_strategies"`
}

// UserInputRequest asks the observer for a missing field value
type UserInputRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

// FileUploadRequest asks the observer for a file field's content
type FileUploadRequest struct {
	Prompt    string `json:"prompt"`
	FieldName string `json:"field_name"`
}

// ConfirmSubmissionEvent shows the filled responses before the submit click
type ConfirmSubmissionEvent struct {
	Message   string            `json:"message"`
	Responses map[string]string `json:"responses"`
}

// ResultEvent is the final event of a run
type ResultEvent struct {
	Status  RunStatus `json:"status"`
	Message string    `json:"message"`
}

// UserInput is the observer's answer to an outstanding input request
type UserInput struct {
	FieldName string `json:"field_name,omitempty"`
	Value     string `json:"value,omitempty"`
	File      string `json:"file,omitempty"` // base64, optionally data-URL prefixed
}

package entities

// RunStatus represents the terminal (or in-flight) state of an automation run
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusSucceeded   RunStatus = "succeeded"
	RunStatusUnconfirmed RunStatus = "unconfirmed"
	RunStatusCanceled    RunStatus = "canceled"
	RunStatusAborted     RunStatus = "aborted"
)

// SubmissionRequest is the inbound payload that starts a run
type SubmissionRequest struct {
	UserData    map[string]string `json:"user_data"`
	TargetURL   string            `json:"target_url,omitempty"`
	SearchQuery string            `json:"search_query,omitempty"`
}

// Frame is one buffered screenshot awaiting streaming to the observer
type Frame struct {
	Description string `json:"description"`
	Screenshot  string `json:"screenshot"` // base64-encoded PNG
}

// Link is one anchor collected from a page during form navigation
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// FormInfo carries the attributes needed to derive a stable form selector
type FormInfo struct {
	ID    string `json:"id"`
	Class string `json:"class"`
}

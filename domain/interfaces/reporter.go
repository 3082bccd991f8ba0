package interfaces

import "form_automation/domain/entities"

// ProgressReporter receives the outbound events of an automation run.
// Implementations must be safe for use from multiple goroutines.
type ProgressReporter interface {
	// Log emits a process-log event
	Log(message string)

	// Frame emits one process-screenshot event
	Frame(frame entities.Frame)

	// SuggestedFields emits the model's inferred plan
	SuggestedFields(fields []entities.FieldSpec, strategies []entities.ConfirmationStrategy)

	// RequestUserInput tells the observer a field value is needed
	RequestUserInput(prompt string, inputType string)

	// RequestFileUpload tells the observer a file is needed
	RequestFileUpload(prompt string, fieldName string)

	// ConfirmSubmission shows the filled responses before the submit click
	ConfirmSubmission(message string, responses map[string]string)

	// Result emits the final run status
	Result(status entities.RunStatus, message string)
}

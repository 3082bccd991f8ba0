package interfaces

import (
	"context"

	"form_automation/domain/entities"
)

// FormInterpreter maps raw form HTML to a structured fill plan via an
// external language model
type FormInterpreter interface {
	// InterpretForm analyzes form HTML against the user data and returns
	// the fields, submit action and confirmation strategies to use
	InterpretForm(ctx context.Context, formHTML string, userData map[string]string) (entities.FormPlan, error)

	// RankFormLink nominates the single most likely form-bearing link from
	// the given anchors; returns "" when the model has no usable answer
	RankFormLink(ctx context.Context, links []entities.Link) (string, error)
}

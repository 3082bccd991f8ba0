package entities

import "strings"

// FieldKind represents the input category of a form field
type FieldKind string

const (
	KindText          FieldKind = "text"
	KindEmail         FieldKind = "email"
	KindPassword      FieldKind = "password"
	KindTextarea      FieldKind = "textarea"
	KindRadio         FieldKind = "radio"
	KindCheckbox      FieldKind = "checkbox"
	KindSelect        FieldKind = "select"
	KindFile          FieldKind = "file"
	KindDate          FieldKind = "date"
	KindDatetimeLocal FieldKind = "datetime-local"
	KindTime          FieldKind = "time"
	KindMonth         FieldKind = "month"
	KindWeek          FieldKind = "week"
	KindNumber        FieldKind = "number"
	KindRange         FieldKind = "range"
	KindColor         FieldKind = "color"
	KindTel           FieldKind = "tel"
	KindURL           FieldKind = "url"
	KindSearch        FieldKind = "search"
	KindHidden        FieldKind = "hidden"
	KindButton        FieldKind = "button"
	KindReset         FieldKind = "reset"
	KindSubmit        FieldKind = "submit"
	KindImage         FieldKind = "image"
	KindUnknown       FieldKind = "unknown"
)

var knownFieldKinds = map[FieldKind]bool{
	KindText: true, KindEmail: true, KindPassword: true, KindTextarea: true,
	KindRadio: true, KindCheckbox: true, KindSelect: true, KindFile: true,
	KindDate: true, KindDatetimeLocal: true, KindTime: true, KindMonth: true,
	KindWeek: true, KindNumber: true, KindRange: true, KindColor: true,
	KindTel: true, KindURL: true, KindSearch: true, KindHidden: true,
	KindButton: true, KindReset: true, KindSubmit: true, KindImage: true,
}

// ParseFieldKind - maps a raw model-supplied type string to a FieldKind,
// downgrading anything unrecognized to KindUnknown
func ParseFieldKind(raw string) FieldKind {
	kind := FieldKind(strings.ToLower(strings.TrimSpace(raw)))
	if knownFieldKinds[kind] {
		return kind
	}
	return KindUnknown
}

// FieldSpec describes one form input inferred by the model
type FieldSpec struct {
	Label    string    `json:"label"`
	Name     string    `json:"name"`
	Kind     FieldKind `json:"type"`
	Selector string    `json:"selector"`
	Value    string    `json:"value"`
}

// DisplayName - returns the logical identifier, falling back to the label
func (f FieldSpec) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Label
}

// truthyTokens are the values that mean "select" for checkboxes and radios
var truthyTokens = map[string]bool{
	"true": true, "yes": true, "1": true, "done": true,
}

// IsTruthy - reports whether the value indicates a checkbox/radio selection
func (f FieldSpec) IsTruthy() bool {
	return truthyTokens[strings.ToLower(strings.TrimSpace(f.Value))]
}

// SubmitAction identifies the element that advances or finalizes the form
type SubmitAction struct {
	Label    string `json:"text"`
	Selector string `json:"selector"`
}

// continuationKeywords mark a submit button that leads to another form page
var continuationKeywords = []string{"next", "continue", "start"}

// IsContinuation - reports whether the submit label suggests a multi-page form
func (s SubmitAction) IsContinuation() bool {
	label := strings.ToLower(s.Label)
	for _, kw := range continuationKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// StrategyKind names a confirmation-detection heuristic
type StrategyKind string

const (
	StrategySuccessMessage StrategyKind = "success_message"
	StrategyURLChange      StrategyKind = "url_change"
	StrategyFormAbsence    StrategyKind = "form_absence"
	StrategyUnknown        StrategyKind = "unknown"
)

// ConfirmationStrategy is one model-suggested way to detect submission success
type ConfirmationStrategy struct {
	Strategy    StrategyKind `json:"strategy"`
	Description string       `json:"description,omitempty"`
}

// FormPlan is the interpreter's complete result for one form page
type FormPlan struct {
	Fields     []FieldSpec            `json:"fields"`
	Submit     SubmitAction           `json:"submit_button"`
	Strategies []ConfirmationStrategy `json:"confirmation_strategies"`
}

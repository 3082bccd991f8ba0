package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"form_automation/domain/entities"
)

// interpretPromptTemplate instructs the model to map the user data onto the
// form's fields and to propose confirmation-detection strategies, returning
// a strict JSON document.
const interpretPromptTemplate = `You are provided with the HTML content of a web form and user input data in JSON format. Your task is to analyze the user input and map it to the form fields present in the HTML content. Identify each form field's label, name, type, and CSS selector. Determine the appropriate value to fill into each field based on the user input. If any required data is missing from the user input, generate a temporary placeholder value to ensure the form can be submitted successfully.
The form may include any of the following input types: button, checkbox, color, date, datetime-local, email, file, hidden, image, month, number, password, radio, range, reset, search, submit, text, time, url, week, and any textarea or select fields.
Additionally, identify multiple strategies to detect successful form submission dynamically. These strategies may include detecting success messages, URL changes, or the absence of the form.

Provide the output in the following JSON format:
{
  "fields": [
    {"label": "Full Name", "name": "name", "type": "text", "selector": "#name", "value": "John Doe"},
    {"label": "Email Address", "name": "email", "type": "email", "selector": "#email", "value": "johndoe@example.com"}
  ],
  "submit_button": {"text": "Submit", "selector": "button[type='submit']"},
  "confirmation_strategies": [
    {"strategy": "success_message", "description": "Detect a success message with specific text or CSS selector."},
    {"strategy": "url_change", "description": "Monitor for a change in the URL indicating a confirmation page."}
  ]
}

Ensure the JSON output is properly structured and parsable.

User Input Data:
%s

HTML Content:
%s`

// InterpretForm - asks the model for the form's fill plan. A response that is
// not the expected JSON contract returns *entities.InterpretationError and is
// never retried; that failure is terminal for the current form page.
func (c *GeminiClient) InterpretForm(ctx context.Context, formHTML string, userData map[string]string) (entities.FormPlan, error) {
	data, err := json.Marshal(userData)
	if err != nil {
		return entities.FormPlan{}, fmt.Errorf("failed to serialize user data: %w", err)
	}

	prompt := fmt.Sprintf(interpretPromptTemplate, string(data), formHTML)
	response, err := c.generate(ctx, prompt, true)
	if err != nil {
		return entities.FormPlan{}, fmt.Errorf("model request failed: %w", err)
	}

	plan, err := parsePlan(response)
	if err != nil {
		c.logger.Errorf("Failed to parse model response: %v", err)
		return entities.FormPlan{}, &entities.InterpretationError{Cause: err}
	}
	return plan, nil
}

// RankFormLink - asks the model which link most likely leads to a form page.
// The answer is a bare href; an empty or whitespace answer means no nominee.
func (c *GeminiClient) RankFormLink(ctx context.Context, links []entities.Link) (string, error) {
	var b strings.Builder
	b.WriteString("Given a list of links on a webpage, identify the most likely link that leads to a form to fill out and submit. Provide the 'href' of the link in plain text with no extra commentary.\n\nLinks:\n")
	for _, link := range links {
		fmt.Fprintf(&b, "Text: %s, Href: %s\n", link.Text, link.Href)
	}
	b.WriteString("\nMost likely link href:")

	response, err := c.generate(ctx, b.String(), false)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	return strings.TrimSpace(stripMarkdownFences(response)), nil
}

// Wire shapes for the model's plan document. Value is raw because models
// return booleans and numbers for checkbox/number fields despite the contract
// asking for strings.
type planWire struct {
	Fields []struct {
		Label    string          `json:"label"`
		Name     string          `json:"name"`
		Type     string          `json:"type"`
		Selector string          `json:"selector"`
		Value    json.RawMessage `json:"value"`
	} `json:"fields"`
	SubmitButton struct {
		Text     string `json:"text"`
		Selector string `json:"selector"`
	} `json:"submit_button"`
	ConfirmationStrategies []struct {
		Strategy    string `json:"strategy"`
		Description string `json:"description"`
	} `json:"confirmation_strategies"`
}

// parsePlan - defensively parses the model's JSON into a FormPlan. Unknown
// field types downgrade to the unknown kind; strategy tags are carried through
// verbatim so the verifier can log unrecognized ones.
func parsePlan(response string) (entities.FormPlan, error) {
	cleaned := stripMarkdownFences(response)

	var wire planWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return entities.FormPlan{}, err
	}
	if len(wire.Fields) == 0 {
		return entities.FormPlan{}, fmt.Errorf("response contains no fields")
	}

	plan := entities.FormPlan{
		Submit: entities.SubmitAction{
			Label:    wire.SubmitButton.Text,
			Selector: wire.SubmitButton.Selector,
		},
	}

	for _, f := range wire.Fields {
		plan.Fields = append(plan.Fields, entities.FieldSpec{
			Label:    f.Label,
			Name:     f.Name,
			Kind:     entities.ParseFieldKind(f.Type),
			Selector: f.Selector,
			Value:    coerceValue(f.Value),
		})
	}
	for _, s := range wire.ConfirmationStrategies {
		plan.Strategies = append(plan.Strategies, entities.ConfirmationStrategy{
			Strategy:    entities.StrategyKind(s.Strategy),
			Description: s.Description,
		})
	}
	return plan, nil
}

// coerceValue - normalizes a JSON value (string, bool, number, null) to the
// string representation the fill strategies expect
func coerceValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// stripMarkdownFences - removes ```json fences some models wrap around the
// document, and falls back to the outermost braces when extra prose leaks in
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		var inner []string
		inBlock := false
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "```") {
				if inBlock {
					break
				}
				inBlock = true
				continue
			}
			if inBlock {
				inner = append(inner, line)
			}
		}
		if len(inner) > 0 {
			return strings.Join(inner, "\n")
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

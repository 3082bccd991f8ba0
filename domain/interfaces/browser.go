package interfaces

import (
	"context"

	"form_automation/domain/entities"
)

// Browser defines the page-interaction primitives the automation core needs.
// A Browser instance owns exactly one page and is never shared across sessions.
type Browser interface {
	// Navigate navigates the page to a URL
	Navigate(ctx context.Context, url string) error

	// URL returns the current page URL
	URL(ctx context.Context) (string, error)

	// InnerHTML returns the inner HTML of the first element matching selector
	InnerHTML(ctx context.Context, selector string) (string, error)

	// Forms returns id/class attributes for every form-like container on the page
	Forms(ctx context.Context) ([]entities.FormInfo, error)

	// Anchors returns text and href for every anchor on the page
	Anchors(ctx context.Context) ([]entities.Link, error)

	// Exists reports whether at least one element matches selector
	Exists(ctx context.Context, selector string) (bool, error)

	// InnerText returns the visible text of the first element matching selector
	InnerText(ctx context.Context, selector string) (string, error)

	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error

	// Fill atomically sets the value of an input element
	Fill(ctx context.Context, selector string, value string) error

	// TypeSlowly focuses, clears and types into an element character by
	// character with human-like delays
	TypeSlowly(ctx context.Context, selector string, value string) error

	// Check selects a checkbox or radio element; it never unchecks
	Check(ctx context.Context, selector string) error

	// SelectOption chooses the select option whose value matches exactly
	SelectOption(ctx context.Context, selector string, value string) error

	// SetFiles points a file input at a local path
	SetFiles(ctx context.Context, selector string, path string) error

	// SetValue sets an element's value via script, without UI interaction
	SetValue(ctx context.Context, selector string, value string) error

	// DispatchInput sets a value via script and fires an input event so
	// reactive UIs observe the change
	DispatchInput(ctx context.Context, selector string, value string) error

	// ScrollIntoView scrolls the element to the viewport center
	ScrollIntoView(ctx context.Context, selector string) error

	// Screenshot captures the current page as PNG bytes
	Screenshot(ctx context.Context) ([]byte, error)

	// Close closes the page, context and browser
	Close() error
}

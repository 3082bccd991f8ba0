package automation

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// fieldDelay paces the fill loop so a human observer can follow along. It is
// purely for observability, not correctness.
const defaultFieldDelay = 500 * time.Millisecond

// FillerOptions tunes the fill loop
type FillerOptions struct {
	// PromptOnEmpty requests human input for fields the model left blank.
	// When false, empty values are treated as intentionally blank.
	PromptOnEmpty bool
	// FieldDelay is the pause between fields; zero disables pacing
	FieldDelay time.Duration
	// TempDir receives decoded upload files; empty means os.TempDir()
	TempDir string
}

// Filler performs the correct input action for each inferred field, with
// human-input fallback for missing values. Single-field failures are logged
// and skipped; the loop always continues to the next field.
type Filler struct {
	browser  interfaces.Browser
	gate     interfaces.InputGate
	reporter interfaces.ProgressReporter
	rec      *Recorder
	logger   *logrus.Logger
	opts     FillerOptions
}

// NewFiller - creates a field filler
func NewFiller(browser interfaces.Browser, gate interfaces.InputGate, reporter interfaces.ProgressReporter, rec *Recorder, logger *logrus.Logger, opts FillerOptions) *Filler {
	if opts.FieldDelay == 0 {
		opts.FieldDelay = defaultFieldDelay
	}
	return &Filler{
		browser:  browser,
		gate:     gate,
		reporter: reporter,
		rec:      rec,
		logger:   logger,
		opts:     opts,
	}
}

// Fill - fills every field in array order and returns the fields with their
// resolved values. A failing field never aborts the loop.
func (f *Filler) Fill(ctx context.Context, fields []entities.FieldSpec) []entities.FieldSpec {
	resolved := make([]entities.FieldSpec, len(fields))
	copy(resolved, fields)

	for i := range resolved {
		if err := ctx.Err(); err != nil {
			f.logger.Warnf("Fill loop stopped: %v", err)
			return resolved
		}

		field := &resolved[i]
		cleanup, err := f.resolveValue(ctx, field)
		if err != nil {
			f.rec.Log(fmt.Sprintf("No value obtained for field '%s': %v. Skipping.", field.DisplayName(), err))
			continue
		}

		if err := f.fillOne(ctx, *field); err != nil {
			f.rec.Log(fmt.Sprintf("Failed to fill field '%s': %v. Continuing with remaining fields.", field.DisplayName(), err))
		} else if field.Kind != entities.KindHidden {
			f.rec.Capture(ctx, fmt.Sprintf("Filled field '%s' with value '%s'.", field.DisplayName(), displayValue(*field)))
		}

		if cleanup != nil {
			cleanup()
		}

		if f.opts.FieldDelay > 0 {
			sleepCtx(ctx, f.opts.FieldDelay)
		}
	}
	return resolved
}

// resolveValue - obtains a value for the field, asking the human-input gate
// when the model left it empty. The returned cleanup removes any temp file
// created for a file upload and may be nil.
func (f *Filler) resolveValue(ctx context.Context, field *entities.FieldSpec) (func(), error) {
	if field.Value != "" || !f.opts.PromptOnEmpty {
		return nil, nil
	}
	// Buttons are never filled, so nothing to request.
	switch field.Kind {
	case entities.KindButton, entities.KindReset, entities.KindSubmit, entities.KindImage, entities.KindHidden:
		return nil, nil
	}

	if field.Kind == entities.KindFile {
		prompt := fmt.Sprintf("Please upload a file for the field '%s' (%s).", field.DisplayName(), field.Label)
		f.reporter.RequestFileUpload(prompt, field.DisplayName())
		f.rec.Log("Awaiting user file upload...")
		input, err := f.gate.Request(ctx, field.DisplayName())
		if err != nil {
			return nil, err
		}
		path, err := f.decodeUpload(input.File, field.DisplayName())
		if err != nil {
			return nil, err
		}
		field.Value = path
		return func() { os.Remove(path) }, nil
	}

	prompt := fmt.Sprintf("Please provide a value for the field '%s' (%s).", field.DisplayName(), field.Label)
	f.reporter.RequestUserInput(prompt, string(field.Kind))
	f.rec.Log("Awaiting user input...")
	input, err := f.gate.Request(ctx, field.DisplayName())
	if err != nil {
		return nil, err
	}
	field.Value = input.Value
	return nil, nil
}

// fillOne - dispatches the single fill strategy for the field's kind
func (f *Filler) fillOne(ctx context.Context, field entities.FieldSpec) error {
	switch field.Kind {
	case entities.KindText, entities.KindEmail, entities.KindPassword, entities.KindTextarea:
		return f.typeWithFallback(ctx, field)

	case entities.KindRadio, entities.KindCheckbox:
		if !field.IsTruthy() {
			// Explicitly a no-op: the underlying control call only checks,
			// never unchecks.
			f.rec.Log(fmt.Sprintf("Skipping checkbox/radio '%s' as value '%s' did not indicate selection.", field.DisplayName(), field.Value))
			return nil
		}
		f.scroll(ctx, field.Selector)
		return f.browser.Check(ctx, field.Selector)

	case entities.KindSelect:
		f.scroll(ctx, field.Selector)
		return f.browser.SelectOption(ctx, field.Selector, field.Value)

	case entities.KindFile:
		f.scroll(ctx, field.Selector)
		return f.browser.SetFiles(ctx, field.Selector, field.Value)

	case entities.KindRange:
		f.scroll(ctx, field.Selector)
		return f.browser.DispatchInput(ctx, field.Selector, field.Value)

	case entities.KindDate, entities.KindDatetimeLocal, entities.KindTime,
		entities.KindMonth, entities.KindWeek, entities.KindNumber,
		entities.KindColor, entities.KindTel, entities.KindURL, entities.KindSearch:
		f.scroll(ctx, field.Selector)
		return f.browser.Fill(ctx, field.Selector, field.Value)

	case entities.KindHidden:
		return f.browser.SetValue(ctx, field.Selector, field.Value)

	case entities.KindButton, entities.KindReset, entities.KindSubmit, entities.KindImage:
		f.rec.Log(fmt.Sprintf("Skipping field type '%s' for field '%s'.", field.Kind, field.DisplayName()))
		return nil

	default:
		f.rec.Log(fmt.Sprintf("Unknown field type '%s' for field '%s'. Attempting text fill.", field.Kind, field.DisplayName()))
		return f.typeWithFallback(ctx, field)
	}
}

// typeWithFallback - types character by character for the human-watchable
// effect, falling back to an atomic fill when typing fails
func (f *Filler) typeWithFallback(ctx context.Context, field entities.FieldSpec) error {
	f.scroll(ctx, field.Selector)
	if err := f.browser.TypeSlowly(ctx, field.Selector, field.Value); err != nil {
		f.logger.Warnf("Error during typing into '%s': %v. Falling back to atomic fill.", field.Selector, err)
		return f.browser.Fill(ctx, field.Selector, field.Value)
	}
	return nil
}

func (f *Filler) scroll(ctx context.Context, selector string) {
	if err := f.browser.ScrollIntoView(ctx, selector); err != nil {
		f.logger.Warnf("Error during scrolling to '%s': %v", selector, err)
	}
}

// decodeUpload - decodes a base64 (optionally data-URL prefixed) payload to a
// temp file and returns its path
func (f *Filler) decodeUpload(payload string, fieldName string) (string, error) {
	if payload == "" {
		return "", fmt.Errorf("empty file payload")
	}

	ext := "bin"
	encoded := payload
	if idx := strings.Index(payload, ","); idx >= 0 {
		header := payload[:idx]
		encoded = payload[idx+1:]
		// data:image/png;base64 -> png
		if slash := strings.Index(header, "/"); slash >= 0 {
			rest := header[slash+1:]
			if semi := strings.Index(rest, ";"); semi >= 0 {
				rest = rest[:semi]
			}
			if rest != "" {
				ext = rest
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode file payload: %w", err)
	}

	dir := f.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("upload_%s.%s", sanitizeName(fieldName), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// displayValue - renders a field value for logs and screenshot captions,
// keeping file payloads and oversized values out of the event stream
func displayValue(field entities.FieldSpec) string {
	value := field.Value
	if field.Kind == entities.KindFile {
		return filepath.Base(value)
	}
	if len(value) > 64 {
		return value[:64] + "..."
	}
	return value
}

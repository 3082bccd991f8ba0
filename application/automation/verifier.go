package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// Canonical probes for confirmation detection. These are fixed tables, not
// model-supplied data; the model only chooses which strategies to try and
// in what order.
var (
	successSelectors = []string{"div.success", "p.success", ".alert-success", ".message.success"}
	successTexts     = []string{"thank you", "successfully submitted", "we have received your", "your form has been submitted"}
	formSelectors    = []string{"form", "div.form-container", "#contact-form"}
)

// urlChangeWait is an unconditional wall-clock wait, not a poll. The latency
// cost is accepted; changing it to an early-exit poll would shift timing
// behavior observers depend on.
const urlChangeWait = 5 * time.Second

// Verifier detects successful form submission by trying the model-supplied
// strategies strictly in order, stopping at the first hit.
type Verifier struct {
	browser interfaces.Browser
	rec     *Recorder
	wait    func(ctx context.Context, d time.Duration)
}

// NewVerifier - creates a submission verifier
func NewVerifier(browser interfaces.Browser, rec *Recorder) *Verifier {
	return &Verifier{
		browser: browser,
		rec:     rec,
		wait:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Verify - runs the strategies in list order and reports whether any of them
// detected success. Exhausting all strategies is an inconclusive result, not
// an error; the caller surfaces it as "verify, please" rather than failure.
func (v *Verifier) Verify(ctx context.Context, strategies []entities.ConfirmationStrategy, preSubmitURL string) bool {
	for _, strategy := range strategies {
		v.rec.Log(fmt.Sprintf("Attempting confirmation strategy: %s - %s", strategy.Strategy, strategy.Description))
		v.rec.Capture(ctx, fmt.Sprintf("Attempting confirmation strategy: %s", strategy.Strategy))

		switch strategy.Strategy {
		case entities.StrategySuccessMessage:
			if v.checkSuccessMessage(ctx) {
				return true
			}
		case entities.StrategyURLChange:
			if v.checkURLChange(ctx, preSubmitURL) {
				return true
			}
		case entities.StrategyFormAbsence:
			if v.checkFormAbsence(ctx) {
				return true
			}
		default:
			v.rec.Log(fmt.Sprintf("Unknown confirmation strategy: %s", strategy.Strategy))
		}
	}
	return false
}

// checkSuccessMessage - probes the fixed success selectors for one containing
// a canonical positive phrase, case-insensitively. First matching selector wins.
func (v *Verifier) checkSuccessMessage(ctx context.Context) bool {
	for _, sel := range successSelectors {
		present, err := v.browser.Exists(ctx, sel)
		if err != nil || !present {
			continue
		}
		text, err := v.browser.InnerText(ctx, sel)
		if err != nil {
			continue
		}
		lower := strings.ToLower(text)
		for _, phrase := range successTexts {
			if strings.Contains(lower, phrase) {
				v.rec.Log(fmt.Sprintf("Success message detected using selector '%s'.", sel))
				v.rec.Capture(ctx, fmt.Sprintf("Success message detected using selector '%s'.", sel))
				return true
			}
		}
	}
	return false
}

// checkURLChange - captures the URL, waits the fixed window, and treats any
// difference as success.
func (v *Verifier) checkURLChange(ctx context.Context, preSubmitURL string) bool {
	original, err := v.browser.URL(ctx)
	if err != nil {
		original = preSubmitURL
	}
	v.wait(ctx, urlChangeWait)
	current, err := v.browser.URL(ctx)
	if err != nil {
		return false
	}
	if current != original {
		v.rec.Log(fmt.Sprintf("URL changed from %s to %s.", original, current))
		v.rec.Capture(ctx, fmt.Sprintf("URL changed from %s to %s.", original, current))
		return true
	}
	return false
}

// checkFormAbsence - succeeds iff none of the generic form containers remain.
func (v *Verifier) checkFormAbsence(ctx context.Context) bool {
	for _, sel := range formSelectors {
		present, err := v.browser.Exists(ctx, sel)
		if err != nil {
			continue
		}
		if present {
			return false
		}
	}
	v.rec.Log("Form is no longer present on the page.")
	v.rec.Capture(ctx, "Form is no longer present on the page.")
	return true
}

package automation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// runState is one step of the submission state machine
type runState int

const (
	stateInit runState = iota
	stateLocateForm
	stateInterpret
	stateFill
	stateConfirm
	stateSubmit
	stateVerify
)

// maxFormPages caps multi-page (wizard) traversal so a misbehaving form
// cannot loop the machine forever
const maxFormPages = 10

// postSubmitWait gives the next wizard page time to render before relocating
const postSubmitWait = 2 * time.Second

// OrchestratorOptions tunes a run
type OrchestratorOptions struct {
	// RequireConfirmation gates the submit click on an explicit "yes" from
	// the observer
	RequireConfirmation bool
	// PostSubmitWait overrides the settle pause between wizard pages;
	// zero means the default
	PostSubmitWait time.Duration
}

// Orchestrator drives one automation run through
// Init -> LocateForm -> Interpret -> Fill -> (ConfirmWithUser) -> Submit ->
// Verify, looping back to LocateForm for multi-page forms. All browser
// operations are sequential; the page handle is never used concurrently.
type Orchestrator struct {
	browser     interfaces.Browser
	interpreter interfaces.FormInterpreter
	gate        interfaces.InputGate
	reporter    interfaces.ProgressReporter
	rec         *Recorder
	locator     *Locator
	filler      *Filler
	verifier    *Verifier
	logger      *logrus.Logger
	opts        OrchestratorOptions
}

// NewOrchestrator - creates the state machine for one session
func NewOrchestrator(
	browser interfaces.Browser,
	interpreter interfaces.FormInterpreter,
	gate interfaces.InputGate,
	reporter interfaces.ProgressReporter,
	rec *Recorder,
	locator *Locator,
	filler *Filler,
	verifier *Verifier,
	logger *logrus.Logger,
	opts OrchestratorOptions,
) *Orchestrator {
	return &Orchestrator{
		browser:     browser,
		interpreter: interpreter,
		gate:        gate,
		reporter:    reporter,
		rec:         rec,
		locator:     locator,
		filler:      filler,
		verifier:    verifier,
		logger:      logger,
		opts:        opts,
	}
}

// Run - executes the full state machine for one submission request. The
// returned status distinguishes success, an inconclusive verification, a
// clean user cancellation, and an aborted run; err is non-nil only for
// aborted runs.
func (o *Orchestrator) Run(ctx context.Context, req entities.SubmissionRequest) (status entities.RunStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorf("Panic inside automation state machine: %v", r)
			status = entities.RunStatusAborted
			err = fmt.Errorf("automation panicked: %v", r)
		}
	}()

	var (
		state        = stateInit
		formSelector string
		plan         entities.FormPlan
		filled       []entities.FieldSpec
		preSubmitURL string
		navAttempted bool
		pagesFilled  int
	)

	for {
		if cerr := ctx.Err(); cerr != nil {
			return entities.RunStatusAborted, fmt.Errorf("run canceled: %w", cerr)
		}

		switch state {
		case stateInit:
			target := o.targetFor(req)
			if target == "" {
				return entities.RunStatusAborted, fmt.Errorf("no target URL or search query provided")
			}
			o.rec.Log("Launching browser and navigating to the target website.")
			if nerr := o.browser.Navigate(ctx, target); nerr != nil {
				return entities.RunStatusAborted, fmt.Errorf("failed to navigate to %s: %w", target, nerr)
			}
			o.rec.Log("Navigated to the target website.")
			o.rec.Capture(ctx, "Navigated to the target website.")
			state = stateLocateForm

		case stateLocateForm:
			selector, ok := o.locator.Locate(ctx)
			if ok {
				formSelector = selector
				o.rec.Log("Form located on the website.")
				state = stateInterpret
				continue
			}
			if navAttempted {
				return entities.RunStatusAborted, ErrLocatorMiss
			}
			navAttempted = true
			o.rec.Log("Form not found on the landing page. Attempting to navigate to the form page.")
			formPageURL, ok := o.locator.NavigateToForm(ctx)
			if !ok {
				o.rec.Log("Failed to navigate to the form page.")
				return entities.RunStatusAborted, ErrLocatorMiss
			}
			o.rec.Log(fmt.Sprintf("Navigated to form page: %s", formPageURL))
			o.rec.Capture(ctx, "Navigated to form page.")

		case stateInterpret:
			formHTML, herr := o.browser.InnerHTML(ctx, formSelector)
			if herr != nil {
				return entities.RunStatusAborted, fmt.Errorf("failed to extract form HTML: %w", herr)
			}
			o.rec.Log("Analyzing form fields with the language model...")
			var ierr error
			plan, ierr = o.interpreter.InterpretForm(ctx, formHTML, req.UserData)
			if ierr != nil {
				// Interpretation failures are terminal for the page, never
				// retried transparently.
				return entities.RunStatusAborted, ierr
			}
			o.rec.Log("Successfully extracted form fields, submit button, and confirmation strategies.")
			o.rec.Capture(ctx, "Extracted form details.")
			o.reporter.SuggestedFields(plan.Fields, plan.Strategies)
			state = stateFill

		case stateFill:
			o.rec.Log("Filling out the form fields...")
			filled = o.filler.Fill(ctx, plan.Fields)
			o.rec.Log("Form fields filled.")
			o.rec.Capture(ctx, "Form fields filled.")
			if o.opts.RequireConfirmation {
				state = stateConfirm
			} else {
				state = stateSubmit
			}

		case stateConfirm:
			responses := make(map[string]string, len(filled))
			for _, field := range filled {
				responses[field.Label] = displayValue(field)
			}
			o.reporter.ConfirmSubmission("Shall I submit the form with the following details?", responses)
			o.rec.Log("Awaiting submission confirmation...")
			answer, gerr := o.gate.Request(ctx, "confirm_submission")
			if gerr != nil {
				return entities.RunStatusAborted, fmt.Errorf("confirmation request failed: %w", gerr)
			}
			if !strings.EqualFold(strings.TrimSpace(answer.Value), "yes") {
				o.rec.Log("Submission canceled by user.")
				return entities.RunStatusCanceled, nil
			}
			state = stateSubmit

		case stateSubmit:
			preSubmitURL, _ = o.browser.URL(ctx)
			submitSelector := plan.Submit.Selector
			if submitSelector == "" {
				submitSelector = "button[type='submit']"
			}
			o.rec.Log("Submitting the form...")
			if cerr := o.browser.Click(ctx, submitSelector); cerr != nil {
				return entities.RunStatusAborted, fmt.Errorf("failed to click submit button: %w", cerr)
			}
			o.rec.Capture(ctx, "Clicked submit button.")

			if plan.Submit.IsContinuation() {
				pagesFilled++
				if pagesFilled >= maxFormPages {
					return entities.RunStatusAborted, fmt.Errorf("form exceeded %d wizard pages", maxFormPages)
				}
				o.rec.Log(fmt.Sprintf("Submit button '%s' looks like a continuation. Locating the next form page.", plan.Submit.Label))
				wait := o.opts.PostSubmitWait
				if wait == 0 {
					wait = postSubmitWait
				}
				sleepCtx(ctx, wait)
				formSelector = ""
				state = stateLocateForm
				continue
			}
			state = stateVerify

		case stateVerify:
			o.rec.Log("Waiting for confirmation using dynamic strategies...")
			if o.verifier.Verify(ctx, plan.Strategies, preSubmitURL) {
				o.rec.Log("Form submitted successfully!")
				o.rec.Capture(ctx, "Form submitted successfully.")
				return entities.RunStatusSucceeded, nil
			}
			o.rec.Log("Confirmation not detected. Verify submission.")
			o.rec.Capture(ctx, "Confirmation not detected.")
			return entities.RunStatusUnconfirmed, nil
		}
	}
}

// targetFor - resolves the entry URL: an explicit target wins, otherwise a
// search query becomes a search-results navigation and the locator's
// link-ranking path takes over from there
func (o *Orchestrator) targetFor(req entities.SubmissionRequest) string {
	if req.TargetURL != "" {
		return req.TargetURL
	}
	if req.SearchQuery != "" {
		return "https://www.google.com/search?q=" + url.QueryEscape(req.SearchQuery)
	}
	return ""
}

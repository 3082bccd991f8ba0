package automation

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// quietLogger - a logger that discards output so test logs stay readable
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// call records one browser interaction for order and argument assertions
type call struct {
	Method   string
	Selector string
	Value    string
}

// fakeBrowser - scriptable Browser double. Hooks default to success; every
// interaction is appended to Calls.
type fakeBrowser struct {
	mu    sync.Mutex
	Calls []call

	NavigateFn   func(url string) error
	URLFn        func() (string, error)
	InnerHTMLFn  func(selector string) (string, error)
	FormsFn      func() ([]entities.FormInfo, error)
	AnchorsFn    func() ([]entities.Link, error)
	ExistsFn     func(selector string) (bool, error)
	InnerTextFn  func(selector string) (string, error)
	ClickFn      func(selector string) error
	FillFn       func(selector, value string) error
	TypeSlowlyFn func(selector, value string) error
	CheckFn      func(selector string) error
	SelectFn     func(selector, value string) error
	SetFilesFn   func(selector, path string) error
}

func (b *fakeBrowser) record(method, selector, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, call{Method: method, Selector: selector, Value: value})
}

// calledMethods - returns the method names in call order, skipping the
// scroll and screenshot noise
func (b *fakeBrowser) calledMethods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.Calls {
		if c.Method == "ScrollIntoView" || c.Method == "Screenshot" {
			continue
		}
		out = append(out, c.Method)
	}
	return out
}

func (b *fakeBrowser) callsTo(method string) []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []call
	for _, c := range b.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.record("Navigate", url, "")
	if b.NavigateFn != nil {
		return b.NavigateFn(url)
	}
	return nil
}

func (b *fakeBrowser) URL(ctx context.Context) (string, error) {
	b.record("URL", "", "")
	if b.URLFn != nil {
		return b.URLFn()
	}
	return "https://example.com/form", nil
}

func (b *fakeBrowser) InnerHTML(ctx context.Context, selector string) (string, error) {
	b.record("InnerHTML", selector, "")
	if b.InnerHTMLFn != nil {
		return b.InnerHTMLFn(selector)
	}
	return "<form></form>", nil
}

func (b *fakeBrowser) Forms(ctx context.Context) ([]entities.FormInfo, error) {
	b.record("Forms", "", "")
	if b.FormsFn != nil {
		return b.FormsFn()
	}
	return []entities.FormInfo{{}}, nil
}

func (b *fakeBrowser) Anchors(ctx context.Context) ([]entities.Link, error) {
	b.record("Anchors", "", "")
	if b.AnchorsFn != nil {
		return b.AnchorsFn()
	}
	return nil, nil
}

func (b *fakeBrowser) Exists(ctx context.Context, selector string) (bool, error) {
	b.record("Exists", selector, "")
	if b.ExistsFn != nil {
		return b.ExistsFn(selector)
	}
	return false, nil
}

func (b *fakeBrowser) InnerText(ctx context.Context, selector string) (string, error) {
	b.record("InnerText", selector, "")
	if b.InnerTextFn != nil {
		return b.InnerTextFn(selector)
	}
	return "", nil
}

func (b *fakeBrowser) Click(ctx context.Context, selector string) error {
	b.record("Click", selector, "")
	if b.ClickFn != nil {
		return b.ClickFn(selector)
	}
	return nil
}

func (b *fakeBrowser) Fill(ctx context.Context, selector string, value string) error {
	b.record("Fill", selector, value)
	if b.FillFn != nil {
		return b.FillFn(selector, value)
	}
	return nil
}

func (b *fakeBrowser) TypeSlowly(ctx context.Context, selector string, value string) error {
	b.record("TypeSlowly", selector, value)
	if b.TypeSlowlyFn != nil {
		return b.TypeSlowlyFn(selector, value)
	}
	return nil
}

func (b *fakeBrowser) Check(ctx context.Context, selector string) error {
	b.record("Check", selector, "")
	if b.CheckFn != nil {
		return b.CheckFn(selector)
	}
	return nil
}

func (b *fakeBrowser) SelectOption(ctx context.Context, selector string, value string) error {
	b.record("SelectOption", selector, value)
	if b.SelectFn != nil {
		return b.SelectFn(selector, value)
	}
	return nil
}

func (b *fakeBrowser) SetFiles(ctx context.Context, selector string, path string) error {
	b.record("SetFiles", selector, path)
	if b.SetFilesFn != nil {
		return b.SetFilesFn(selector, path)
	}
	return nil
}

func (b *fakeBrowser) SetValue(ctx context.Context, selector string, value string) error {
	b.record("SetValue", selector, value)
	return nil
}

func (b *fakeBrowser) DispatchInput(ctx context.Context, selector string, value string) error {
	b.record("DispatchInput", selector, value)
	return nil
}

func (b *fakeBrowser) ScrollIntoView(ctx context.Context, selector string) error {
	b.record("ScrollIntoView", selector, "")
	return nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	b.record("Screenshot", "", "")
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

func (b *fakeBrowser) Close() error {
	b.record("Close", "", "")
	return nil
}

// fakeGate - returns scripted answers keyed by field name and records
// every request
type fakeGate struct {
	mu       sync.Mutex
	Requests []string
	Answers  map[string]entities.UserInput
	Err      error
}

func (g *fakeGate) Request(ctx context.Context, fieldName string) (entities.UserInput, error) {
	g.mu.Lock()
	g.Requests = append(g.Requests, fieldName)
	g.mu.Unlock()
	if g.Err != nil {
		return entities.UserInput{}, g.Err
	}
	if input, ok := g.Answers[fieldName]; ok {
		return input, nil
	}
	return entities.UserInput{}, errors.New("no scripted answer")
}

func (g *fakeGate) Resolve(input entities.UserInput) {}

func (g *fakeGate) Discard() {}

func (g *fakeGate) requested() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.Requests...)
}

// fakeReporter - collects emitted events for assertions
type fakeReporter struct {
	mu            sync.Mutex
	Logs          []string
	Frames        []entities.Frame
	InputPrompts  []string
	UploadPrompts []string
	Confirms      []map[string]string
	Suggested     [][]entities.FieldSpec
	Results       []entities.RunStatus
}

func (r *fakeReporter) Log(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Logs = append(r.Logs, message)
}

func (r *fakeReporter) Frame(frame entities.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, frame)
}

func (r *fakeReporter) SuggestedFields(fields []entities.FieldSpec, strategies []entities.ConfirmationStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Suggested = append(r.Suggested, fields)
}

func (r *fakeReporter) RequestUserInput(prompt string, inputType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.InputPrompts = append(r.InputPrompts, prompt)
}

func (r *fakeReporter) RequestFileUpload(prompt string, fieldName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UploadPrompts = append(r.UploadPrompts, prompt)
}

func (r *fakeReporter) ConfirmSubmission(message string, responses map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Confirms = append(r.Confirms, responses)
}

func (r *fakeReporter) Result(status entities.RunStatus, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, status)
}

func (r *fakeReporter) logLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Logs...)
}

// fakeInterpreter - returns scripted plans in sequence
type fakeInterpreter struct {
	mu       sync.Mutex
	Plans    []entities.FormPlan
	PlanErr  error
	BestHref string
	calls    int
}

func (i *fakeInterpreter) InterpretForm(ctx context.Context, formHTML string, userData map[string]string) (entities.FormPlan, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.PlanErr != nil {
		return entities.FormPlan{}, i.PlanErr
	}
	plan := i.Plans[i.calls%len(i.Plans)]
	i.calls++
	return plan, nil
}

func (i *fakeInterpreter) RankFormLink(ctx context.Context, links []entities.Link) (string, error) {
	return i.BestHref, nil
}

// dropSink - discards frames; tests that care use a collecting FrameSink
type dropSink struct{}

func (dropSink) Push(frame entities.Frame) {}

var (
	_ interfaces.Browser          = (*fakeBrowser)(nil)
	_ interfaces.InputGate        = (*fakeGate)(nil)
	_ interfaces.ProgressReporter = (*fakeReporter)(nil)
	_ interfaces.FormInterpreter  = (*fakeInterpreter)(nil)
	_ FrameSink                   = dropSink{}
)

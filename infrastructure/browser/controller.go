package browser

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

type browserController struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger
}

// NewBrowserController - launches Chromium and creates one page. Each session
// gets its own controller; the page is never shared across sessions.
func NewBrowserController(logger *logrus.Logger) (interfaces.Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	headless := os.Getenv("HEADLESS") != "false"

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-popup-blocking",
			"--disable-notifications",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	return &browserController{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
		logger:  logger,
	}, nil
}

// Navigate - navigates to the specified URL and waits for the network to settle
func (b *browserController) Navigate(ctx context.Context, url string) error {
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(60000),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// URL - returns the current page URL
func (b *browserController) URL(ctx context.Context) (string, error) {
	return b.page.URL(), nil
}

// InnerHTML - returns the inner HTML of the first matching element
func (b *browserController) InnerHTML(ctx context.Context, selector string) (string, error) {
	return b.page.Locator(selector).First().InnerHTML(playwright.LocatorInnerHTMLOptions{
		Timeout: playwright.Float(5000),
	})
}

// Forms - extracts id and class attributes for every form on the page
func (b *browserController) Forms(ctx context.Context) ([]entities.FormInfo, error) {
	jsCode := `
	() => Array.from(document.querySelectorAll('form')).map(f => ({
		id: f.id || '',
		class: f.className || ''
	}))
	`
	result, err := b.page.Evaluate(jsCode)
	if err != nil {
		return nil, fmt.Errorf("failed to extract forms: %w", err)
	}

	items, ok := result.([]interface{})
	if !ok {
		return []entities.FormInfo{}, nil
	}

	forms := make([]entities.FormInfo, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		forms = append(forms, entities.FormInfo{
			ID:    getString(m, "id"),
			Class: getString(m, "class"),
		})
	}
	return forms, nil
}

// Anchors - extracts text and href for every anchor that carries an href
func (b *browserController) Anchors(ctx context.Context) ([]entities.Link, error) {
	jsCode := `
	() => Array.from(document.querySelectorAll('a[href]')).map(a => ({
		text: (a.textContent || '').trim().substring(0, 200),
		href: a.getAttribute('href') || ''
	})).filter(l => l.href)
	`
	result, err := b.page.Evaluate(jsCode)
	if err != nil {
		return nil, fmt.Errorf("failed to extract links: %w", err)
	}

	items, ok := result.([]interface{})
	if !ok {
		return []entities.Link{}, nil
	}

	links := make([]entities.Link, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		links = append(links, entities.Link{
			Text: getString(m, "text"),
			Href: getString(m, "href"),
		})
	}
	return links, nil
}

// Exists - reports whether at least one element matches the selector
func (b *browserController) Exists(ctx context.Context, selector string) (bool, error) {
	count, err := b.page.Locator(selector).Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InnerText - returns the visible text of the first matching element
func (b *browserController) InnerText(ctx context.Context, selector string) (string, error) {
	return b.page.Locator(selector).First().InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(2000),
	})
}

// Click - waits for the element to be visible, clicks it, and lets the page settle
func (b *browserController) Click(ctx context.Context, selector string) error {
	locator := b.page.Locator(selector).First()

	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		return fmt.Errorf("element not found or not visible: %w", err)
	}

	if err := locator.Click(); err != nil {
		return fmt.Errorf("failed to click element: %w", err)
	}

	// Best-effort settle, pages with long-polling never reach networkidle
	if err := b.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(5000),
	}); err != nil {
		b.logger.Debugf("Page did not settle after click: %v", err)
	}
	return nil
}

// Fill - atomically sets an input's value
func (b *browserController) Fill(ctx context.Context, selector string, value string) error {
	locator := b.page.Locator(selector).First()

	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		return fmt.Errorf("input field not found: %w", err)
	}

	if err := locator.Clear(); err != nil {
		return fmt.Errorf("failed to clear input: %w", err)
	}
	return locator.Fill(value)
}

// TypeSlowly - focuses the element, clears it, and types character by
// character with a randomized delay so the live stream looks human
func (b *browserController) TypeSlowly(ctx context.Context, selector string, value string) error {
	locator := b.page.Locator(selector).First()
	if err := locator.Click(); err != nil {
		return fmt.Errorf("failed to focus input: %w", err)
	}
	if err := locator.Clear(); err != nil {
		return fmt.Errorf("failed to clear input: %w", err)
	}

	for _, r := range value {
		if err := ctx.Err(); err != nil {
			return err
		}
		delay := 50 + rand.Float64()*100
		if err := b.page.Keyboard().Type(string(r), playwright.KeyboardTypeOptions{
			Delay: playwright.Float(delay),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Check - selects a checkbox or radio; the underlying call never unchecks
func (b *browserController) Check(ctx context.Context, selector string) error {
	return b.page.Locator(selector).First().Check()
}

// SelectOption - chooses the option whose value matches exactly
func (b *browserController) SelectOption(ctx context.Context, selector string, value string) error {
	_, err := b.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return err
}

// SetFiles - points a file input at a local path
func (b *browserController) SetFiles(ctx context.Context, selector string, path string) error {
	return b.page.Locator(selector).First().SetInputFiles(path)
}

// SetValue - sets an element's value via script, used for hidden inputs
func (b *browserController) SetValue(ctx context.Context, selector string, value string) error {
	jsCode := `
	(args) => {
		const input = document.querySelector(args.selector);
		if (input) { input.value = args.value; }
	}
	`
	_, err := b.page.Evaluate(jsCode, map[string]interface{}{
		"selector": selector,
		"value":    value,
	})
	return err
}

// DispatchInput - sets a value via script and fires input/change events so
// reactive UIs pick up the change
func (b *browserController) DispatchInput(ctx context.Context, selector string, value string) error {
	jsCode := `
	(args) => {
		const input = document.querySelector(args.selector);
		if (input) {
			input.value = args.value;
			input.dispatchEvent(new Event('input', { bubbles: true }));
			input.dispatchEvent(new Event('change', { bubbles: true }));
		}
	}
	`
	_, err := b.page.Evaluate(jsCode, map[string]interface{}{
		"selector": selector,
		"value":    value,
	})
	return err
}

// ScrollIntoView - smoothly scrolls the element to the viewport center
func (b *browserController) ScrollIntoView(ctx context.Context, selector string) error {
	jsCode := `
	async (selector) => {
		const element = document.querySelector(selector);
		if (element) {
			element.scrollIntoView({ behavior: 'smooth', block: 'center', inline: 'center' });
			await new Promise(resolve => setTimeout(resolve, 300));
		}
	}
	`
	_, err := b.page.Evaluate(jsCode, selector)
	return err
}

// Screenshot - captures the current page as PNG bytes
func (b *browserController) Screenshot(ctx context.Context) ([]byte, error) {
	return b.page.Screenshot(playwright.PageScreenshotOptions{})
}

// Close - closes the context, browser and driver, swallowing already-closed errors
func (b *browserController) Close() error {
	var closeErr error

	if b.context != nil {
		if err := b.context.Close(); err != nil && !isClosedErr(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		b.context = nil
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil && !isClosedErr(err) && closeErr == nil {
			closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		b.browser = nil
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil && !isClosedErr(err) && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		b.pw = nil
	}

	return closeErr
}

// isClosedErr - reports whether the error just means the target already went away
func isClosedErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "closed") || strings.Contains(msg, "target closed")
}

// getString - extracts a string value from an evaluated JS object
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

var _ interfaces.Browser = (*browserController)(nil)

package automation

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"form_automation/domain/interfaces"
)

// Locator finds a form on the current page or navigates to one.
type Locator struct {
	browser     interfaces.Browser
	interpreter interfaces.FormInterpreter
	logger      *logrus.Logger
}

// NewLocator - creates a form locator
func NewLocator(browser interfaces.Browser, interpreter interfaces.FormInterpreter, logger *logrus.Logger) *Locator {
	return &Locator{
		browser:     browser,
		interpreter: interpreter,
		logger:      logger,
	}
}

// Locate - returns a stable selector for the first form on the page.
// Precedence is id over first class over the bare form tag. Multiple forms
// on one page are not disambiguated; only the first is considered.
func (l *Locator) Locate(ctx context.Context) (string, bool) {
	forms, err := l.browser.Forms(ctx)
	if err != nil {
		l.logger.Warnf("Error finding form selector: %v", err)
		return "", false
	}
	if len(forms) == 0 {
		return "", false
	}

	form := forms[0]
	if form.ID != "" {
		return "#" + form.ID, true
	}
	if form.Class != "" {
		first := strings.Fields(form.Class)[0]
		return "." + first, true
	}
	return "form", true
}

// NavigateToForm - collects the page's anchors, asks the model for the most
// likely form-bearing link, resolves it against the current URL and navigates.
// Returns the resolved URL, or ok=false when the model has no usable answer.
func (l *Locator) NavigateToForm(ctx context.Context) (string, bool) {
	links, err := l.browser.Anchors(ctx)
	if err != nil {
		l.logger.Warnf("Error collecting page links: %v", err)
		return "", false
	}
	if len(links) == 0 {
		return "", false
	}

	href, err := l.interpreter.RankFormLink(ctx, links)
	if err != nil {
		l.logger.Warnf("Link ranking failed: %v", err)
		return "", false
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	target := href
	if !strings.HasPrefix(href, "http") {
		current, err := l.browser.URL(ctx)
		if err != nil {
			l.logger.Warnf("Error reading current URL: %v", err)
			return "", false
		}
		base, err := url.Parse(current)
		if err != nil {
			l.logger.Warnf("Error parsing current URL %q: %v", current, err)
			return "", false
		}
		ref, err := url.Parse(href)
		if err != nil {
			l.logger.Warnf("Model returned unparsable href %q: %v", href, err)
			return "", false
		}
		target = base.ResolveReference(ref).String()
	}

	if err := l.browser.Navigate(ctx, target); err != nil {
		l.logger.Warnf("Failed to navigate to form page %s: %v", target, err)
		return "", false
	}
	return target, true
}

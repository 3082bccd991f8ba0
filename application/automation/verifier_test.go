package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"form_automation/domain/entities"
)

func newTestVerifier(browser *fakeBrowser, reporter *fakeReporter) *Verifier {
	rec := NewRecorder(browser, reporter, dropSink{}, quietLogger())
	v := NewVerifier(browser, rec)
	v.wait = func(ctx context.Context, d time.Duration) {}
	return v
}

func TestVerifyStopsAtFirstSuccessfulStrategy(t *testing.T) {
	browser := &fakeBrowser{}
	// No form container remains, so form_absence succeeds immediately.
	browser.ExistsFn = func(selector string) (bool, error) {
		return false, nil
	}
	v := newTestVerifier(browser, &fakeReporter{})

	ok := v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategyFormAbsence},
		{Strategy: entities.StrategyURLChange},
	}, "https://example.com/form")

	assert.True(t, ok)
	assert.Empty(t, browser.callsTo("URL"), "later strategies must not run after a hit")
}

func TestVerifyStrategiesRunInListOrder(t *testing.T) {
	browser := &fakeBrowser{}
	browser.ExistsFn = func(selector string) (bool, error) {
		return selector == "form", nil
	}
	browser.URLFn = func() (string, error) {
		return "https://example.com/form", nil
	}
	reporter := &fakeReporter{}
	v := newTestVerifier(browser, reporter)

	ok := v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategyURLChange, Description: "watch the URL"},
		{Strategy: entities.StrategyFormAbsence, Description: "form disappears"},
	}, "https://example.com/form")

	assert.False(t, ok, "a stable URL and a surviving form mean inconclusive")

	logs := reporter.logLines()
	require.GreaterOrEqual(t, len(logs), 2)
	assert.Equal(t, "Attempting confirmation strategy: url_change - watch the URL", logs[0])
	assert.Equal(t, "Attempting confirmation strategy: form_absence - form disappears", logs[1])
}

func TestVerifyUnknownStrategyLoggedAndSkipped(t *testing.T) {
	browser := &fakeBrowser{}
	browser.ExistsFn = func(selector string) (bool, error) {
		return false, nil
	}
	reporter := &fakeReporter{}
	v := newTestVerifier(browser, reporter)

	ok := v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategyKind("celebrate"), Description: "made up"},
		{Strategy: entities.StrategyFormAbsence},
	}, "")

	assert.True(t, ok, "the unknown tag must not poison the following strategy")
	assert.Contains(t, reporter.logLines(), "Unknown confirmation strategy: celebrate")
}

func TestVerifySuccessMessageNeedsCanonicalPhrase(t *testing.T) {
	browser := &fakeBrowser{}
	browser.ExistsFn = func(selector string) (bool, error) {
		return selector == "div.success", nil
	}
	browser.InnerTextFn = func(selector string) (string, error) {
		return "Thank You for reaching out!", nil
	}
	v := newTestVerifier(browser, &fakeReporter{})

	ok := v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategySuccessMessage},
	}, "")
	assert.True(t, ok, "matching is case-insensitive")

	browser.InnerTextFn = func(selector string) (string, error) {
		return "Error: please try again", nil
	}
	ok = v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategySuccessMessage},
	}, "")
	assert.False(t, ok, "a present selector without a positive phrase is not success")
}

func TestVerifyURLChangeDetectsDifference(t *testing.T) {
	browser := &fakeBrowser{}
	urls := []string{"https://example.com/form", "https://example.com/thanks"}
	browser.URLFn = func() (string, error) {
		u := urls[0]
		if len(urls) > 1 {
			urls = urls[1:]
		}
		return u, nil
	}
	v := newTestVerifier(browser, &fakeReporter{})

	ok := v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategyURLChange},
	}, "https://example.com/form")
	assert.True(t, ok)
}

func TestVerifyExhaustedStrategiesInconclusive(t *testing.T) {
	browser := &fakeBrowser{}
	browser.ExistsFn = func(selector string) (bool, error) {
		return selector == "form", nil
	}
	v := newTestVerifier(browser, &fakeReporter{})

	ok := v.Verify(context.Background(), []entities.ConfirmationStrategy{
		{Strategy: entities.StrategySuccessMessage},
		{Strategy: entities.StrategyFormAbsence},
	}, "")
	assert.False(t, ok)
}

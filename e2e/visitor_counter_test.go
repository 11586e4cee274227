//go:build e2e

// Package e2e drives a real browser against the consumer page.
//
// E2E_URL selects a deployed page. Without it the tests serve the page and an
// in-memory counter locally.
package e2e

import (
	"context"
	gohttp "net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwool/visitor-counter/pkg/endpoint"
	"github.com/rwool/visitor-counter/pkg/http"
	"github.com/rwool/visitor-counter/pkg/service"
	"github.com/rwool/visitor-counter/pkg/service/keyvalue"
	"github.com/rwool/visitor-counter/web"
)

const counterSelector = "#visitor-counter-value"

func pageURL(t *testing.T) string {
	if u := os.Getenv("E2E_URL"); u != "" {
		return u
	}
	s, err := service.NewCounterService(service.Config{
		Key:           service.DefaultKey,
		AllowedOrigin: "http://127.0.0.1",
	}, keyvalue.NewMemoryAdapter(), nil)
	require.NoError(t, err)

	m := gohttp.NewServeMux()
	m.Handle("/api/", http.NewCounterHTTPHandler(endpoint.MakeIncrementVisitorCounterEndpoint(s), s.AllowedOrigin(), nil))
	m.Handle("/", web.Handler())
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)
	return srv.URL
}

func browser(t *testing.T) context.Context {
	ctx, cancel := chromedp.NewContext(context.Background())
	t.Cleanup(cancel)
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// visit loads the page and returns the displayed counter once the script has
// filled it in.
func visit(ctx context.Context, url string) (string, error) {
	var (
		text  string
		ready bool
	)
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady(counterSelector, chromedp.ByQuery),
		chromedp.Poll(`document.querySelector("`+counterSelector+`").textContent !== ""`, &ready),
		chromedp.Text(counterSelector, &text, chromedp.ByQuery),
	)
	return text, err
}

func TestVisitorCounterHasValue(t *testing.T) {
	url := pageURL(t)
	ctx := browser(t)

	text, err := visit(ctx, url)
	require.NoError(t, err, "Page should load.")
	assert.Regexp(t, regexp.MustCompile(`^[0-9]+$`), text, "Counter should be a number.")
}

func TestVisitorCounterIncrease(t *testing.T) {
	url := pageURL(t)
	ctx := browser(t)

	first, err := visit(ctx, url)
	require.NoError(t, err, "First visit should load.")
	second, err := visit(ctx, url)
	require.NoError(t, err, "Second visit should load.")

	firstValue, err := strconv.Atoi(first)
	require.NoError(t, err)
	secondValue, err := strconv.Atoi(second)
	require.NoError(t, err)
	assert.Greater(t, secondValue, firstValue, "Counter should increase between visits.")
}

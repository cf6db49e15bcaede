package page

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeSource captures a live page through headless Chrome.
type ChromeSource struct {
	URL          string
	WaitSelector string
	Headless     bool
	Proxy        string
	Timeout      time.Duration
}

// NewChromeSource creates a source for the given page URL.
func NewChromeSource(pageURL, waitSelector string, headless bool, proxy string, timeout time.Duration) *ChromeSource {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &ChromeSource{
		URL:          pageURL,
		WaitSelector: waitSelector,
		Headless:     headless,
		Proxy:        proxy,
		Timeout:      timeout,
	}
}

func (c *ChromeSource) Name() string { return "chrome" }

// frameCaptureJS reads each embedded frame's content in DOM order. Accessing
// a cross-origin frame throws, so every access sits in a try/catch and a
// denied frame contributes nothing.
const frameCaptureJS = `(() => {
	const out = [];
	document.querySelectorAll('iframe,frame').forEach((f, i) => {
		try {
			const doc = f.contentDocument;
			if (!doc || !doc.documentElement) return;
			out.push({
				label: 'frame[' + i + '] ' + (f.getAttribute('src') || 'inline'),
				html: doc.documentElement.outerHTML,
			});
		} catch (e) {
			// cross-origin frame, skip
		}
	});
	return out;
})()`

// Capture navigates to the configured URL and snapshots the main document
// plus every readable frame.
func (c *ChromeSource) Capture(ctx context.Context) (*Page, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", c.Headless))
	if c.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(c.Proxy))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, c.Timeout)
	defer cancelRun()

	p := &Page{}
	actions := []chromedp.Action{chromedp.Navigate(c.URL)}
	if c.WaitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(c.WaitSelector, chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Evaluate(`location.hostname`, &p.Hostname),
		chromedp.OuterHTML("html", &p.Main, chromedp.ByQuery),
		chromedp.Evaluate(frameCaptureJS, &p.Frames),
	)
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, fmt.Errorf("capture %s: %w", c.URL, err)
	}
	return p, nil
}

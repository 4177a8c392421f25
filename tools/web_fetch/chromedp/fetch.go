package chromedp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/readable"
)

const userAgent = "newsdesk/1.0 (+https://github.com/mohammad-safakhou/newsdesk)"

// Fetch renders pages in headless Chrome before extraction, for sites that
// build their content client side.
type Fetch struct {
	Timeout  time.Duration
	MaxChars int
}

func (f Fetch) Exec(ctx context.Context, url string) (models.Result, error) {
	if strings.TrimSpace(url) == "" {
		return models.Result{}, errors.New("invalid url")
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	html, err := fetchHTML(ctx, url)
	if err != nil {
		return models.Result{}, err
	}
	res, err := readable.Extract(html, url, f.MaxChars)
	if err != nil {
		return models.Result{}, err
	}
	res.RenderMS = int(time.Since(t0) / time.Millisecond)
	return res, nil
}

func fetchHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

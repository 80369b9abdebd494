// Package page supplies snapshots of the trading page and reports when the
// trade grid on it changes.
package page

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"notion-trade-sync/internal/api"
	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
)

// FileSource reads a saved copy of the page, e.g. one written by a browser
// extension or a headless browser dump.
type FileSource struct {
	Path string
}

var _ interfaces.DocumentSource = (*FileSource)(nil)

func (s *FileSource) Fetch(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open page snapshot: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse page snapshot %s: %w", s.Path, err)
	}
	return doc, nil
}

// HTTPSource fetches the page over HTTP.
type HTTPSource struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

var _ interfaces.DocumentSource = (*HTTPSource)(nil)

func (s *HTTPSource) Fetch(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.AllowURLRevisit(),
	)
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
		for k, v := range s.Headers {
			r.Headers.Set(k, v)
		}
	})

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: HTTP %d: %w", s.URL, r.StatusCode, err)
	})

	if err := c.Visit(s.URL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	c.Wait()
	if fetchErr != nil {
		logger.ErrorWithErr(ctx, "Page fetch failed", fetchErr, "url", s.URL)
		return nil, fetchErr
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", s.URL, err)
	}
	logger.Debug(ctx, "Page fetched", "url", s.URL, "bytes", len(body))
	return doc, nil
}

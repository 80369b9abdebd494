package interfaces

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// DocumentSource yields the current state of the trading page.
type DocumentSource interface {
	Fetch(ctx context.Context) (*goquery.Document, error)
}

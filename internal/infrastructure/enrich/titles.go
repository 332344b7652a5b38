// Package enrich resolves submitted source URLs to page titles so source
// records carry something more useful than a bare event id. Enrichment is
// best-effort; failures leave the default metadata in place.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"IncidentIngest/internal/ports"
)

const maxTitleLen = 200

// TitleFetcher fetches a page and extracts its <title> / meta description.
type TitleFetcher struct {
	client *http.Client
}

var _ ports.Enricher = (*TitleFetcher)(nil)

// NewTitleFetcher wires an HTTP client; a nil client gets a default timeout.
func NewTitleFetcher(client *http.Client, timeout time.Duration) *TitleFetcher {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &TitleFetcher{client: client}
}

// Describe fetches the URL and returns its title and meta description.
func (f *TitleFetcher) Describe(ctx context.Context, pageURL string) (string, string, error) {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", "", err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	description = strings.TrimSpace(description)
	if len(description) > maxTitleLen {
		description = description[:maxTitleLen]
	}

	return title, description, nil
}

func (f *TitleFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "IncidentIngest/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

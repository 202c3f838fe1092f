package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

// maxSitemapDepth bounds sitemap index recursion
const maxSitemapDepth = 3

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Location string `xml:"loc"`
}

// SitemapLister reads sources from an XML sitemap or sitemap index
type SitemapLister struct {
	client *http.Client
}

// NewSitemapLister creates a sitemap lister. A nil client uses http.DefaultClient.
func NewSitemapLister(client *http.Client) *SitemapLister {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapLister{client: client}
}

// List fetches the sitemap at sitemapURL. Index entries are followed; a
// child sitemap that fails is skipped as long as another one yields entries.
func (l *SitemapLister) List(ctx context.Context, sitemapURL string) ([]Source, error) {
	out, err := l.list(ctx, sitemapURL, 0)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: sitemap contains no urls", ErrNoSources)
	}
	return out, nil
}

func (l *SitemapLister) list(ctx context.Context, sitemapURL string, depth int) ([]Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sitemap request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	br := bufio.NewReader(resp.Body)
	head, _ := br.Peek(512)
	if !bytes.Contains(head, []byte("sitemapindex")) {
		return parseURLSet(br)
	}

	if depth >= maxSitemapDepth {
		return nil, fmt.Errorf("sitemap index nested deeper than %d", maxSitemapDepth)
	}
	children, err := parseSitemapIndex(br)
	if err != nil {
		return nil, err
	}

	var out []Source
	var firstErr error
	for _, child := range children {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		srcs, err := l.list(ctx, child, depth+1)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", child, err)
			}
			continue
		}
		out = append(out, srcs...)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func parseSitemapIndex(r io.Reader) ([]string, error) {
	var index sitemapIndex
	if err := xml.NewDecoder(r).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}
	urls := make([]string, 0, len(index.Sitemaps))
	for _, ref := range index.Sitemaps {
		if ref.Location != "" {
			urls = append(urls, ref.Location)
		}
	}
	return urls, nil
}

func parseURLSet(r io.Reader) ([]Source, error) {
	var set urlSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}
	out := make([]Source, 0, len(set.URLs))
	for _, u := range set.URLs {
		if u.Location == "" {
			continue
		}
		out = append(out, Source{Location: PlainTextURL(u.Location)})
	}
	return out, nil
}

package sources

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/mmcdole/gofeed"
)

var ebookPagePattern = regexp.MustCompile(`^https?://(?:www\.)?gutenberg\.org/ebooks/(\d+)/?$`)

// PlainTextURL maps a Gutenberg ebook page link to its plain-text file.
// Other links are returned unchanged.
func PlainTextURL(link string) string {
	m := ebookPagePattern.FindStringSubmatch(link)
	if m == nil {
		return link
	}
	return fmt.Sprintf("https://www.gutenberg.org/cache/epub/%s/pg%s.txt", m[1], m[1])
}

// FeedLister reads sources from an RSS/Atom feed
type FeedLister struct {
	feedParser *gofeed.Parser
}

// NewFeedLister creates a feed lister. A nil client uses http.DefaultClient.
func NewFeedLister(client *http.Client) *FeedLister {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	return &FeedLister{feedParser: p}
}

// List fetches and parses the feed at feedURL
func (l *FeedLister) List(ctx context.Context, feedURL string) ([]Source, error) {
	feed, err := l.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("%w: feed contains no items", ErrNoSources)
	}

	out := make([]Source, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		out = append(out, Source{
			Location: PlainTextURL(item.Link),
			Title:    item.Title,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no links in feed items", ErrNoSources)
	}

	return out, nil
}

package content

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	errEmptyHTML         = errors.New("empty HTML content")
	errFailedToParseHTML = errors.New("failed to parse HTML for text link")

	// ErrNoTextLink is returned when a page offers no plain-text rendition
	ErrNoTextLink = errors.New("no plain text link found in HTML")
)

// FindPlainTextURL locates the plain-text rendition linked from an ebook
// landing page and resolves it against base.
//
// Candidates are ranked:
//  1. anchor text mentions "plain text" and href ends in .txt
//  2. href ends in .txt
//  3. anchor text mentions "plain text"
//
// The first anchor of the best rank wins.
func FindPlainTextURL(htmlContent, base string) (string, error) {
	htmlContent = strings.TrimSpace(htmlContent)
	if htmlContent == "" {
		return "", errEmptyHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", errors.Join(errFailedToParseHTML, err)
	}

	var high, medium, low []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}

		textLike := isTextHref(href)
		mentions := mentionsPlainText(sel.Text()) || mentionsPlainText(sel.AttrOr("type", ""))

		switch {
		case textLike && mentions:
			high = append(high, href)
		case textLike:
			medium = append(medium, href)
		case mentions:
			low = append(low, href)
		}
	})

	for _, group := range [][]string{high, medium, low} {
		if len(group) > 0 {
			return resolve(base, group[0]), nil
		}
	}
	return "", ErrNoTextLink
}

func isTextHref(href string) bool {
	p := href
	if parsed, err := url.Parse(href); err == nil {
		p = parsed.Path
	}
	return strings.EqualFold(path.Ext(p), ".txt")
}

func mentionsPlainText(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "plain text") || strings.Contains(lower, "text/plain")
}

func resolve(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return href
	}
	return b.ResolveReference(ref).String()
}

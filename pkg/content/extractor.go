package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ErrTitleNotFound is returned when no title source in the page is usable
var ErrTitleNotFound = errors.New("title not found in HTML")

// Extractor defines an interface for extracting title and text from HTML content
type Extractor interface {
	ExtractTitle(htmlContent string) (string, error)
	ExtractText(htmlContent string) (string, error)
}

// DefaultExtractor implements the Extractor interface using the standard extraction functions
type DefaultExtractor struct{}

// NewDefaultExtractor creates a new default extractor
func NewDefaultExtractor() *DefaultExtractor {
	return &DefaultExtractor{}
}

// ExtractTitle extracts the page title using the default extraction logic
func (e *DefaultExtractor) ExtractTitle(htmlContent string) (string, error) {
	return ExtractTitle(htmlContent)
}

// ExtractText extracts the page text using the default extraction logic
func (e *DefaultExtractor) ExtractText(htmlContent string) (string, error) {
	return ExtractText(htmlContent)
}

// ExtractTitle extracts the page title from HTML content with fallback mechanisms
func ExtractTitle(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		title := strings.TrimSpace(article.Title)
		if title != "" {
			return title, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", ErrTitleNotFound
}

// ExtractText renders the document body as plain text, one line per block
// element or <br>. Whitespace inside a block collapses to single spaces
// except within <pre>. Script, style and head content is skipped.
//
// Play text loses its line structure under readability, so the whole
// body is rendered rather than a main-content guess.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	w := &textWriter{}
	for _, n := range root.Nodes {
		w.walk(n, false)
	}
	return strings.TrimSpace(w.String()), nil
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true,
	"ul": true,
}

var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

type textWriter struct {
	b strings.Builder
	// pendingSpace defers collapsed whitespace until the next word
	pendingSpace bool
}

func (w *textWriter) String() string {
	return w.b.String()
}

func (w *textWriter) newline() {
	w.pendingSpace = false
	w.b.WriteByte('\n')
}

func (w *textWriter) text(s string, pre bool) {
	if pre {
		w.b.WriteString(s)
		return
	}
	if startsWithSpace(s) {
		w.pendingSpace = true
	}
	for _, word := range strings.Fields(s) {
		if w.pendingSpace && w.b.Len() > 0 && !endsWithNewline(&w.b) {
			w.b.WriteByte(' ')
		}
		w.b.WriteString(word)
		w.pendingSpace = true
	}
	w.pendingSpace = endsWithSpace(s)
}

func (w *textWriter) walk(n *html.Node, pre bool) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, pre)
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		if n.Data == "br" {
			w.newline()
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		w.newline()
	}
	childPre := pre || (n.Type == html.ElementNode && n.Data == "pre")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, childPre)
	}
	if block {
		w.newline()
	}
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s, " \t\r\n\f") != s
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s, " \t\r\n\f") != s
}

func endsWithNewline(b *strings.Builder) bool {
	s := b.String()
	return s != "" && s[len(s)-1] == '\n'
}

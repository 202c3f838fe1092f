// Package fetcher retrieves play documents from HTTP(S) URLs or the local filesystem.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"play-extract/pkg/content"
	"play-extract/pkg/httpclient"
)

// ErrUnavailable wraps every transport, protocol or local read failure
var ErrUnavailable = errors.New("source unavailable")

// DefaultMaxBytes caps a single document body
const DefaultMaxBytes = 64 << 20

// Document is the decoded text of one source.
type Document struct {
	Source      string `json:"source"`
	Text        string `json:"text"`
	ContentType string `json:"content_type"`
}

// Fetcher retrieves a document for a source locator.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*Document, error)
}

// Options configures an HTTPFetcher. Zero fields take defaults.
type Options struct {
	Client    *httpclient.HTTPClient
	Extractor content.Extractor
	Logger    *zap.Logger
	MaxBytes  int64

	// FollowTextLinks makes an HTML landing page fetch its linked plain-text
	// rendition instead of being converted itself.
	FollowTextLinks bool
}

// HTTPFetcher fetches documents over HTTP(S) and from local paths.
type HTTPFetcher struct {
	client          *httpclient.HTTPClient
	extractor       content.Extractor
	logger          *zap.Logger
	maxBytes        int64
	followTextLinks bool
}

// NewHTTPFetcher creates a fetcher
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	f := &HTTPFetcher{
		client:          opts.Client,
		extractor:       opts.Extractor,
		logger:          opts.Logger,
		maxBytes:        opts.MaxBytes,
		followTextLinks: opts.FollowTextLinks,
	}
	if f.client == nil {
		f.client = httpclient.NewClient(httpclient.DefaultClient)
	}
	if f.extractor == nil {
		f.extractor = content.NewDefaultExtractor()
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.maxBytes <= 0 {
		f.maxBytes = DefaultMaxBytes
	}
	return f
}

// Fetch retrieves source. Locators without a scheme or with file:// are read from disk.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) (*Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnavailable)
	}

	if path, ok := localPath(source); ok {
		return f.readFile(source, path)
	}
	return f.get(ctx, source, f.followTextLinks)
}

func (f *HTTPFetcher) get(ctx context.Context, source string, followLinks bool) (*Document, error) {
	resp, err := f.client.GetContext(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: unexpected status code: %d", ErrUnavailable, source, resp.StatusCode)
	}

	body, err := f.readCapped(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read response body: %v", ErrUnavailable, source, err)
	}

	contentType := resp.Header.Get("Content-Type")
	text, err := decode(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}

	if !isHTML(contentType, text) {
		return &Document{Source: source, Text: text, ContentType: contentType}, nil
	}

	if followLinks {
		base := source
		if resp.Request != nil && resp.Request.URL != nil {
			base = resp.Request.URL.String()
		}
		if link, err := content.FindPlainTextURL(text, base); err == nil && link != base {
			f.logger.Debug("following plain text link",
				zap.String("source", source),
				zap.String("link", link))
			doc, err := f.get(ctx, link, false)
			if err != nil {
				return nil, err
			}
			doc.Source = source
			return doc, nil
		}
	}

	return f.fromHTML(source, contentType, text)
}

func (f *HTTPFetcher) readFile(source, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrUnavailable, source)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}
	defer file.Close()

	body, err := f.readCapped(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}

	contentType := "text/plain; charset=utf-8"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		contentType = "text/html"
	}

	text, err := decode(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}
	if isHTML(contentType, text) {
		return f.fromHTML(source, contentType, text)
	}
	return &Document{Source: source, Text: text, ContentType: contentType}, nil
}

// readCapped reads r whole, failing when it holds more than maxBytes
func (f *HTTPFetcher) readCapped(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", f.maxBytes)
	}
	return body, nil
}

// fromHTML puts the page title on the first line, followed by the rendered body
func (f *HTTPFetcher) fromHTML(source, contentType, page string) (*Document, error) {
	body, err := f.extractor.ExtractText(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
	}

	text := body
	if title, err := f.extractor.ExtractTitle(page); err == nil && title != "" {
		text = title + "\n" + body
	} else if err != nil {
		f.logger.Debug("no title in HTML document", zap.String("source", source), zap.Error(err))
	}

	return &Document{Source: source, Text: text, ContentType: contentType}, nil
}

// localPath reports whether source names a file and returns its path
func localPath(source string) (string, bool) {
	u, err := url.Parse(source)
	if err != nil {
		return source, true
	}
	switch {
	case u.Scheme == "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return filepath.FromSlash(p), true
	case u.Scheme == "":
		return source, true
	case len(u.Scheme) == 1:
		// windows drive letter
		return source, true
	default:
		return "", false
	}
}

func isHTML(contentType, text string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			return true
		case "text/plain":
			return false
		}
	}
	head := strings.ToLower(strings.TrimSpace(firstN(text, 512)))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// decode converts body to UTF-8 using the declared charset. A byte-order mark
// overrides the declaration. HTML without a declared charset is sniffed.
func decode(body []byte, contentType string) (string, error) {
	enc, err := encodingFor(body, contentType)
	if err != nil {
		return "", err
	}

	decoder := unicode.BOMOverride(enc.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), decoder))
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(out), nil
}

func encodingFor(body []byte, contentType string) (encoding.Encoding, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		if name := strings.TrimSpace(params["charset"]); name != "" {
			enc, err := htmlindex.Get(name)
			if err != nil {
				return nil, fmt.Errorf("unsupported charset %q: %w", name, err)
			}
			return enc, nil
		}
		if mediaType == "text/html" {
			enc, _, _ := charset.DetermineEncoding(body, contentType)
			return enc, nil
		}
	}
	return unicode.UTF8, nil
}

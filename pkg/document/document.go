package document

import (
	"net/url"
	"path"
	"strings"
)

// DefaultTitlePrefix is the whitespace-stripped banner that opens Gutenberg plain-text files
// ("The Project Gutenberg eBook of Hamlet" -> "TheProjectGutenbergeBookofHamlet").
const DefaultTitlePrefix = "TheProjectGutenbergeBookof"

const untitled = "untitled"

// Lines splits text into whitespace-trimmed lines and drops the empty ones.
// A leading byte-order mark is removed.
func Lines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// DeriveName builds the output record name for a document.
//
// The first line is stripped of all whitespace. If prefix occurs in it, the
// remainder after its first occurrence is used; otherwise the whole stripped
// line is. When that leaves nothing, the base name of source (without
// extension) is used, and finally "untitled".
func DeriveName(lines []string, prefix, source string) string {
	name := ""
	if len(lines) > 0 {
		stripped := stripWhitespace(lines[0])
		name = stripped
		if prefix != "" {
			if idx := strings.Index(stripped, prefix); idx >= 0 {
				if rest := stripped[idx+len(prefix):]; rest != "" {
					name = rest
				}
			}
		}
	}

	if name == "" {
		name = sourceBaseName(source)
	}
	name = sanitize(name)
	if name == "" {
		return untitled
	}
	return name
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// sanitize keeps the name usable as a single path element
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

func sourceBaseName(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}

	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.ReplaceAll(p, "\\", "/")

	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

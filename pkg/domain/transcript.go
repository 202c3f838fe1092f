package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Transcript maps speaker names to their dialogue lines.
// Speakers keep the order in which they were first given a line.
type Transcript struct {
	order []string
	lines map[string][]string
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{
		lines: make(map[string][]string),
	}
}

// Append adds a dialogue line to the speaker, creating the speaker on first use
func (t *Transcript) Append(speaker, line string) {
	if t.lines == nil {
		t.lines = make(map[string][]string)
	}
	existing, ok := t.lines[speaker]
	if !ok {
		existing = []string{}
		t.order = append(t.order, speaker)
	}
	t.lines[speaker] = append(existing, line)
}

// Speakers returns speaker names in first-seen order
func (t *Transcript) Speakers() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Lines returns the dialogue lines attributed to speaker
func (t *Transcript) Lines(speaker string) []string {
	if t == nil {
		return nil
	}
	return t.lines[speaker]
}

// Has reports whether speaker has at least one line
func (t *Transcript) Has(speaker string) bool {
	if t == nil {
		return false
	}
	_, ok := t.lines[speaker]
	return ok
}

// Delete removes a speaker and its lines
func (t *Transcript) Delete(speaker string) {
	if t == nil {
		return
	}
	if _, ok := t.lines[speaker]; !ok {
		return
	}
	delete(t.lines, speaker)
	for i, name := range t.order {
		if name == speaker {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of speakers
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// LineCount returns the total number of dialogue lines across all speakers
func (t *Transcript) LineCount() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, lines := range t.lines {
		total += len(lines)
	}
	return total
}

// MarshalJSON encodes the transcript as a JSON object with keys in speaker order.
// HTML characters are written literally.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if t != nil {
		for i, speaker := range t.order {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := encodeLiteral(speaker)
			if err != nil {
				return nil, fmt.Errorf("encode speaker %q: %w", speaker, err)
			}
			buf.Write(key)
			buf.WriteByte(':')

			value, err := encodeLiteral(t.lines[speaker])
			if err != nil {
				return nil, fmt.Errorf("encode lines for %q: %w", speaker, err)
			}
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of speaker -> lines, keeping key order
func (t *Transcript) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("transcript: expected JSON object, got %v", tok)
	}

	t.order = nil
	t.lines = make(map[string][]string)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		speaker, ok := tok.(string)
		if !ok {
			return fmt.Errorf("transcript: expected speaker key, got %v", tok)
		}

		var lines []string
		if err := dec.Decode(&lines); err != nil {
			return fmt.Errorf("transcript: decode lines for %q: %w", speaker, err)
		}
		if lines == nil {
			lines = []string{}
		}
		if _, seen := t.lines[speaker]; !seen {
			t.order = append(t.order, speaker)
		}
		t.lines[speaker] = lines
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func encodeLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into literal characters. Other escape
// pairs are copied as they are, so an escaped backslash is never mistaken
// for the start of one.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if i+5 < len(b) && string(b[i+1:i+5]) == "u202" && (b[i+5] == '8' || b[i+5] == '9') {
			if b[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLines_TrimsAndDropsEmpty(t *testing.T) {
	text := "\ufeffThe Project Gutenberg eBook of Hamlet\r\n\r\n   \r\n  ACT I.  \r\nSCENE I. Elsinore.\n\n"

	got := Lines(text)
	want := []string{"The Project Gutenberg eBook of Hamlet", "ACT I.", "SCENE I. Elsinore."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestLines_Empty(t *testing.T) {
	if got := Lines("\n \n\t\n"); len(got) != 0 {
		t.Errorf("Lines() = %v, want empty", got)
	}
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		prefix string
		source string
		want   string
	}{
		{
			name:   "gutenberg banner",
			lines:  []string{"The Project Gutenberg eBook of Hamlet, Prince of Denmark"},
			prefix: DefaultTitlePrefix,
			want:   "Hamlet,PrinceofDenmark",
		},
		{
			name:   "banner after other text",
			lines:  []string{"Some header The Project Gutenberg eBook of Macbeth"},
			prefix: DefaultTitlePrefix,
			want:   "Macbeth",
		},
		{
			name:   "prefix absent falls back to stripped line",
			lines:  []string{"A Play In Three Acts"},
			prefix: DefaultTitlePrefix,
			want:   "APlayInThreeActs",
		},
		{
			name:   "prefix is the whole line",
			lines:  []string{"The Project Gutenberg eBook of"},
			prefix: DefaultTitlePrefix,
			want:   "TheProjectGutenbergeBookof",
		},
		{
			name:   "no lines uses source base name",
			lines:  nil,
			prefix: DefaultTitlePrefix,
			source: "https://www.gutenberg.org/cache/epub/1523/pg1523.txt",
			want:   "pg1523",
		},
		{
			name:   "no lines and no source",
			prefix: DefaultTitlePrefix,
			want:   "untitled",
		},
		{
			name:   "path separators replaced",
			lines:  []string{"The Project Gutenberg eBook of Either/Or"},
			prefix: DefaultTitlePrefix,
			want:   "Either_Or",
		},
		{
			name:  "empty prefix keeps whole line",
			lines: []string{"The Project Gutenberg eBook of Hamlet"},
			want:  "TheProjectGutenbergeBookofHamlet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveName(tt.lines, tt.prefix, tt.source); got != tt.want {
				t.Errorf("DeriveName() = %q, want %q", got, tt.want)
			}
		})
	}
}

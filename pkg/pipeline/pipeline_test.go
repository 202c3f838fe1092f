package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"play-extract/pkg/domain"
	"play-extract/pkg/fetcher"
	"play-extract/pkg/sources"
	"play-extract/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// mockFetcher serves documents from a map; missing sources are unavailable
type mockFetcher struct {
	docs  map[string]string
	calls []string
}

func (m *mockFetcher) Fetch(_ context.Context, source string) (*fetcher.Document, error) {
	m.calls = append(m.calls, source)
	text, ok := m.docs[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fetcher.ErrUnavailable, source)
	}
	return &fetcher.Document{Source: source, Text: text}, nil
}

// mockSaver records saved names and fails for names in failFor
type mockSaver struct {
	saved   []string
	failFor map[string]bool
}

func (m *mockSaver) SaveAll(_ context.Context, record *domain.PlayRecord) ([]string, error) {
	if m.failFor[record.Name] {
		return nil, errors.New("disk full")
	}
	m.saved = append(m.saved, record.Name)
	return []string{"mem://" + record.Name}, nil
}

func newTestPipeline(f Fetcher, s RecordSaver) *Pipeline {
	return NewPipeline(f, NewPlayProcessor(ProcessorConfig{DropStructural: true, RunID: "test-run", Now: fixedClock}), s, nil)
}

func TestPipeline_FetchFailureIsIsolated(t *testing.T) {
	f := &mockFetcher{docs: map[string]string{"https://example.org/hamlet.txt": hamletText}}
	s := &mockSaver{}
	p := newTestPipeline(f, s)

	summary := p.Run(context.Background(), sources.FromLocations([]string{
		"https://example.org/missing.txt",
		"https://example.org/hamlet.txt",
	}))

	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(summary.Results))
	}
	if summary.Results[0].Status != StatusSkipped || !errors.Is(summary.Results[0].Err, fetcher.ErrUnavailable) {
		t.Errorf("first result = %+v, want skipped with ErrUnavailable", summary.Results[0])
	}
	if summary.Results[1].Status != StatusSaved {
		t.Errorf("second result = %+v, want saved", summary.Results[1])
	}
	if len(s.saved) != 1 || s.saved[0] != "Hamlet" {
		t.Errorf("saved = %v, want [Hamlet]", s.saved)
	}
	if summary.AllFailed() {
		t.Error("AllFailed() = true with one saved source")
	}
	if summary.RunID != "test-run" {
		t.Errorf("RunID = %q", summary.RunID)
	}
}

func TestPipeline_SaveFailureContinues(t *testing.T) {
	f := &mockFetcher{docs: map[string]string{
		"hamlet":  hamletText,
		"seagull": seagullText,
	}}
	s := &mockSaver{failFor: map[string]bool{"Hamlet": true}}
	p := newTestPipeline(f, s)

	summary := p.Run(context.Background(), sources.FromLocations([]string{"hamlet", "seagull"}))

	if got := summary.Count(StatusFailed); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
	if got := summary.Count(StatusSaved); got != 1 {
		t.Errorf("saved = %d, want 1", got)
	}
	if len(s.saved) != 1 || s.saved[0] != "TheSeagull" {
		t.Errorf("saved = %v, want [TheSeagull]", s.saved)
	}
	failed := summary.Results[0]
	if failed.Name != "Hamlet" || failed.Speakers != 2 || failed.Lines != 3 {
		t.Errorf("failed result = %+v", failed)
	}
	if summary.Err() == nil {
		t.Error("Summary.Err() = nil, want joined error")
	}
}

func TestPipeline_AllFailed(t *testing.T) {
	p := newTestPipeline(&mockFetcher{}, &mockSaver{})
	summary := p.Run(context.Background(), sources.FromLocations([]string{"a", "b"}))
	if !summary.AllFailed() {
		t.Error("AllFailed() = false, want true")
	}

	empty := p.Run(context.Background(), nil)
	if empty.AllFailed() {
		t.Error("AllFailed() = true for an empty run")
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	f := &mockFetcher{docs: map[string]string{"hamlet": hamletText}}
	p := newTestPipeline(f, &mockSaver{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := p.Run(ctx, sources.FromLocations([]string{"hamlet"}))

	if len(summary.Results) != 0 || len(f.calls) != 0 {
		t.Errorf("expected no work after cancel, got %d results, %d calls", len(summary.Results), len(f.calls))
	}
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{docs: map[string]string{"hamlet": hamletText}}
	p := FilePipelineBuilder(f, ProcessorConfig{DropStructural: true, Now: fixedClock}, dir, "json", nil)

	srcs := sources.FromLocations([]string{"hamlet"})
	first := p.Run(context.Background(), srcs)
	if first.Count(StatusSaved) != 1 {
		t.Fatalf("first run: %+v", first.Results)
	}
	path := filepath.Join(dir, "Hamlet.json")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	second := p.Run(context.Background(), srcs)
	if second.Count(StatusSaved) != 1 {
		t.Fatalf("second run: %+v", second.Results)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("output changed between runs:\n%s\nvs\n%s", before, after)
	}

	want := "{\n    \"HAMLET\": [\n        \"To be\",\n        \"or not to be\"\n    ],\n    \"CLAUDIUS\": [\n        \"Indeed\"\n    ]\n}\n"
	if string(after) != want {
		t.Errorf("output =\n%s\nwant\n%s", after, want)
	}
	if got := first.Results[0].Locations; len(got) != 1 || got[0] != path {
		t.Errorf("Locations = %v, want [%s]", got, path)
	}
}

func TestPipeline_OverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/seagull.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(seagullText))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	f := FetcherBuilder(fetcher.Options{}, nil, nil)
	p := MultiSinkPipelineBuilder(f, ProcessorConfig{Now: fixedClock}, nil,
		store.Sink{Name: "file", Saver: store.NewFileStore(dir, "")})

	summary := p.Run(context.Background(), sources.FromLocations([]string{
		server.URL + "/gone.txt",
		server.URL + "/seagull.txt",
	}))

	if summary.Results[0].Status != StatusSkipped {
		t.Errorf("first result = %+v, want skipped", summary.Results[0])
	}
	if summary.Results[1].Status != StatusSaved || summary.Results[1].Strategy != domain.StrategyBlock {
		t.Errorf("second result = %+v, want saved block", summary.Results[1])
	}

	names, err := store.NewFileStore(dir, "").List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 1 || names[0] != "TheSeagull" {
		t.Errorf("files = %v, want [TheSeagull]", names)
	}
}

type mapCache map[string][]byte

func (c mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c[key]
	return v, ok, nil
}

func (c mapCache) Set(_ context.Context, key string, value []byte) error {
	c[key] = value
	return nil
}

func TestFetcherBuilder_WithCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(seagullText))
	}))
	defer server.Close()

	f := FetcherBuilder(fetcher.Options{}, mapCache{}, nil)
	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background(), server.URL+"/seagull.txt"); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

package playdownloadservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"play-extract/pkg/config"
	"play-extract/pkg/db"
	"play-extract/pkg/pipeline"
	"play-extract/pkg/sources"
)

const hamletText = `The Project Gutenberg eBook of Hamlet
DRAMATIS PERSONAE
ACT I.
SCENE I. Elsinore.
HAMLET: To be
or not to be
CLAUDIUS: Indeed
*** END OF THE PROJECT GUTENBERG EBOOK HAMLET ***
`

func fixedNow() time.Time { return time.Date(2024, 4, 23, 0, 0, 0, 0, time.UTC) }

func playServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hamlet.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(hamletText))
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0"><channel><title>New plays</title>
<item><title>Hamlet</title><link>https://www.gutenberg.org/ebooks/1524</link></item>
<item><title>Local</title><link>http://` + r.Host + `/hamlet.txt</link></item>
</channel></rss>`))
		case "/sitemap.xml":
			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>https://www.gutenberg.org/ebooks/1533</loc></url>
<url><loc>http://` + r.Host + `/hamlet.txt</loc></url>
</urlset>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "plays")
	return &cfg
}

func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), Config{App: cfg, RunID: "run-42", Now: fixedNow})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, svc.Close()) })
	return svc
}

func TestService_RunWritesFileAndSQLite(t *testing.T) {
	server := playServer(t)
	cfg := testConfig(t)
	cfg.SQLite.Enabled = true
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "plays.db")

	svc := newTestService(t, cfg)
	require.Equal(t, []string{"file", "sqlite"}, svc.SinkNames())

	srcs, err := svc.ResolveSources(context.Background(), []string{server.URL + "/missing.txt", server.URL + "/hamlet.txt"})
	require.NoError(t, err)

	summary := svc.Run(context.Background(), srcs)
	require.Len(t, summary.Results, 2)
	require.Equal(t, pipeline.StatusSkipped, summary.Results[0].Status)
	require.Equal(t, pipeline.StatusSaved, summary.Results[1].Status)
	require.Equal(t, []string{
		filepath.Join(cfg.Output.Dir, "Hamlet.json"),
		"sqlite:" + cfg.SQLite.Path + "#Hamlet",
	}, summary.Results[1].Locations)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "Hamlet.json"))
	require.NoError(t, err)
	require.Equal(t, "{\n    \"HAMLET\": [\n        \"To be\",\n        \"or not to be\"\n    ],\n    \"CLAUDIUS\": [\n        \"Indeed\"\n    ]\n}\n", string(data))

	sqlite := db.NewSQLiteClient(cfg.SQLite.Path)
	require.NoError(t, sqlite.Connect(context.Background()))
	defer sqlite.Close()
	var runID string
	require.NoError(t, sqlite.DB().QueryRow("SELECT run_id FROM play_transcripts WHERE name = ?", "Hamlet").Scan(&runID))
	require.Equal(t, "run-42", runID)
}

func TestService_SkipExisting(t *testing.T) {
	server := playServer(t)
	cfg := testConfig(t)
	cfg.SQLite.Enabled = true
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "plays.db")
	cfg.Sources.SkipExisting = true
	hamlet := server.URL + "/hamlet.txt"

	svc := newTestService(t, cfg)
	first := svc.Run(context.Background(), sources.FromLocations([]string{hamlet}))
	require.Equal(t, 1, first.Count(pipeline.StatusSaved))

	_, err := svc.ResolveSources(context.Background(), []string{hamlet})
	require.ErrorIs(t, err, sources.ErrNoSources)

	srcs, err := svc.ResolveSources(context.Background(), []string{hamlet, server.URL + "/other.txt"})
	require.NoError(t, err)
	require.Equal(t, []string{server.URL + "/other.txt"}, sources.Locations(srcs))
}

func TestService_ResolveSources(t *testing.T) {
	server := playServer(t)
	cfg := testConfig(t)
	cfg.Sources.URLs = []string{"configured.txt"}

	listFile := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(listFile, []byte("# plays\nb.txt\na.txt,\n\"c.txt\"\n"), 0o644))
	cfg.Sources.File = listFile
	cfg.Sources.Feed = server.URL + "/feed.xml"
	cfg.Sources.Sitemap = server.URL + "/sitemap.xml"

	svc := newTestService(t, cfg)

	srcs, err := svc.ResolveSources(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		"configured.txt",
		"b.txt", "a.txt", "c.txt",
		"https://www.gutenberg.org/cache/epub/1524/pg1524.txt",
		server.URL + "/hamlet.txt",
		"https://www.gutenberg.org/cache/epub/1533/pg1533.txt",
	}, sources.Locations(srcs))

	srcs, err = svc.ResolveSources(context.Background(), []string{"a.txt", "z.txt"})
	require.NoError(t, err)
	require.Equal(t, "a.txt", srcs[0].Location)
	require.Equal(t, "z.txt", srcs[1].Location)
	require.Equal(t, "b.txt", srcs[2].Location, "duplicates from the file are dropped")

	cfg.Sources.Max = 2
	srcs, err = svc.ResolveSources(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, srcs, 2)
}

func TestService_ResolveSources_Empty(t *testing.T) {
	svc := newTestService(t, testConfig(t))
	_, err := svc.ResolveSources(context.Background(), nil)
	require.True(t, errors.Is(err, sources.ErrNoSources))
}

func TestService_ParseLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hamlet.txt")
	require.NoError(t, os.WriteFile(path, []byte(hamletText), 0o644))

	svc := newTestService(t, testConfig(t))
	rec, err := svc.Parse(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Hamlet", rec.Name)
	require.Equal(t, []string{"HAMLET", "CLAUDIUS"}, rec.Transcript.Speakers())
	require.Equal(t, "run-42", rec.RunID)

	_, err = os.Stat(svc.FileStore().Dir())
	require.True(t, os.IsNotExist(err), "parse must not write output")
}

func TestService_CustomPatterns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Parse.InlinePattern = `^(\w+)>\s*(.*)`
	svc := newTestService(t, cfg)

	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("chat\nalice> hi\nbob> hey\n"), 0o644))
	rec, err := svc.Parse(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, rec.Transcript.Speakers())
}

func TestNewService_Errors(t *testing.T) {
	_, err := NewService(context.Background(), Config{})
	require.Error(t, err)

	cfg := testConfig(t)
	cfg.HTTP.ClientType = "curl"
	_, err = NewService(context.Background(), Config{App: cfg})
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.Parse.BlockPattern = `^[A-Z]+$`
	_, err = NewService(context.Background(), Config{App: cfg})
	require.Error(t, err, "block pattern without a capture group")
}

func TestReplicate_IntoSQLite(t *testing.T) {
	server := playServer(t)
	cfg := testConfig(t)

	// extract with the file sink only, then backfill sqlite
	svc, err := NewService(context.Background(), Config{App: cfg, Now: fixedNow})
	require.NoError(t, err)
	summary := svc.Run(context.Background(), sources.FromLocations([]string{server.URL + "/hamlet.txt"}))
	require.Equal(t, 1, summary.Count(pipeline.StatusSaved))
	require.NoError(t, svc.Close())

	_, err = Replicate(context.Background(), Config{App: cfg}, 2)
	require.ErrorIs(t, err, ErrNoReplicationTarget)

	cfg.SQLite.Enabled = true
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "plays.db")
	report, err := Replicate(context.Background(), Config{App: cfg, RunID: "backfill", Now: fixedNow}, 2)
	require.NoError(t, err)
	require.Equal(t, 1, report.Replicated)

	sqlite := db.NewSQLiteClient(cfg.SQLite.Path)
	require.NoError(t, sqlite.Connect(context.Background()))
	defer sqlite.Close()

	var transcript, runID string
	require.NoError(t, sqlite.DB().QueryRow("SELECT transcript, run_id FROM play_transcripts WHERE name = ?", "Hamlet").Scan(&transcript, &runID))
	require.Equal(t, `{"HAMLET":["To be","or not to be"],"CLAUDIUS":["Indeed"]}`, transcript)
	require.Equal(t, "backfill", runID)
}

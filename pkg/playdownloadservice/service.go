package playdownloadservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"play-extract/pkg/cache"
	"play-extract/pkg/config"
	"play-extract/pkg/domain"
	"play-extract/pkg/fetcher"
	"play-extract/pkg/httpclient"
	"play-extract/pkg/pipeline"
	"play-extract/pkg/sources"
	"play-extract/pkg/speaker"
	"play-extract/pkg/store"
	"play-extract/pkg/trim"
)

// Service resolves sources, extracts each play and writes it to every
// configured sink
type Service struct {
	cfg       *config.Config
	logger    *zap.Logger
	fetcher   pipeline.Fetcher
	processor *pipeline.PlayProcessor
	sinks     *sinkSet
	cache     *cache.RedisCache
	feed      sources.Lister
	sitemap   sources.Lister
	files     sources.Lister
}

// Config holds configuration for the service
type Config struct {
	App    *config.Config
	Logger *zap.Logger
	RunID  string
	Now    func() time.Time

	// FeedClient is used for RSS/Atom and sitemap listings; nil uses
	// http.DefaultClient.
	FeedClient *http.Client
}

// NewService connects the configured sinks and cache
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	procCfg, err := processorConfig(cfg.App, cfg.RunID, cfg.Now)
	if err != nil {
		return nil, err
	}

	clientType, err := httpclient.ParseClientType(cfg.App.HTTP.ClientType)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       cfg.App,
		logger:    logger,
		processor: pipeline.NewPlayProcessor(procCfg),
		feed:      sources.NewFeedLister(cfg.FeedClient),
		sitemap:   sources.NewSitemapLister(cfg.FeedClient),
		files:     sources.NewFileLister(),
	}

	var docCache fetcher.Cache
	if cfg.App.Cache.Enabled {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.App.Cache.Addr,
			Password: cfg.App.Cache.Password,
			DB:       cfg.App.Cache.DB,
			TTL:      cfg.App.Cache.TTL,
		})
		if err != nil {
			return nil, err
		}
		s.cache = rc
		docCache = rc
	}

	s.fetcher = pipeline.FetcherBuilder(fetcher.Options{
		Client:          httpclient.NewClientWithTimeout(clientType, cfg.App.HTTP.Timeout),
		MaxBytes:        cfg.App.HTTP.MaxBytes,
		FollowTextLinks: cfg.App.HTTP.FollowTextLinks,
	}, docCache, logger)

	sinks, err := openSinks(ctx, cfg.App, logger)
	if err != nil {
		s.closeCache()
		return nil, err
	}
	s.sinks = sinks
	return s, nil
}

func processorConfig(app *config.Config, runID string, now func() time.Time) (pipeline.ProcessorConfig, error) {
	pc := pipeline.ProcessorConfig{
		TitlePrefix: app.Parse.TitlePrefix,
		Markers: trim.Markers{
			Primary:   app.Parse.Markers.Primary,
			Secondary: app.Parse.Markers.Secondary,
			Tertiary:  app.Parse.Markers.Tertiary,
			End:       app.Parse.Markers.End,
		},
		DropStructural:     app.Parse.DropStructuralSpeakers,
		StructuralPrefixes: app.Parse.StructuralPrefixes,
		RunID:              runID,
		Now:                now,
	}

	if app.Parse.InlinePattern != "" || app.Parse.BlockPattern != "" {
		inline, block := app.Parse.InlinePattern, app.Parse.BlockPattern
		if inline == "" {
			inline = speaker.DefaultInlinePattern
		}
		if block == "" {
			block = speaker.DefaultBlockPattern
		}
		patterns, err := speaker.NewPatterns(inline, block)
		if err != nil {
			return pc, err
		}
		pc.Patterns = &patterns
	}
	return pc, nil
}

// FileStore returns the JSON output directory store
func (s *Service) FileStore() *store.FileStore {
	return s.sinks.file
}

// SinkNames lists the active sinks in write order
func (s *Service) SinkNames() []string {
	names := make([]string, 0, len(s.sinks.sinks))
	for _, sink := range s.sinks.sinks {
		names = append(names, sink.Name)
	}
	return names
}

// Run extracts every source and saves it to all sinks
func (s *Service) Run(ctx context.Context, srcs []sources.Source) *pipeline.Summary {
	p := pipeline.NewPipeline(s.fetcher, s.processor, store.NewMultiSaver(s.sinks.sinks...), s.logger)
	return p.Run(ctx, srcs)
}

// Parse extracts one source without saving it
func (s *Service) Parse(ctx context.Context, source string) (*domain.PlayRecord, error) {
	doc, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.processor.Process(doc)
}

// Close releases the sinks and the cache
func (s *Service) Close() error {
	err := s.sinks.close()
	s.closeCache()
	return err
}

func (s *Service) closeCache() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Warn("failed to close cache", zap.Error(err))
	}
	s.cache = nil
}

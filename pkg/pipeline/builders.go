package pipeline

import (
	"go.uber.org/zap"

	"play-extract/pkg/fetcher"
	"play-extract/pkg/store"
)

// FetcherBuilder builds the document fetcher.
// Pipeline: source → [HTTP/file fetcher] → [optional cache]
func FetcherBuilder(opts fetcher.Options, cache fetcher.Cache, logger *zap.Logger) Fetcher {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	var f Fetcher = fetcher.NewHTTPFetcher(opts)
	if cache != nil {
		f = fetcher.NewCachingFetcher(f, cache, logger)
	}
	return f
}

// FilePipelineBuilder builds a pipeline that writes only JSON files.
// Pipeline: source → [Fetcher] → [PlayProcessor] → [FileStore]
func FilePipelineBuilder(f Fetcher, cfg ProcessorConfig, outDir, ext string, logger *zap.Logger) *Pipeline {
	saver := store.NewMultiSaver(store.Sink{Name: "file", Saver: store.NewFileStore(outDir, ext)})
	return NewPipeline(f, NewPlayProcessor(cfg), saver, logger)
}

// MultiSinkPipelineBuilder builds a pipeline over an explicit set of sinks.
// Pipeline: source → [Fetcher] → [PlayProcessor] → [sink 1 … sink n]
func MultiSinkPipelineBuilder(f Fetcher, cfg ProcessorConfig, logger *zap.Logger, sinks ...store.Sink) *Pipeline {
	return NewPipeline(f, NewPlayProcessor(cfg), store.NewMultiSaver(sinks...), logger)
}

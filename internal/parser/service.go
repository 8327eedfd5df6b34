package parser

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yogeshhk/MiningResume/internal/cache"
	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
	"github.com/yogeshhk/MiningResume/internal/provider"
	"github.com/yogeshhk/MiningResume/internal/retry"
	"github.com/yogeshhk/MiningResume/internal/textextract"
)

// Service orchestrates resume parsing: read, normalize, then resolve every
// configured attribute through cache, retry and the extraction backend.
type Service struct {
	reader     *document.Reader
	normalizer *textextract.Normalizer
	provider   provider.Provider
	cache      cache.Cache // nil when caching is disabled
	policy     retry.Policy
	cfg        *common.Config
	configFP   string
	logger     *slog.Logger
	metrics    *Metrics
}

// NewService wires the pipeline. configFingerprint identifies the active
// backend configuration and feeds every cache key.
func NewService(
	reader *document.Reader,
	normalizer *textextract.Normalizer,
	prov provider.Provider,
	cch cache.Cache,
	cfg *common.Config,
	configFingerprint string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		reader:     reader,
		normalizer: normalizer,
		provider:   prov,
		cache:      cch,
		cfg:        cfg,
		configFP:   configFingerprint,
		logger:     logger,
		metrics:    &Metrics{},
	}
	s.policy = retry.NewPolicy(cfg.Retry, logger)
	s.policy.OnRetry = func() { s.metrics.retries.Add(1) }
	return s
}

// Metrics exposes the service-wide counters.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// ParseFile runs the full pipeline for one document. A result is always
// returned: document-level failures (read, format, text extraction) set
// Success=false with an empty record and no provider call; attribute-level
// failures are recorded per attribute without flipping Success.
func (s *Service) ParseFile(ctx context.Context, path string) *ParserResult {
	start := time.Now()

	doc, err := s.reader.Read(path)
	if err != nil {
		return s.documentFailure(path, path, err, start)
	}

	norm, err := s.normalizer.Extract(ctx, doc)
	if err != nil {
		return s.documentFailure(doc.Filename, path, err, start)
	}

	var providerCalls, cacheHits atomic.Int64
	attrs := s.cfg.Parser.Attributes
	outcomes := make([]AttributeOutcome, len(attrs))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Parser.AttributeConcurrency)
	for i, name := range attrs {
		g.Go(func() error {
			outcomes[i] = s.extractOne(ctx, norm, name, &providerCalls, &cacheHits)
			return nil
		})
	}
	_ = g.Wait()

	result := &ParserResult{
		DocumentName:   doc.Filename,
		SourcePath:     path,
		Success:        true,
		Attributes:     outcomes,
		ProcessingSecs: time.Since(start).Seconds(),
		ProviderCalls:  providerCalls.Load(),
		CacheHits:      cacheHits.Load(),
	}

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	s.logger.Info("parser.parse.ok",
		"file", doc.Filename,
		"attributes", len(outcomes),
		"failed_attributes", failed,
		"provider_calls", result.ProviderCalls,
		"cache_hits", result.CacheHits,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

// extractOne resolves one attribute to its terminal outcome:
// cache hit, provider success (then cached), or recorded failure.
func (s *Service) extractOne(ctx context.Context, norm *textextract.NormalizedText, name string, providerCalls, cacheHits *atomic.Int64) AttributeOutcome {
	key := cache.Fingerprint(norm.Text, name, s.configFP)

	if s.cache != nil {
		if resp, ok := s.cache.Get(key); ok {
			cacheHits.Add(1)
			s.metrics.cacheHits.Add(1)
			s.logger.Debug("parser.attribute.cache_hit", "attribute", name)
			return outcomeFromResponse(name, resp, true)
		}
	}

	resp, err := s.policy.Do(ctx, "extract "+name, func(ctx context.Context) (*provider.Response, error) {
		callCtx := ctx
		if s.cfg.Parser.ProviderTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.cfg.Parser.ProviderTimeout)
			defer cancel()
		}
		providerCalls.Add(1)
		s.metrics.providerCalls.Add(1)
		return s.provider.Generate(callCtx, provider.Request{
			Text:      norm,
			Attribute: provider.AttributeSpec{Name: name},
		})
	})
	if err != nil {
		s.logger.Warn("parser.attribute.failed",
			"attribute", name,
			"file", norm.Doc.Filename,
			"error", err,
		)
		msg := err.Error()
		return AttributeOutcome{Name: name, Error: &msg}
	}

	if s.cache != nil {
		s.cache.Set(key, resp, s.cfg.Cache.TTL)
	}
	return outcomeFromResponse(name, resp, false)
}

func outcomeFromResponse(name string, resp *provider.Response, cached bool) AttributeOutcome {
	out := AttributeOutcome{
		Name:      name,
		Cached:    cached,
		LatencyMS: resp.Latency.Milliseconds(),
	}
	switch {
	case len(resp.Values) > 0:
		out.Values = resp.Values
		joined := strings.Join(resp.Values, ", ")
		out.Value = &joined
	case resp.Found:
		v := resp.Value
		out.Value = &v
	}
	return out
}

func (s *Service) documentFailure(name, path string, err error, start time.Time) *ParserResult {
	s.logger.Error("parser.parse.failed",
		"file", name,
		"error", err,
		"document_failure", common.IsDocumentFailure(err),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	msg := err.Error()
	return &ParserResult{
		DocumentName:   name,
		SourcePath:     path,
		Success:        false,
		Attributes:     []AttributeOutcome{},
		ErrorMessage:   &msg,
		ProcessingSecs: time.Since(start).Seconds(),
	}
}

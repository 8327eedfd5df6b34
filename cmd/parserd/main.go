package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yogeshhk/MiningResume/internal/async"
	"github.com/yogeshhk/MiningResume/internal/cache"
	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
	"github.com/yogeshhk/MiningResume/internal/ingest"
	"github.com/yogeshhk/MiningResume/internal/parser"
	"github.com/yogeshhk/MiningResume/internal/provider"
	"github.com/yogeshhk/MiningResume/internal/provider/llm"
	"github.com/yogeshhk/MiningResume/internal/provider/rules"
	"github.com/yogeshhk/MiningResume/internal/repository"
	"github.com/yogeshhk/MiningResume/internal/textextract"
)

// parserd watches one or more directories for incoming resumes, parses each
// new file on a worker pool and persists the results.
func main() {
	var (
		watch    = flag.String("watch", "", "comma-separated directories to watch (required)")
		scan     = flag.Bool("scan", true, "parse files already present at startup")
		debounce = flag.Duration("debounce", 500*time.Millisecond, "coalesce window for file events")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *watch == "" {
		logger.Error("-watch is required")
		os.Exit(1)
	}
	roots := splitRoots(*watch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	prov, fingerprint, err := buildProvider(cfg, logger)
	if err != nil {
		logger.Error("failed to build extraction backend", "backend", cfg.Provider.Backend, "error", err)
		os.Exit(1)
	}
	if !prov.HealthCheck(ctx) {
		logger.Warn("backend health check failed at startup", "backend", cfg.Provider.Backend)
	}

	var cch cache.Cache
	if cfg.Cache.Enabled {
		cch = cache.New(cfg.Cache)
	}

	svc := parser.NewService(
		document.NewReader(cfg.Files.MaxFileSizeMB, logger),
		textextract.NewNormalizer(logger),
		prov,
		cch,
		cfg,
		fingerprint,
		logger,
	)

	var results repository.ResultRepository
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, cfg.Database.DSN, logger)
		if err != nil {
			logger.Error("failed to open result store", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := repository.NewSQLResultRepository(db, cfg.Database.DSN, logger)
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to migrate result store", "error", err)
			os.Exit(1)
		}
		results = repo
	} else {
		logger.Warn("DB_URL not set, results will not be persisted")
	}

	queue := async.NewParseQueue(svc, results, logger,
		async.WithWorkers(cfg.Parser.BatchWorkers),
		async.WithProcessTimeout(cfg.Parser.ProviderTimeout*2),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       roots,
		InitialScan: *scan,
		Debounce:    *debounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("watching for resumes", "roots", roots, "backend", cfg.Provider.Backend)

	go func() {
		for err := range watchErrs {
			logger.Error("watch error", "error", err)
		}
	}()

	for path := range events {
		if err := queue.Enqueue(ctx, async.NewJob(path)); err != nil {
			logger.Error("enqueue failed", "path", path, "error", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

func buildProvider(cfg *common.Config, logger *slog.Logger) (provider.Provider, string, error) {
	switch cfg.Provider.Backend {
	case "llm":
		templates, err := llm.LoadTemplates(cfg.LLM.PromptsFile)
		if err != nil {
			return nil, "", err
		}
		client := llm.NewClient(cfg.LLM, templates, logger)
		return client, llm.Fingerprint(cfg.LLM, templates), nil
	default:
		rs, err := rules.LoadRuleSet(cfg.Rules.ConfigPath)
		if err != nil {
			return nil, "", err
		}
		prov, err := rules.NewProvider(rs, logger)
		if err != nil {
			return nil, "", err
		}
		return prov, rs.Fingerprint(), nil
	}
}

func splitRoots(s string) []string {
	var roots []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roots = append(roots, part)
		}
	}
	return roots
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/yogeshhk/MiningResume/internal/cache"
	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
	"github.com/yogeshhk/MiningResume/internal/export"
	"github.com/yogeshhk/MiningResume/internal/ingest"
	"github.com/yogeshhk/MiningResume/internal/parser"
	"github.com/yogeshhk/MiningResume/internal/provider"
	"github.com/yogeshhk/MiningResume/internal/provider/llm"
	"github.com/yogeshhk/MiningResume/internal/provider/rules"
	"github.com/yogeshhk/MiningResume/internal/repository"
	"github.com/yogeshhk/MiningResume/internal/textextract"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file     = flag.String("file", "", "single resume file to parse")
		dir      = flag.String("dir", "", "directory of resumes to parse")
		backend  = flag.String("provider", "", "extraction backend: rules or llm (overrides PROVIDER_BACKEND)")
		rulesCfg = flag.String("rules", "", "path to regex rule config XML (overrides RULES_CONFIG_PATH)")
		prompts  = flag.String("prompts", "", "path to prompt templates YAML (overrides LLM_PROMPTS_FILE)")
		out      = flag.String("out", "", "output XLSX file path (optional)")
		save     = flag.Bool("save", false, "persist results to the configured database")
		list     = flag.Int("list", 0, "print the N most recent persisted results and exit")
		failFast = flag.Bool("fail-fast", false, "abort the batch on the first document failure")
		check    = flag.Bool("check", false, "run the backend health check and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if *backend != "" {
		cfg.Provider.Backend = *backend
	}
	if *rulesCfg != "" {
		cfg.Rules.ConfigPath = *rulesCfg
	}
	if *prompts != "" {
		cfg.LLM.PromptsFile = *prompts
	}
	if *failFast {
		cfg.Parser.FailFast = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *list > 0 {
		if err := listResults(ctx, cfg, *list, logger); err != nil {
			logger.Error("failed to list results", "error", err)
			os.Exit(1)
		}
		return
	}

	prov, fingerprint, err := buildProvider(cfg, logger)
	if err != nil {
		logger.Error("failed to build extraction backend", "backend", cfg.Provider.Backend, "error", err)
		os.Exit(1)
	}

	if *check {
		if prov.HealthCheck(ctx) {
			fmt.Printf("%s backend: ok\n", cfg.Provider.Backend)
			return
		}
		printError("%s backend: unavailable\n", cfg.Provider.Backend)
		os.Exit(1)
	}

	paths, err := collectPaths(*file, *dir)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
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

	results := svc.ParseBatch(ctx, paths)

	if *save {
		if err := persist(ctx, cfg, results, logger); err != nil {
			logger.Error("failed to persist results", "error", err)
			os.Exit(1)
		}
	}

	if *out != "" {
		exporter := export.NewService(cfg.Parser.Attributes, logger)
		xlsxBytes, err := exporter.ResultsXLSX(results)
		if err != nil {
			logger.Error("failed to export results", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "output", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("wrote XLSX export", "output", *out, "rows", len(results))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.Error("failed to encode results", "error", err)
		os.Exit(1)
	}

	failures := 0
	for _, r := range results {
		if !r.Success {
			failures++
		}
	}
	logger.Info("batch complete",
		"documents", len(results),
		"failures", failures,
		"metrics_provider_calls", svc.Metrics().ProviderCalls(),
		"metrics_cache_hits", svc.Metrics().CacheHits(),
	)
	if failures == len(results) && len(results) > 0 {
		os.Exit(1)
	}
}

// buildProvider constructs the configured backend and its config fingerprint.
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

func collectPaths(file, dir string) ([]string, error) {
	switch {
	case file != "" && dir != "":
		return nil, fmt.Errorf("use either -file or -dir, not both")
	case file != "":
		return []string{file}, nil
	case dir != "":
		paths, err := ingest.DiscoverFiles(dir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no supported resume files under %s", dir)
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("-file or -dir is required")
	}
}

func openRepository(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.SQLResultRepository, func(), error) {
	dsn := cfg.Database.DSN
	if dsn == "" {
		dsn = "resume_results.db"
	}
	db, err := repository.Open(ctx, dsn, logger)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewSQLResultRepository(db, dsn, logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, func() { _ = db.Close() }, nil
}

func persist(ctx context.Context, cfg *common.Config, results []*parser.ParserResult, logger *slog.Logger) error {
	repo, closeDB, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	for _, r := range results {
		if _, err := repo.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func listResults(ctx context.Context, cfg *common.Config, limit int, logger *slog.Logger) error {
	repo, closeDB, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	stored, err := repo.List(ctx, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stored)
}

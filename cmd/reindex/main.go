package main

import (
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	searchsync "improvdb/contexts/catalog/search-sync"
	searchmemory "improvdb/contexts/catalog/search-sync/adapters/memory"
	searchpostgres "improvdb/contexts/catalog/search-sync/adapters/postgres"
	searchentities "improvdb/contexts/catalog/search-sync/domain/entities"
	"improvdb/internal/platform/config"
	"improvdb/internal/platform/db"
)

// Operational CLI that rebuilds both search indices from the catalog tables.
// Run after bulk imports or whenever the incremental sync has drifted.

type reindexOptions struct {
	dsn           string
	showTagID     string
	exerciseTagID string
	warmupTagID   string
}

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	opts := &reindexOptions{}

	cmd := &cobra.Command{
		Use:           "reindex",
		Short:         "Rebuild the tags and games search indices from the catalog.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReindex(cmd, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.dsn, "dsn", "", "postgres dsn (defaults to IMPROVDB_POSTGRES_DSN)")
	fs.StringVar(&opts.showTagID, "show-tag-id", "", "tag id mapped to the 'show' key tag (defaults to IMPROVDB_SHOW_TAG_ID)")
	fs.StringVar(&opts.exerciseTagID, "exercise-tag-id", "", "tag id mapped to the 'exercise' key tag (defaults to IMPROVDB_EXERCISE_TAG_ID)")
	fs.StringVar(&opts.warmupTagID, "warmup-tag-id", "", "tag id mapped to the 'warmup' key tag (defaults to IMPROVDB_WARMUP_TAG_ID)")

	return cmd
}

func runReindex(cmd *cobra.Command, opts *reindexOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd.Flags(), opts, &cfg)

	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return fmt.Errorf("postgres dsn is required (--dsn or IMPROVDB_POSTGRES_DSN)")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer func() {
		_ = pg.Close()
	}()

	logger := slog.Default().With("service", cfg.ServiceName, "process", "reindex")
	reader := searchpostgres.NewReader(pg.DB, logger)
	module := searchsync.NewModule(searchsync.Dependencies{
		Index:   searchmemory.NewIndex(),
		Catalog: reader,
		Dedup:   reader,
		Clock:   searchpostgres.SystemClock{},
		KeyTags: searchentities.KeyTagConfig{
			ShowTagID:     cfg.ShowTagID,
			ExerciseTagID: cfg.ExerciseTagID,
			WarmupTagID:   cfg.WarmupTagID,
		},
		Logger: logger,
	})

	result, err := module.Rebuild.RebuildIndexes(cmd.Context())
	if err != nil {
		return err
	}

	log.Printf("reindex complete: %d tag records, %d game records", result.TagRecords, result.GameRecords)
	return nil
}

func applyFlagOverrides(fs *pflag.FlagSet, opts *reindexOptions, cfg *config.Config) {
	if fs.Changed("dsn") {
		cfg.PostgresDSN = opts.dsn
	}
	if fs.Changed("show-tag-id") {
		cfg.ShowTagID = opts.showTagID
	}
	if fs.Changed("exercise-tag-id") {
		cfg.ExerciseTagID = opts.exerciseTagID
	}
	if fs.Changed("warmup-tag-id") {
		cfg.WarmupTagID = opts.warmupTagID
	}
}

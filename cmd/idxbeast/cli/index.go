package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idxbeast/internal/adapters/driving/tui"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driving"
	"github.com/custodia-labs/idxbeast/internal/core/services"
	"github.com/custodia-labs/idxbeast/internal/writer"
)

var indexUseTUI bool

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [root]",
		Short: "Index a directory tree or web root",
		Long: `Index walks the given root (a filesystem path or an http(s) URL),
tokenizes every matching document, and commits the resulting posting
lists and document rows to the store.

Re-running index against the same root is safe: unchanged documents are
left alone, documents whose mtime has advanced are reindexed and their
old rows superseded, and documents no longer present are left in the
store (idxbeast never deletes on the absence of a locator).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Root = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			st := newStatus()

			store, closeStore, err := openStore(cmd.Context(), cfg.StorePath)
			if err != nil {
				return err
			}
			defer closeStore()

			dispatcher := services.NewDispatcher(services.DispatcherConfig{
				Store:             store,
				Sources:           []driven.DocumentSource{buildSource(cfg)},
				Logger:            logger,
				Status:            st,
				WorkerCount:       cfg.WorkerCount,
				HashCacheCapacity: cfg.HashCacheCapacity,
				Writer:            writer.Config{BatchCap: cfg.BatchCap, IdleTimeout: writer.DefaultConfig().IdleTimeout},
			})

			var stats driving.IndexStats
			if indexUseTUI {
				stats, err = tui.RunIndexProgress(cmd.Context(), st, dispatcher)
			} else {
				stats, err = dispatcher.Run(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("indexing failed: %w", err)
			}

			fmt.Printf("indexed: %d new, %d updated, %d unchanged, %d errors\n",
				stats.New, stats.Outdated, stats.Uptodate, stats.Errors)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&cfg.Extensions, "ext", nil, "File extensions to index (default: all)")
	cmd.Flags().IntVar(&cfg.RecurseLinks, "recurse-links", cfg.RecurseLinks, "Link recursion depth for web roots, [0, 8]")
	cmd.Flags().IntVar(&cfg.WorkerCount, "workers", cfg.WorkerCount, "Number of indexer worker goroutines, [1, 16]")
	cmd.Flags().IntVar(&cfg.BatchCap, "batch-cap", cfg.BatchCap, "Maximum documents merged per writer transaction")
	cmd.Flags().IntVar(&cfg.HashCacheCapacity, "hash-cache-capacity", cfg.HashCacheCapacity, "Per-worker word-hash LRU cache capacity")
	cmd.Flags().BoolVar(&indexUseTUI, "tui", false, "Show a live progress display while indexing")

	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/services"
)

func newQueryCmd() *cobra.Command {
	var (
		limit    int
		offset   int
		orderBy  string
		orderDir string
	)

	cmd := &cobra.Command{
		Use:   "query [words...]",
		Short: "Run a conjunctive search against the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), cfg.StorePath)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := services.NewQuery(services.QueryConfig{
				Store:             store,
				HashCacheCapacity: cfg.HashCacheCapacity,
			})

			opts := domain.DefaultQueryOptions(strings.Join(args, " "))
			opts.Limit = limit
			opts.Offset = offset
			opts.OrderBy = domain.OrderBy(orderBy)
			opts.OrderDir = domain.OrderDir(orderDir)

			result, err := svc.Search(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			fmt.Printf("%d matches\n", result.TotalCount)
			for _, row := range result.Rows {
				fmt.Printf("%8.2f  %s  (freq=%d avg_pos=%d)\n", row.Relevance, row.Locator, row.Frequency, row.AveragePosition)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset for pagination")
	cmd.Flags().StringVar(&orderBy, "order-by", string(domain.OrderByRelevance), "relevance, frequency, or average_position")
	cmd.Flags().StringVar(&orderDir, "order-dir", string(domain.OrderDescending), "ascending or descending")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	idxhttp "github.com/custodia-labs/idxbeast/internal/adapters/driving/http"
	"github.com/custodia-labs/idxbeast/internal/core/services"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the status and query HTTP surface over an existing store",
		Long: `Serve starts a small HTTP server exposing /health, /version,
/status, and /query over an already-indexed store. It does not index
anything itself; run "idxbeast index" first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), cfg.StorePath)
			if err != nil {
				return err
			}
			defer closeStore()

			st := newStatus()
			queryService := services.NewQuery(services.QueryConfig{
				Store:             store,
				HashCacheCapacity: cfg.HashCacheCapacity,
			})

			srv := idxhttp.NewServer(idxhttp.Config{Addr: addr, Version: Version}, st, queryService)
			fmt.Printf("status/query server listening on %s\n", addr)
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (host:port)")
	return cmd
}

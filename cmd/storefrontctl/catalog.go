package main

import (
	"errors"
	"fmt"

	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the Postgres catalog",
	}

	var file string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Upsert products from a YAML seed file (or the built-in set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Store.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			products := catalog.DefaultProducts()
			if file != "" {
				if products, err = catalog.LoadSeedFile(file); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			db, err := store.ConnectPostgres(ctx, cfg.Store.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := store.Migrate(ctx, db); err != nil {
				return err
			}
			if err := catalog.NewPostgresProvider(db).Upsert(ctx, products); err != nil {
				return err
			}

			logger.Info("catalog seeded", zap.Int("products", len(products)))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(products))
			return nil
		},
	}
	seed.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a YAML seed file without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := catalog.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			facets := catalog.Facets(products)
			fmt.Fprintf(cmd.OutOrStdout(), "%d products in %d categories, %d on sale\n",
				len(products), len(facets.Categories), facets.OnSale)
			return nil
		},
	}

	cmd.AddCommand(seed, validate)
	return cmd
}

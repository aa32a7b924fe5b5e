package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-catalog-manager/internal/filter"
	"github.com/fairyhunter13/product-catalog-manager/internal/persist"
	"github.com/fairyhunter13/product-catalog-manager/internal/seed"
	"github.com/fairyhunter13/product-catalog-manager/internal/store"
	"github.com/fairyhunter13/product-catalog-manager/internal/validate"
)

func seedCmd() *cobra.Command {
	var (
		count int
		rnd   uint64
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a generated sample catalog to the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			backend, err := persist.Open(cfg.Storage, true)
			if err != nil {
				return err
			}
			defer backend.Close()
			if backend.Exists() && !force {
				return fmt.Errorf("%s already holds a catalog; pass --force to overwrite", backend.Path())
			}
			if !cmd.Flags().Changed("seed") {
				rnd = uint64(time.Now().UnixNano())
			}
			products := seed.Generate(count, rnd, time.Now())
			if err := backend.Persist(cmd.Context(), products); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d products to %s\n", len(products), backend.Path())
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", seed.DefaultCount, "number of products to generate")
	cmd.Flags().Uint64Var(&rnd, "seed", 0, "random seed (default: time based)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing storage")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the catalog and verify every stored product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			backend, err := persist.Open(cfg.Storage, false)
			if err != nil {
				return err
			}
			defer backend.Close()
			products, err := backend.Load(cmd.Context())
			if err != nil {
				return err
			}
			v := validate.New(validate.Options{RequireStartDate: true})
			errs := v.CheckCollection(products)
			out := cmd.OutOrStdout()
			for _, e := range errs {
				fmt.Fprintln(out, e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d problems in %d products", len(errs), len(products))
			}
			fmt.Fprintf(out, "%d products ok\n", len(products))
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog as JSON, optionally filtered",
		Example: `  product-catalog list
  product-catalog list --filter methodology=Agile
  product-catalog list --filter developerName=Adam`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f filter.Filter
			if expr != "" {
				name, value, ok := strings.Cut(expr, "=")
				if !ok {
					return fmt.Errorf("--filter must be field=value, one of %s", strings.Join(filter.Params(), ", "))
				}
				var err error
				if f, err = filter.Parse(name, value); err != nil {
					return err
				}
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			backend, err := persist.Open(cfg.Storage, false)
			if err != nil {
				return err
			}
			defer backend.Close()
			st, err := store.Open(cmd.Context(), backend, store.Options{})
			if err != nil {
				return err
			}
			products, err := filter.Apply(st.All(), f)
			var nm *filter.NoMatchError
			if errors.As(err, &nm) {
				return nm
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		},
	}
	cmd.Flags().StringVar(&expr, "filter", "", "field=value with field one of "+strings.Join(filter.Params(), ", "))
	return cmd
}

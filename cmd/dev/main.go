package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pricedash/adapters/api"
	"pricedash/adapters/sqlstore"
	"pricedash/domain/housing"
	"pricedash/internal"
	"pricedash/internal/config"
	"pricedash/internal/dataset"
	"pricedash/internal/migration"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "pricedash-dev",
		Short:        "Development tools for the price dashboard",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	cfg := dataset.DefaultConfig()
	var out string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic Ames-style sales dataset (CSV or XLSX)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seed(cmd, cfg, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "train.csv", "output file; the extension selects csv or xlsx")
	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "number of sales")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (deterministic)")
	return cmd
}

func seed(cmd *cobra.Command, cfg dataset.Config, out string) error {
	ds, err := dataset.Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(out)); ext {
	case ".csv":
		err = dataset.WriteCSV(out, ds)
	case ".xlsx":
		err = dataset.WriteXLSX(out, ds)
	default:
		return fmt.Errorf("unsupported output extension %q (want .csv or .xlsx)", ext)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Dataset written: %s (%d columns, %d rows)\n", out, len(ds.Headers), ds.Len())
	return nil
}

func newSmokeTestCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Call every backend endpoint once and report which answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseURL == "" {
				baseURL = api.DefaultConfig().BaseURL
				if cfg, err := config.Load(); err == nil {
					baseURL = cfg.API.BaseURL
				}
			}
			client, err := api.NewClient(api.Config{BaseURL: baseURL, Timeout: 15 * time.Second}, internal.NewLogger(internal.LogLevelError))
			if err != nil {
				return err
			}
			return runSmokeTests(cmd, client)
		},
	}
	cmd.Flags().StringVar(&baseURL, "api", "", "backend base URL (default API_BASE_URL)")
	return cmd
}

type smokeCheck struct {
	name string
	call func(ctx context.Context) error
}

func runSmokeTests(cmd *cobra.Command, client *api.Client) error {
	sample := housing.Features{"GrLivArea": int64(1500), "Neighborhood": "CollgCr"}
	checks := []smokeCheck{
		{"GET /", func(ctx context.Context) error { _, err := client.Info(ctx); return err }},
		{"GET /health", func(ctx context.Context) error { _, err := client.Health(ctx); return err }},
		{"GET /model/info", func(ctx context.Context) error { _, err := client.ModelInfo(ctx); return err }},
		{"GET /model/comparison", func(ctx context.Context) error { _, err := client.ModelComparison(ctx); return err }},
		{"POST /predict", func(ctx context.Context) error { _, err := client.Predict(ctx, sample); return err }},
		{"POST /predict/batch", func(ctx context.Context) error {
			_, err := client.PredictBatch(ctx, []housing.Features{sample, sample})
			return err
		}},
		{"GET /api/stats/overview", func(ctx context.Context) error { _, err := client.StatsOverview(ctx); return err }},
		{"GET /api/stats/neighborhoods", func(ctx context.Context) error { _, err := client.NeighborhoodStats(ctx); return err }},
		{"GET /api/stats/price-distribution", func(ctx context.Context) error { _, err := client.PriceDistribution(ctx, 20); return err }},
		{"GET /api/stats/defaults", func(ctx context.Context) error { _, err := client.Defaults(ctx); return err }},
		{"POST /api/model/parse-description", func(ctx context.Context) error {
			_, err := client.ParseDescription(ctx, "3 bedroom ranch, 1,400 sq ft")
			return err
		}},
	}

	results := make([]error, len(checks))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			results[i] = check.call(ctx)
			return nil
		})
	}
	_ = g.Wait()

	w := cmd.OutOrStdout()
	failed := 0
	for i, check := range checks {
		if results[i] != nil {
			failed++
			fmt.Fprintf(w, "FAIL %-36s %v\n", check.name, results[i])
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", check.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d endpoints failed against %s", failed, len(checks), client.BaseURL())
	}
	fmt.Fprintf(w, "All %d endpoints answered at %s\n", len(checks), client.BaseURL())
	return nil
}

func newMigrateCmd() *cobra.Command {
	var prune time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the preference store schema and optionally prune stale preferences",
		Long: `Apply the preference store schema to DATABASE_URL (sqlite or postgres).

With --prune, preferences not updated within the given age are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == "memory" {
				return fmt.Errorf("DATABASE_URL is not set; the in-memory store needs no migration")
			}
			db, err := sqlstore.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Schema %s applied (%s)\n", migration.NewRunner().Version(), cfg.Database.Driver)

			if prune > 0 {
				n, err := sqlstore.NewPreferenceRepository(db).DeleteStale(cmd.Context(), prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Pruned %d preferences older than %s\n", n, prune)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete preferences not updated within this age, e.g. 720h")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pricedash/adapters/api"
	"pricedash/internal"
	"pricedash/internal/config"
)

type options struct {
	baseURL string
	timeout time.Duration
	verbose bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "pricedash-cli",
		Short:         "Query the house price prediction backend from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := api.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		defaults.BaseURL = cfg.API.BaseURL
		defaults.Timeout = cfg.API.Timeout
	}
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "api", defaults.BaseURL, "prediction backend base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout (0 disables)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log backend requests")

	rootCmd.AddCommand(
		newHealthCmd(opts),
		newInfoCmd(opts),
		newPredictCmd(opts),
		newBatchCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

func (o *options) client() (*api.Client, error) {
	level := internal.LogLevelError
	if o.verbose {
		level = internal.LogLevelDebug
	}
	return api.NewClient(api.Config{
		BaseURL:   o.baseURL,
		Timeout:   o.timeout,
		UserAgent: "pricedash-cli",
	}, internal.NewLogger(level))
}

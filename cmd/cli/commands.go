package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pricedash/domain/housing"
	"pricedash/internal/export"
	"pricedash/internal/form"
	"pricedash/internal/format"
	"pricedash/internal/stats"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	dim    = color.New(color.Faint)
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up and has a model loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			health, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintf(w, "%s %s\n", red.Sprint("unreachable"), client.BaseURL())
				return err
			}
			status := green.Sprint(health.Status)
			if !health.Healthy() {
				status = red.Sprint(health.Status)
			}
			fmt.Fprintf(w, "%s %s (model loaded: %t, version %s)\n", status, client.BaseURL(), health.ModelLoaded, health.ModelVersion)

			if info, err := client.Info(cmd.Context()); err == nil && info.Message != "" {
				fmt.Fprintln(w, dim.Sprint(info.Message))
			}
			if !health.Healthy() {
				return fmt.Errorf("backend is %s", health.Status)
			}
			return nil
		},
	}
}

func newInfoCmd(opts *options) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the model type, parameters and most important features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			info, err := client.ModelInfo(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			modelType := info.ModelType
			if modelType == "" {
				modelType = "unknown"
			}
			fmt.Fprintf(w, "%s %s\n", bold.Sprint("Model:"), modelType)
			if info.ModelVersion != "" {
				fmt.Fprintf(w, "%s %s\n", bold.Sprint("Version:"), info.ModelVersion)
			}

			if len(info.Parameters) > 0 {
				keys := make([]string, 0, len(info.Parameters))
				for k := range info.Parameters {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintln(w, bold.Sprint("Parameters:"))
				for _, k := range keys {
					raw, _ := json.Marshal(info.Parameters[k])
					fmt.Fprintf(w, "  %s = %s\n", k, raw)
				}
			}

			weights := info.TopFeatures(top)
			if len(weights) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, bold.Sprint("FEATURE")+"\t"+bold.Sprint("IMPORTANCE"))
			for _, fw := range weights {
				fmt.Fprintf(tw, "%s\t%s\n", fw.Name, format.Percentage(fw.Importance, 1))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if models, err := client.ModelComparison(cmd.Context()); err == nil && len(models) > 0 {
				fmt.Fprintln(w)
				tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, bold.Sprint("MODEL")+"\t"+bold.Sprint("R²")+"\t"+bold.Sprint("RMSE")+"\t"+bold.Sprint("MAE"))
				for _, m := range models {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Model, format.Number(m.R2, 3), format.Currency(m.RMSE), format.Currency(m.MAE))
				}
				return tw.Flush()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of features to list")
	return cmd
}

func newPredictCmd(opts *options) *cobra.Command {
	var describe string
	var raw bool
	cmd := &cobra.Command{
		Use:   "predict [Field=value...]",
		Short: "Predict the price of one property",
		Long: `Predict the price of one property. Fields not given take the form defaults.

Example: pricedash-cli predict GrLivArea=1800 Neighborhood=NridgHt OverallQual=8
         pricedash-cli predict --describe "3 bedroom ranch, 1,400 sq ft, built in 1995"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			schema := form.DefaultSchema()
			values := schema.Defaults()

			if describe != "" {
				parsed, err := client.ParseDescription(cmd.Context(), describe)
				if err != nil {
					return err
				}
				for k, v := range parsed {
					if _, known := schema.Field(k); known && v != nil {
						values[k] = form.FormatValue(v)
					}
				}
			}
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || k == "" {
					return fmt.Errorf("expected Field=value, got %q", arg)
				}
				if _, known := schema.Field(k); !known {
					return fmt.Errorf("unknown field %q", k)
				}
				values[k] = v
			}

			result, err := client.Predict(cmd.Context(), schema.Coerce(values))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if raw {
				_, err = fmt.Fprintln(w, string(result.Raw()))
				return err
			}
			price, err := result.PredictedPrice()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s\n", bold.Sprint("Estimated price:"), green.Sprint(format.Currency(price)))
			if v := result.ModelVersion(); v != "" {
				fmt.Fprintln(w, dim.Sprint("model "+v))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&describe, "describe", "", "free-text description parsed by the backend before the explicit fields")
	cmd.Flags().BoolVar(&raw, "json", false, "print the raw backend answer")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise sale prices overall and per neighborhood",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			overview, err := client.StatsOverview(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", bold.Sprint("Properties:"), format.Count(overview.TotalProperties))
			fmt.Fprintf(w, "%s %s\n", bold.Sprint("Average price:"), format.Currency(overview.AvgPrice))
			fmt.Fprintf(w, "%s %s\n", bold.Sprint("Median price:"), format.Currency(overview.MedianPrice))
			if overview.MinPrice != nil {
				fmt.Fprintf(w, "%s %s - %s\n", bold.Sprint("Range:"), format.Currency(*overview.MinPrice), format.Currency(overview.MaxPrice))
			}

			hoods, err := client.NeighborhoodStats(cmd.Context())
			if err != nil {
				return err
			}
			averages := make([]float64, len(hoods))
			for i, h := range hoods {
				averages[i] = h.AvgPrice
			}
			if summary, err := stats.Calculate(averages); err == nil {
				fmt.Fprintf(w, "%s %d neighborhoods, averages from %s to %s (median %s)\n",
					bold.Sprint("Spread:"), summary.Count, format.Currency(summary.Min), format.Currency(summary.Max), format.Currency(summary.Median))
			}

			fmt.Fprintln(w)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, bold.Sprint("NEIGHBORHOOD")+"\t"+bold.Sprint("AVG PRICE")+"\t"+bold.Sprint("SALES")+"\t"+bold.Sprint("SEGMENT"))
			for _, h := range housing.TopByAvgPrice(hoods, top) {
				segment := h.Segment()
				if segment == "Premium" {
					segment = yellow.Sprint(segment)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", h.Neighborhood, format.Currency(h.AvgPrice), h.PropertyCount, segment)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of neighborhoods to list")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var out, formatName string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download neighborhood statistics as CSV, JSON or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			hoods, err := client.NeighborhoodStats(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, export.NeighborhoodHeaders, export.NeighborhoodRecords(hoods)); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d neighborhoods to %s\n", len(hoods), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "csv", "csv, json or xlsx")
	return cmd
}

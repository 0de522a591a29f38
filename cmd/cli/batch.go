package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pricedash/adapters/excel"
	"pricedash/domain/housing"
	"pricedash/internal"
	"pricedash/internal/export"
	"pricedash/internal/form"
)

// PriceColumn is appended to every batch output row.
const PriceColumn = "PredictedPrice"

type batchOptions struct {
	out       string
	format    string
	chunkSize int
	workers   int
	quiet     bool
}

func newBatchCmd(opts *options) *cobra.Command {
	bo := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch <input.csv|input.xlsx>",
		Short: "Predict prices for every row of a CSV or XLSX file",
		Long: `Predict prices for every row of a CSV or XLSX file. Columns named after
form fields are sent to the backend, missing fields take the form defaults,
and the output repeats the input with a PredictedPrice column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			data, err := excel.NewDataReader(args[0]).WithLogger(internal.NewLogger(internal.LogLevelError)).ReadData()
			if err != nil {
				return err
			}

			f, err := bo.outputFormat()
			if err != nil {
				return err
			}

			var progress io.Writer = cmd.ErrOrStderr()
			if bo.quiet {
				progress = io.Discard
			}
			prices, err := predictRows(cmd, client, form.DefaultSchema(), data.Rows, bo, progress)
			if err != nil {
				return err
			}

			headers := append(append([]string(nil), data.Headers...), PriceColumn)
			records := make([]export.Record, len(data.Rows))
			for i, row := range data.Rows {
				rec := make(export.Record, len(headers))
				for k, v := range row {
					rec[k] = v
				}
				rec[PriceColumn] = math.Round(prices[i]*100) / 100
				records[i] = rec
			}

			w := cmd.OutOrStdout()
			if bo.out != "" && bo.out != "-" {
				file, err := os.Create(bo.out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, headers, records); err != nil {
				return err
			}
			if bo.out != "" && bo.out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d rows to %s\n", green.Sprint("priced"), len(records), bo.out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&bo.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&bo.format, "format", "f", "", "csv, json or xlsx (default from --out, else csv)")
	cmd.Flags().IntVar(&bo.chunkSize, "chunk", 50, "rows per backend request")
	cmd.Flags().IntVar(&bo.workers, "workers", 4, "concurrent backend requests")
	cmd.Flags().BoolVarP(&bo.quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func (bo *batchOptions) outputFormat() (export.Format, error) {
	name := strings.ToLower(strings.TrimSpace(bo.format))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(bo.out)), ".")
	}
	if name == "" {
		name = string(export.FormatCSV)
	}
	return export.ParseFormat(name)
}

// predictRows prices rows in chunks, a few chunks at a time. Prices come back
// in input order; the first failing chunk cancels the rest.
func predictRows(cmd *cobra.Command, client batchPredictor, schema *form.Schema, rows []excel.RawRowData, bo *batchOptions, progress io.Writer) ([]float64, error) {
	size := bo.chunkSize
	if size < 1 {
		size = 1
	}
	workers := bo.workers
	if workers < 1 {
		workers = 1
	}

	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Pricing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	var barMu sync.Mutex

	prices := make([]float64, len(rows))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for start := 0; start < len(rows); start += size {
		start := start
		end := min(start+size, len(rows))
		g.Go(func() error {
			batch := make([]housing.Features, 0, end-start)
			for _, row := range rows[start:end] {
				batch = append(batch, featuresFor(schema, row))
			}
			result, err := client.PredictBatch(ctx, batch)
			if err != nil {
				return fmt.Errorf("rows %d-%d: %w", start+1, end, err)
			}
			got := result.Prices()
			if len(got) != len(batch) {
				return fmt.Errorf("rows %d-%d: backend returned %d prices for %d rows", start+1, end, len(got), len(batch))
			}
			copy(prices[start:end], got)

			barMu.Lock()
			_ = bar.Add(len(batch))
			barMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()
	return prices, nil
}

type batchPredictor interface {
	PredictBatch(ctx context.Context, batch []housing.Features) (housing.PredictionResult, error)
}

// featuresFor keeps the schema columns of a row and fills blanks and the
// missing columns with defaults.
func featuresFor(schema *form.Schema, row excel.RawRowData) housing.Features {
	values := make(map[string]string)
	for k, v := range row {
		field, known := schema.Field(k)
		if !known || strings.TrimSpace(v) == "" {
			continue
		}
		if field.Kind != form.String && strings.EqualFold(v, "NA") {
			continue
		}
		values[k] = v
	}
	return schema.Build(values)
}

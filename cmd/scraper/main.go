// Command scraper runs one scraping pass over the configured month scope:
// fetch each trading date's daily quotation page, extract the market summary
// and most-active rankings, and write per-date plus merged CSV files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hkexcli/internal/config"
	"hkexcli/internal/exporter"
	"hkexcli/internal/extract"
	"hkexcli/internal/fetch"
	"hkexcli/internal/infrastructure"
	"hkexcli/internal/pipeline"
)

var (
	configPath   string
	months       []string
	outDir       string
	headless     bool
	workbookPath string
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "HKEX daily quotation report scraper",
	Long: `Fetches the main board daily quotation pages for a configured month
scope, extracts the market summary and most-active rankings, and writes
per-date CSV files plus cumulative merged files.`,
	SilenceUsage: true,
	RunE:         runScrape,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().StringSliceVar(&months, "months", nil, "month scope override, e.g. 2025-09,2025-10")
	rootCmd.Flags().StringVar(&outDir, "out", "", "output directory override")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	rootCmd.Flags().StringVar(&workbookPath, "workbook", "", "also export the merged summary to this xlsx path")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	// Flags are applied through the environment so the usual precedence
	// holds: defaults, then file, then environment/flags.
	if len(months) > 0 {
		os.Setenv("HKX_SCOPE_MONTHS", strings.Join(months, ","))
	}
	if outDir != "" {
		os.Setenv("HKX_OUTPUT_DIR", outDir)
	}
	if cmd.Flags().Changed("headless") {
		os.Setenv("HKX_FETCH_HEADLESS", strconv.FormatBool(headless))
	}
	if workbookPath != "" {
		os.Setenv("HKX_OUTPUT_WORKBOOK_PATH", workbookPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := exporter.NewDailySink(cfg.Output.Dir, cfg.Output.DedupeMerged)
	if err != nil {
		return fmt.Errorf("failed to open output sink: %w", err)
	}

	fetcher := fetch.NewChromeFetcher(cfg.Fetch.Headless)
	defer fetcher.Close()

	executor := fetch.NewExecutor(fetcher, cfg.Fetch.MaxConcurrent, cfg.Fetch.RequestsPerMinute, cfg.Fetch.Timeout, logger)
	runner := pipeline.NewRunner(cfg, executor, extract.New(logger), sink, logger)

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("processed %d dates: %d written, %d failed, %d empty (%d files in %s)\n",
		summary.Processed, summary.Succeeded, summary.Failed,
		summary.ExtractionEmpty, summary.FilesWritten, summary.Duration.Round(time.Millisecond))

	if cfg.Output.WorkbookPath != "" {
		if err := exporter.ExportMergedSummary(cfg.Output.Dir, cfg.Output.WorkbookPath); err != nil {
			return fmt.Errorf("failed to export workbook: %w", err)
		}
		logger.Info("workbook exported", slog.String("path", cfg.Output.WorkbookPath))
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

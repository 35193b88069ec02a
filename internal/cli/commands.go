package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tim0thy1/stock-tools/internal/config"
	"github.com/Tim0thy1/stock-tools/internal/dataflows"
	"github.com/Tim0thy1/stock-tools/internal/export"
	"github.com/Tim0thy1/stock-tools/internal/logging"
	"github.com/Tim0thy1/stock-tools/internal/monitor"
	"github.com/Tim0thy1/stock-tools/internal/news"
	"github.com/Tim0thy1/stock-tools/internal/position"
	"github.com/Tim0thy1/stock-tools/internal/watchlist"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "stock-tools",
		Short: "stock-tools - terminal market monitor and data exporters",
		Long: `stock-tools watches US and HK equities, crypto spot prices and flash news
in one refreshing terminal view, and exports price history, option chains and
flash-news archives to CSV.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.LoadEnv()
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			logging.Setup(cfg.LogLevel, cfg.LogFile)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start the monitor
			return runMonitor(cfg)
		},
	}

	rootCmd.AddCommand(newMonitorCmd(cfg))
	rootCmd.AddCommand(newOptionDataCmd(cfg))
	rootCmd.AddCommand(newFlashNewsCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newMonitorCmd creates the monitor command
func newMonitorCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the refreshing terminal market monitor",
		Long: `Watch the configured stock list, crypto pairs and a flash-news feed in a
single auto-refreshing terminal view.

Keys: q quits, w forces a refresh, m toggles the news item count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source, _ := cmd.Flags().GetString("source"); source != "" {
				cfg.NewsSource = source
			}
			return runMonitor(cfg)
		},
	}

	cmd.Flags().StringP("source", "s", "", "News source: e (English) or c (Chinese)")

	return cmd
}

// newOptionDataCmd creates the optiondata command
func newOptionDataCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optiondata [SYMBOL...]",
		Short: "Export price history, indicators and option chains to CSV",
		Long: `Fetch daily, 30-minute and 60-minute price history with indicator columns
plus option chains for each symbol, and write the results as CSV files.
Symbols come from the arguments, or from the watchlist file when none are
given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := args
			if len(symbols) == 0 {
				wl, err := watchlist.Load(cfg.WatchlistFile)
				if err != nil {
					return fmt.Errorf("load watchlist: %w", err)
				}
				symbols = wl.Domestic
			}
			if len(symbols) == 0 {
				return fmt.Errorf("no symbols: pass them as arguments or fill %s", cfg.WatchlistFile)
			}

			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				outDir = filepath.Join(cfg.DataDir, "exports")
			}

			exporter := export.NewOptionsExporter(outDir, cfg.HTTPTimeout)
			return exporter.Export(symbols)
		},
	}

	cmd.Flags().String("out", "", "Output directory (defaults to <data dir>/exports)")

	return cmd
}

// newFlashNewsCmd creates the flashnews command
func newFlashNewsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flashnews",
		Short: "Export yesterday's flash news to CSV",
		Long: `Page through the flash-news feed and write every item published yesterday
(local midnight to midnight) to CSV, with timestamps in US Eastern time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				outDir = filepath.Join(cfg.DataDir, "exports")
			}

			exporter := export.NewFlashNewsExporter(outDir, cfg.HTTPTimeout)
			path, err := exporter.Export()
			if err != nil {
				return err
			}
			fmt.Println("saved", path)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output directory (defaults to <data dir>/exports)")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("stock-tools v1.0.0")
			fmt.Println("Terminal market monitor and data exporters")
		},
	}
}

// runMonitor wires the data sources and starts the refresh loop.
func runMonitor(cfg *config.Config) error {
	yahoo := dataflows.NewYahooClient(cfg.HTTPTimeout)
	quotes := dataflows.NewQuoteCache(cfg.QuoteTTL, yahoo.BatchQuote)
	hk := dataflows.NewTencentClient(cfg.HTTPTimeout)
	gate := dataflows.NewGateClient(cfg.HTTPTimeout)

	cache := news.LoadTranslationCache(cfg.TranslationCacheFile)
	fetcher := news.NewFetcher(cfg.NewsSource, cfg.HTTPTimeout, cache)

	ledger := position.ParseLedger(cfg.CryptoPositions)

	return monitor.New(cfg, quotes, hk, gate, fetcher, ledger).Run()
}

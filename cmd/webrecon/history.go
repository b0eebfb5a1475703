package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/webrecon/webrecon/internal/config"
	"github.com/webrecon/webrecon/internal/database"
	"github.com/webrecon/webrecon/internal/report"
)

// NewHistoryCmd creates the history command.
// This command inspects crawl reports stored with --db during earlier runs.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed-url]",
		Short: "Inspect stored crawl reports",
		Long: `History lists crawl runs stored in the SQLite database and replays
stored reports.

Use 'webrecon crawl --db <path>' to store reports during crawling.

Examples:
  # List all seed URLs with stored reports
  webrecon history --db recon.db --list-seeds

  # Show run history for one seed
  webrecon history --db recon.db https://target.example.com

  # Print the latest stored report as JSON
  webrecon history --db recon.db --latest -f json https://target.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db", "",
		"Path to the SQLite database written by 'crawl --db'")
	cmd.Flags().BoolP("list-seeds", "L", false,
		"List all seed URLs in the database")
	cmd.Flags().Bool("latest", false,
		"Print the latest stored report for the seed")
	cmd.Flags().StringP("format", "f", string(config.OutputText),
		"Report format for --latest: text, json, or markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	if dbPath == "" {
		return errors.New("--db is required (path to a database written by 'crawl --db')")
	}

	db, err := database.Open(dbPath, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	listSeeds, err := cmd.Flags().GetBool("list-seeds")
	if err != nil {
		return err
	}
	if listSeeds {
		return printSeeds(ctx, cmd, db)
	}

	if len(args) == 0 {
		return errors.New("seed URL required (or use --list-seeds)")
	}
	seedURL := args[0]

	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	if latest {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		return printLatestReport(ctx, db, seedURL, config.OutputFormat(format))
	}

	return printHistory(ctx, cmd, db, seedURL)
}

// printSeeds lists every seed URL with stored reports.
func printSeeds(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB) error {
	seeds, err := db.ListSeedURLs(ctx)
	if err != nil {
		return err
	}

	if len(seeds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored reports.")
		return nil
	}

	for _, seed := range seeds {
		fmt.Fprintln(cmd.OutOrStdout(), seed)
	}
	return nil
}

// printHistory prints the run history table for one seed.
func printHistory(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB, seedURL string) error {
	history, err := db.GetReportHistory(ctx, seedURL)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No stored reports for %s\n", seedURL)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run history for %s:\n\n", seedURL)
	fmt.Fprintf(cmd.OutOrStdout(), "%-5s %-20s %7s %6s %10s %7s %s\n",
		"ID", "Timestamp", "Pages", "Forms", "Endpoints", "Hidden", "Status")
	for _, meta := range history {
		status := "complete"
		if meta.Cancelled {
			status = "cancelled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-5d %-20s %7d %6d %10d %7d %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.PagesCrawled,
			meta.FormsFound,
			meta.EndpointsFound,
			meta.HiddenFilesFound,
			status,
		)
	}
	return nil
}

// printLatestReport replays the latest stored report through a writer.
func printLatestReport(ctx context.Context, db *database.CrawlDB, seedURL string, format config.OutputFormat) error {
	stored, err := db.GetLatestReport(ctx, seedURL)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("no stored reports for %s", seedURL)
	}

	var w report.Writer
	switch format {
	case config.OutputJSON:
		w = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case config.OutputMarkdown:
		w = report.NewMarkdownWriter(os.Stdout)
	case config.OutputText:
		w = report.NewSimpleWriter(os.Stdout)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}

	_, err = w.Write(stored)
	return err
}

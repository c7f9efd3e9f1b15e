package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyhq/records-client/pkg/aggregate"
	"github.com/tallyhq/records-client/pkg/logging"
	"github.com/tallyhq/records-client/pkg/query"
	"github.com/tallyhq/records-client/pkg/retriever"
)

// NewGetCmd creates the get command.
// This command retrieves one page of the collection and prints the aggregate view.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [page]",
		Short: "Retrieve the aggregate view of one collection page",
		Long: `Get fetches the requested page plus probes of both adjacent pages and
prints the aggregate view. The page argument defaults to 1, and malformed
or out-of-range values are coerced to 1.

Examples:
  # Retrieve page 2
  recordsctl get 2 --base-url https://records.example.com

  # Retrieve the first page of red and blue records
  recordsctl get --base-url https://records.example.com --color red --color blue

  # Machine-readable output
  recordsctl get 3 --base-url https://records.example.com --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGetCmd,
	}

	cmd.Flags().StringP("base-url", "u", "",
		"Collection API origin, e.g. https://records.example.com (required)")
	cmd.Flags().StringSliceP("color", "c", nil,
		"Filter by color (repeatable)")
	cmd.Flags().String("user-agent", "recordsctl/"+getVersion(),
		"User-Agent header sent to the API")
	cmd.Flags().String("collection-path", "",
		"Collection endpoint path (default /records)")
	cmd.Flags().Duration("timeout", 0,
		"Timeout for a single request (default 30s)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the aggregate view in JSON format")

	return cmd
}

// runGetCmd executes the get command.
func runGetCmd(cmd *cobra.Command, args []string) error {
	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return err
	}
	if baseURL == "" {
		return errors.New("--base-url is required (the collection API origin)")
	}

	colors, err := cmd.Flags().GetStringSlice("color")
	if err != nil {
		return err
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}
	collectionPath, err := cmd.Flags().GetString("collection-path")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{Level: level, Pretty: true, Output: os.Stderr})

	page := 1
	if len(args) == 1 {
		page = query.ParsePage(args[0])
	}

	cfg := retriever.DefaultConfig(baseURL, userAgent)
	cfg.CollectionPath = collectionPath
	if timeout > 0 {
		cfg.Client.Timeout = timeout
	}

	r, err := retriever.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	result := r.Retrieve(cmd.Context(), query.Options{Page: page, Colors: colors})

	if jsonOutput {
		return outputAggregateJSON(cmd.OutOrStdout(), result)
	}
	return outputAggregateText(cmd.OutOrStdout(), page, result)
}

// outputAggregateJSON writes the aggregate view in JSON format.
func outputAggregateJSON(out io.Writer, result aggregate.Result) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputAggregateText writes the aggregate view in human-readable text format.
func outputAggregateText(out io.Writer, page int, result aggregate.Result) error {
	fmt.Fprintf(out, "Page %d  status: %s\n", page, result.Status)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nRecords (%d): %s\n", len(result.IDs), formatIDs(result.IDs))

	if len(result.Open) > 0 {
		fmt.Fprintf(out, "\nOpen records (%d):\n", len(result.Open))
		fmt.Fprintf(out, "  %-12s  %-12s  %s\n", "ID", "Color", "Primary")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 36))
		for _, rec := range result.Open {
			primary := "no"
			if rec.IsPrimary {
				primary = "yes"
			}
			fmt.Fprintf(out, "  %-12d  %-12s  %s\n", rec.ID, rec.Color, primary)
		}
	}

	fmt.Fprintf(out, "\nClosed primary records: %d\n", result.ClosedPrimaryCount)

	fmt.Fprintln(out, "\nNavigation:")
	fmt.Fprintf(out, "  previous: %s\n", formatNeighbor(result.Previous))
	fmt.Fprintf(out, "  next:     %s\n", formatNeighbor(result.Next))

	return nil
}

// formatIDs joins record ids for display.
func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}

// formatNeighbor formats an adjacent page number for display.
func formatNeighbor(page *int) string {
	if page == nil {
		return "none"
	}
	return fmt.Sprintf("page %d", *page)
}

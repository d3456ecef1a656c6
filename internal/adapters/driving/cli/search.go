package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchTypes  []string
	searchUnit   string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the offline dataset",
	Long: `Searches rules, units, equipment and articles in the local index.

Matches titles, abbreviations and tags first, then body text, with fuzzy
matching for small typos. When no token matches, falls back to a plain
substring scan of titles.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "restrict to document types (e.g. rule,unit)")
	searchCmd.Flags().StringVar(&searchUnit, "unit", "", "restrict to documents owned by a unit id")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:   searchLimit,
		Offset:  searchOffset,
		GroupID: searchUnit,
	}
	for _, t := range searchTypes {
		opts.Types = append(opts.Types, domain.DocumentType(strings.TrimSpace(t)))
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Title (type) score
		doc := results[i].Document
		title := doc.Title
		if title == "" {
			title = doc.ID
		}

		cmd.Printf("  [%d] %s (%s) %.2f\n", i+1, title, doc.Type, results[i].Score)
		if doc.GroupName != "" {
			cmd.Printf("      Unit: %s\n", doc.GroupName)
		}
		if snippet := snippet(doc.Body, 100); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}

	return nil
}

// snippet returns the first n runes of body on one line.
func snippet(body string, n int) string {
	s := strings.Join(strings.Fields(body), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

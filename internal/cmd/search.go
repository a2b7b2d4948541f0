package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specfuse/specfuse/internal/store/files"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the latest records across all product types",
	Long: `Search scans the latest record of every product type for the query
and prints matches ordered by relevance, where relevance is how often
the query occurs across a record's fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := files.New(cfg.StorePath, files.ReadOnly())
	if err != nil {
		return err
	}

	matches, err := s.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}

	for _, match := range matches {
		record := match.Record
		brand, _ := record.Fields["brand"].(string)
		fmt.Fprintf(out, "%-8s %s  relevance=%d  %s\n",
			record.ProductType, record.Date, match.Relevance, brand)
	}
	return nil
}

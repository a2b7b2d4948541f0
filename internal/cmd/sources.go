package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/specfuse/specfuse/internal/store/files"
	"github.com/specfuse/specfuse/pkg/records"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources <product_type> [date]",
	Short: "Show which sources contributed to a record",
	Long: `Sources prints the per-source contribution counts of a reconciled
record: how many final fields each source's candidates survived into.
Without a date it reads the latest record.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	productType, err := records.ParseProductType(args[0])
	if err != nil {
		return err
	}

	s, err := files.New(cfg.StorePath, files.ReadOnly())
	if err != nil {
		return err
	}

	var record *records.ReconciledRecord
	if len(args) == 2 {
		date, err := records.ParseDate(args[1])
		if err != nil {
			return err
		}
		record, err = s.Get(cmd.Context(), productType, date)
		if err != nil {
			return err
		}
	} else {
		record, err = s.Latest(cmd.Context(), productType)
		if err != nil {
			return err
		}
	}

	meta := record.Metadata
	if cfg.Output == "json" {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s/%s\n", record.ProductType, record.Date)

	ids := make([]records.SourceID, 0, len(meta.SourceCounts))
	for id := range meta.SourceCounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(out, "  %-16s %d fields\n", id, meta.SourceCounts[id])
	}
	return nil
}

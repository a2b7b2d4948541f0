package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specfuse/specfuse/internal/store/files"
	"github.com/specfuse/specfuse/pkg/records"
)

var getCmd = &cobra.Command{
	Use:   "get <product_type> [date]",
	Short: "Print a reconciled record",
	Long: `Get prints the reconciled record for a product type. With a date
argument it fetches that exact version; without one it fetches the
latest.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
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

	return printRecord(cmd, record)
}

func printRecord(cmd *cobra.Command, record *records.ReconciledRecord) error {
	if cfg.Output != "text" {
		data, err := record.MarshalIndented()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s/%s\n", record.ProductType, record.Date)
	for _, path := range record.FieldPaths() {
		sources := make([]string, 0, len(record.Provenance[path]))
		for _, id := range record.Provenance[path] {
			sources = append(sources, id.String())
		}
		fmt.Fprintf(out, "  %-32s %v  [%s]\n", path, record.Fields[path], strings.Join(sources, ","))
	}

	meta := record.Metadata
	fmt.Fprintf(out, "fields: %d/%d (retention %.2f)\n",
		meta.NormalizedFieldCount, meta.OriginalFieldCount, meta.FieldRetentionRatio)

	counts := make([]string, 0, len(meta.SourceCounts))
	for id, n := range meta.SourceCounts {
		counts = append(counts, fmt.Sprintf("%s=%d", id, n))
	}
	sort.Strings(counts)
	fmt.Fprintf(out, "sources: %s\n", strings.Join(counts, " "))
	return nil
}

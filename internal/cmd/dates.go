package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specfuse/specfuse/internal/store/files"
	"github.com/specfuse/specfuse/pkg/records"
)

var datesCmd = &cobra.Command{
	Use:   "dates <product_type>",
	Short: "List stored record dates for a product type, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	productType, err := records.ParseProductType(args[0])
	if err != nil {
		return err
	}

	s, err := files.New(cfg.StorePath, files.ReadOnly())
	if err != nil {
		return err
	}

	dates, err := s.Dates(cmd.Context(), productType)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		data, err := json.Marshal(dates)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for _, date := range dates {
		fmt.Fprintln(cmd.OutOrStdout(), date)
	}
	return nil
}

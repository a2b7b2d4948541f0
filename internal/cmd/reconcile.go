package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/specfuse/specfuse/internal/store/files"
	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/logging"
	"github.com/specfuse/specfuse/pkg/pipeline"
	"github.com/specfuse/specfuse/pkg/reconcile"
	"github.com/specfuse/specfuse/pkg/records"
	"github.com/specfuse/specfuse/pkg/schema"
)

var (
	flagPriorities string
	flagSchemas    string
	flagImagesDir  string
	flagWorkers    int
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [file|dir...]",
	Short: "Reconcile raw source payloads into versioned records",
	Long: `Reconcile reads raw payload files named
{product_type}_{source}_{YYYYMMDD}_{HHMMSS}.{json|csv}, groups them into
one unit of work per product type and date, merges each unit, and
writes the resulting records to the store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&flagPriorities, "priorities", "", "directory of per-product-type priority YAML files")
	reconcileCmd.Flags().StringVar(&flagSchemas, "schemas", "", "directory of per-product-type schema YAML files")
	reconcileCmd.Flags().StringVar(&flagImagesDir, "images", "", "directory of product images to attach by filename convention")
	reconcileCmd.Flags().IntVar(&flagWorkers, "workers", 0, "max units reconciled concurrently")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	inputs, skipped, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.NewValidationError("paths", strings.Join(args, ","), "no payload files found")
	}

	if flagImagesDir != "" {
		attachImages(inputs, flagImagesDir)
	}

	s, err := files.New(cfg.StorePath)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{}
	if flagWorkers > 0 {
		opts = append(opts, pipeline.WithWorkers(flagWorkers))
	} else if cfg.Workers > 0 {
		opts = append(opts, pipeline.WithWorkers(cfg.Workers))
	}
	prioritiesDir := flagPriorities
	if prioritiesDir == "" {
		prioritiesDir = cfg.PrioritiesDir
	}
	if prioritiesDir != "" {
		reconcilerFor, err := reconcilersFromDir(prioritiesDir)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithReconcilers(reconcilerFor))
	}
	if flagSchemas != "" {
		schemaFor, err := schemasFromDir(flagSchemas)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithSchemas(schemaFor))
	}

	result, err := pipeline.New(s, opts...).Run(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	printRunSummary(cmd, result, skipped)
	return nil
}

// collectInputs walks the given paths and builds pipeline inputs from
// files matching the payload naming convention. Non-matching files are
// returned as skipped names rather than failing the run.
func collectInputs(paths []string) ([]pipeline.Input, []string, error) {
	var inputs []pipeline.Input
	var skipped []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, errors.WrapIO("stat", path, err)
		}

		var candidates []string
		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, nil, errors.WrapIO("readdir", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					candidates = append(candidates, filepath.Join(path, entry.Name()))
				}
			}
		} else {
			candidates = append(candidates, path)
		}

		for _, file := range candidates {
			input, err := inputFromFile(file)
			if err != nil {
				skipped = append(skipped, filepath.Base(file))
				logging.Debug().Str("file", file).Err(err).Msg("file skipped")
				continue
			}
			inputs = append(inputs, input)
		}
	}
	return inputs, skipped, nil
}

func inputFromFile(path string) (pipeline.Input, error) {
	name, err := records.ParseScrapeName(filepath.Base(path))
	if err != nil {
		return pipeline.Input{}, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return pipeline.Input{}, errors.WrapIO("read", path, err)
	}

	collectedAt, err := time.Parse("20060102150405", name.Date.String()+name.Time)
	if err != nil {
		collectedAt = time.Now().UTC()
	}

	input := pipeline.Input{
		Source:      name.Source,
		ProductType: name.ProductType,
		Date:        name.Date,
		CollectedAt: collectedAt,
	}

	if name.Ext == "csv" {
		input.CSV = data
		return input, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return pipeline.Input{}, errors.WrapParse("json", path, err)
	}
	input.Payload = payload
	return input, nil
}

// attachImages scans a directory for image files following the
// {product_type}_{source}_{date}_{hash}.{ext} convention and attaches
// each to the first input of its product type and date.
func attachImages(inputs []pipeline.Input, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn().Str("dir", dir).Err(err).Msg("cannot read images directory")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		img, err := records.ParseImageName(entry.Name())
		if err != nil {
			continue
		}
		for i := range inputs {
			if inputs[i].ProductType == img.ProductType && inputs[i].Date == img.Date {
				inputs[i].Images = append(inputs[i].Images, entry.Name())
				break
			}
		}
	}
}

// reconcilersFromDir loads every priority document in a directory and
// builds one reconciler per product type from its own document. Each
// document names its product type; product types without a document
// fall back to the default ranks.
func reconcilersFromDir(dir string) (func(records.ProductType) *reconcile.Reconciler, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("readdir", dir, err)
	}

	byType := make(map[records.ProductType]*reconcile.Reconciler)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		productType, ranks, err := reconcile.LoadRanks(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := byType[productType]; dup {
			return nil, errors.NewConfigError("priorities",
				"two priority files for product type "+productType.String()+" in "+dir, nil)
		}
		byType[productType] = reconcile.New(reconcile.WithRanks(ranks))
	}
	if len(byType) == 0 {
		return nil, errors.NewConfigError("priorities", "no priority files in "+dir, nil)
	}

	fallback := reconcile.New()
	return func(productType records.ProductType) *reconcile.Reconciler {
		if r, ok := byType[productType]; ok {
			return r
		}
		return fallback
	}, nil
}

// schemasFromDir loads every schema document in a directory, keyed by
// the product type each document names. Product types without a
// document fall back to the compiled defaults.
func schemasFromDir(dir string) (func(records.ProductType) (*schema.Schema, error), error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("readdir", dir, err)
	}

	byType := make(map[records.ProductType]*schema.Schema)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		s, err := schema.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := byType[s.ProductType()]; dup {
			return nil, errors.NewConfigError("schemas",
				"two schema files for product type "+s.ProductType().String()+" in "+dir, nil)
		}
		byType[s.ProductType()] = s
	}
	if len(byType) == 0 {
		return nil, errors.NewConfigError("schemas", "no schema files in "+dir, nil)
	}

	return func(productType records.ProductType) (*schema.Schema, error) {
		if s, ok := byType[productType]; ok {
			return s, nil
		}
		return schema.Default(productType), nil
	}, nil
}

func printRunSummary(cmd *cobra.Command, result *pipeline.RunResult, skippedFiles []string) {
	out := cmd.OutOrStdout()

	for _, unit := range result.Units {
		record := unit.Record
		fmt.Fprintf(out, "%s/%s: %d fields from %d sources (retention %.2f)\n",
			record.ProductType, record.Date,
			record.Metadata.NormalizedFieldCount,
			len(record.Metadata.Sources),
			record.Metadata.FieldRetentionRatio)
		for _, skip := range unit.Skipped {
			fmt.Fprintf(out, "  skipped source %s: %v\n", skip.Source, skip.Err)
		}
	}

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(out, "%d warnings\n", len(warnings))
		if cfg.Verbose {
			for _, w := range warnings {
				fmt.Fprintf(out, "  %s\n", w)
			}
		}
	}
	if len(skippedFiles) > 0 {
		fmt.Fprintf(out, "%d files ignored (not payload files): %s\n",
			len(skippedFiles), strings.Join(skippedFiles, ", "))
	}
}

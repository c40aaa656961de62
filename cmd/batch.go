package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var (
	batchCategories []string
	batchLocations  []string
	batchLimit      int
	batchRules      string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run lead searches for every category and location combination",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, st, err := initPipeline(ctx, batchRules)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var pairs []pipeline.QueryPair
		for _, category := range batchCategories {
			for _, location := range batchLocations {
				pairs = append(pairs, pipeline.QueryPair{Category: category, Location: location})
			}
		}

		summary, err := p.RunAll(ctx, pairs, batchLimit)
		if err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int("pairs", len(pairs)),
			zap.Int("completed", summary.Completed),
			zap.Int("partial", summary.Partial),
			zap.Int("failed", summary.Failed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}

		if summary.Failed == len(pairs) && len(pairs) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchCategories, "categories", nil, "business categories to search (required)")
	batchCmd.Flags().StringSliceVar(&batchLocations, "locations", nil, "locations to search in (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 20, "max results to request per pair")
	batchCmd.Flags().StringVar(&batchRules, "rules", "", "path to a YAML scoring rules override file")
	_ = batchCmd.MarkFlagRequired("categories")
	_ = batchCmd.MarkFlagRequired("locations")
	rootCmd.AddCommand(batchCmd)
}

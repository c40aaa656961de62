package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

var (
	runCategory string
	runLocation string
	runLimit    int
	runRules    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a lead search for one category and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, st, err := initPipeline(ctx, runRules)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summary, err := p.Run(ctx, runCategory, runLocation, runLimit)
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("run_id", summary.RunID),
			zap.String("status", string(summary.Status)),
			zap.Int("results", summary.Counts.Results),
			zap.Int("qualified", summary.Counts.Qualified),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}

		if summary.Status == model.RunStatusFailed {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCategory, "category", "", "business category to search (required)")
	runCmd.Flags().StringVar(&runLocation, "location", "", "location to search in (required)")
	runCmd.Flags().IntVar(&runLimit, "limit", 20, "max results to request")
	runCmd.Flags().StringVar(&runRules, "rules", "", "path to a YAML scoring rules override file")
	_ = runCmd.MarkFlagRequired("category")
	_ = runCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(runCmd)
}

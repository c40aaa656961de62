package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/demosite"
)

var demoCmd = &cobra.Command{
	Use:   "demo <business-id>",
	Short: "Generate a static demo website for a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = cfg.Demo.OutputDir
		}

		gen := demosite.NewGenerator(st, outputDir)
		demo, err := gen.Generate(ctx, args[0])
		if err != nil {
			return err
		}

		zap.L().Info("demo generated",
			zap.String("business_id", demo.BusinessID),
			zap.String("template", demo.Template),
			zap.String("path", demo.LocalPath),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(demo)
	},
}

var demoListCmd = &cobra.Command{
	Use:   "list <business-id>",
	Short: "List demos generated for a business",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		demos, err := st.ListDemos(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(demos)
	},
}

func init() {
	demoCmd.Flags().String("output-dir", "", "directory for generated sites (default from config)")
	demoCmd.AddCommand(demoListCmd)
	rootCmd.AddCommand(demoCmd)
}

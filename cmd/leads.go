package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/export"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List and export qualified leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		category, _ := cmd.Flags().GetString("category")
		location, _ := cmd.Flags().GetString("location")
		minScore, _ := cmd.Flags().GetInt("min-score")
		presence, _ := cmd.Flags().GetString("presence")
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		filter := store.LeadFilter{
			Category:    category,
			Location:    location,
			MinScore:    minScore,
			WebPresence: model.WebPresence(presence),
			Limit:       limit,
		}
		if !all {
			qualified := true
			filter.Qualified = &qualified
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		switch format {
		case "table":
			if len(leads) == 0 {
				fmt.Fprintln(os.Stderr, "No leads found.")
				return nil
			}
			formatLeadsTable(os.Stdout, leads)
			return nil
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(leads)
		case "xlsx":
			if output == "" {
				output = "leads.xlsx"
			}
			if err := export.WriteLeads(output, leads); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %d leads to %s\n", len(leads), output)
			return nil
		default:
			return eris.Errorf("unknown format %q (want table, json, or xlsx)", format)
		}
	},
}

func init() {
	leadsCmd.Flags().String("category", "", "filter by category")
	leadsCmd.Flags().String("location", "", "filter by location")
	leadsCmd.Flags().Int("min-score", 0, "minimum lead score")
	leadsCmd.Flags().String("presence", "", "filter by web presence (none, social_only, has_website)")
	leadsCmd.Flags().Int("limit", 100, "max leads to return")
	leadsCmd.Flags().Bool("all", false, "include unqualified businesses")
	leadsCmd.Flags().String("format", "table", "output format (table, json, xlsx)")
	leadsCmd.Flags().String("output", "", "output path for xlsx format")
	rootCmd.AddCommand(leadsCmd)
}

func formatLeadsTable(out io.Writer, leads []model.Business) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tLOCATION\tRATING\tREVIEWS\tPRESENCE\tSCORE")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t--------\t------\t-------\t--------\t-----")

	for _, b := range leads {
		rating := "-"
		if b.HasRating() {
			rating = fmt.Sprintf("%.1f", b.RatingValue())
		}
		reviews := "-"
		if b.HasReviewCount() {
			reviews = fmt.Sprintf("%d", b.ReviewCountValue())
		}

		name := b.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			truncateID(b.ID),
			name,
			b.Category,
			b.Location,
			rating,
			reviews,
			b.WebPresence,
			b.LeadScore,
		)
	}
	_ = w.Flush()
}

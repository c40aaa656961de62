package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/outreach"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Track contact attempts against leads",
}

var outreachLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a new contact attempt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		businessID, _ := cmd.Flags().GetString("business")
		method, _ := cmd.Flags().GetString("method")
		notes, _ := cmd.Flags().GetString("notes")

		tracker := outreach.NewTracker(st)
		o, err := tracker.LogContact(ctx, businessID, model.OutreachMethod(method), notes)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	},
}

var outreachRespondCmd = &cobra.Command{
	Use:   "respond <outreach-id>",
	Short: "Record a response to a contact attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		notes, _ := cmd.Flags().GetString("notes")

		tracker := outreach.NewTracker(st)
		if err := tracker.RecordResponse(ctx, args[0], model.OutreachStatus(status), notes); err != nil {
			return err
		}

		zap.L().Info("response recorded",
			zap.String("outreach_id", args[0]),
			zap.String("status", status),
		)
		return nil
	},
}

var outreachHistoryCmd = &cobra.Command{
	Use:   "history <business-id>",
	Short: "Show contact history for a business",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		tracker := outreach.NewTracker(st)
		attempts, err := tracker.History(ctx, args[0])
		if err != nil {
			return err
		}

		if len(attempts) == 0 {
			fmt.Fprintln(os.Stderr, "No outreach recorded.")
			return nil
		}

		formatOutreachTable(os.Stdout, attempts)
		return nil
	},
}

var outreachFollowupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "List attempts awaiting a callback or unanswered for too long",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		staleDays, _ := cmd.Flags().GetInt("stale-days")

		tracker := outreach.NewTracker(st)
		callbacks, err := tracker.PendingFollowups(ctx)
		if err != nil {
			return err
		}
		stale, err := tracker.Unanswered(ctx, time.Duration(staleDays)*24*time.Hour)
		if err != nil {
			return err
		}

		if len(callbacks) == 0 && len(stale) == 0 {
			fmt.Fprintln(os.Stderr, "Nothing to follow up on.")
			return nil
		}

		if len(callbacks) > 0 {
			fmt.Println("Callbacks requested:")
			formatOutreachTable(os.Stdout, callbacks)
		}
		if len(stale) > 0 {
			fmt.Printf("Unanswered for %d+ days:\n", staleDays)
			formatOutreachTable(os.Stdout, stale)
		}
		return nil
	},
}

func init() {
	outreachLogCmd.Flags().String("business", "", "business ID (required)")
	outreachLogCmd.Flags().String("method", "", "contact method: email, phone, whatsapp, in_person (required)")
	outreachLogCmd.Flags().String("notes", "", "free-form notes")
	_ = outreachLogCmd.MarkFlagRequired("business")
	_ = outreachLogCmd.MarkFlagRequired("method")

	outreachRespondCmd.Flags().String("status", "", "response status: interested, not_interested, callback, won, lost (required)")
	outreachRespondCmd.Flags().String("notes", "", "free-form notes")
	_ = outreachRespondCmd.MarkFlagRequired("status")

	outreachFollowupsCmd.Flags().Int("stale-days", 7, "days without a response before an attempt is stale")

	outreachCmd.AddCommand(outreachLogCmd)
	outreachCmd.AddCommand(outreachRespondCmd)
	outreachCmd.AddCommand(outreachHistoryCmd)
	outreachCmd.AddCommand(outreachFollowupsCmd)
	rootCmd.AddCommand(outreachCmd)
}

func formatOutreachTable(out io.Writer, attempts []model.Outreach) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tMETHOD\tSTATUS\tREPLIED\tCONTACTED\tNOTES")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t------\t-------\t---------\t-----")

	for _, o := range attempts {
		notes := o.Notes
		if len(notes) > 40 {
			notes = notes[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			truncateID(o.ID),
			truncateID(o.BusinessID),
			o.Method,
			o.Status,
			o.ResponseReceived,
			o.ContactedAt.Format("2006-01-02 15:04"),
			notes,
		)
	}
	_ = w.Flush()
}

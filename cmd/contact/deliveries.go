package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/suedwestenergie/contact/internal/contact/infrastructure/persistence"
)

var deliveriesLimit int

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "List recent delivery journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled() {
			return errors.New("delivery journal disabled: database.driver is not set")
		}
		database, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		recs, err := persistence.NewDeliveryRepository(database.DB).ListRecent(cmd.Context(), deliveriesLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSUBMISSION\tSINK\tOUTCOME\tDURATION\tDETAIL")
		for _, r := range recs {
			detail := r.ExternalID
			if r.Error != "" {
				detail = r.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Local().Format(time.DateTime), r.SubmissionID, r.Sink, r.Outcome,
				r.Duration.Round(time.Millisecond), detail)
		}
		return w.Flush()
	},
}

func init() {
	deliveriesCmd.Flags().IntVarP(&deliveriesLimit, "limit", "n", 20, "number of entries")
}

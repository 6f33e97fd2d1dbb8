package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suedwestenergie/contact/internal/contact/infrastructure/ninox"
)

var recordCmd = &cobra.Command{
	Use:   "record <id>",
	Short: "Fetch a contact record from Ninox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := ninox.NewClient(cfg.Ninox).GetRecord(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

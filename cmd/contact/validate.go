package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suedwestenergie/contact/internal/contact/domain"
)

var validateInput struct {
	name, email, company, message string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a submission with the same rules as the form endpoint",
	Example: `  contact validate --name "Anna" --email anna@firma.de --company "Firma GmbH" \
    --message "Bitte um Rückruf"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := domain.Validate(validateInput.name, validateInput.email, validateInput.company, validateInput.message)
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(cmd.OutOrStdout(), "invalid (%s): %s\n", verr.Field, verr.Message)
			return errors.New("validation failed")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateInput.name, "name", "", "contact name")
	f.StringVar(&validateInput.email, "email", "", "contact email")
	f.StringVar(&validateInput.company, "company", "", "company name")
	f.StringVar(&validateInput.message, "message", "", "message text")
}

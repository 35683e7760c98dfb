package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/submit"
)

// submitCommand creates the submit command for checking photo submissions.
func (c *CLI) submitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <form.json | ->",
		Short: "Validate and accept a photo submission",
		Long: `Validate and accept a photo submission.

The form is JSON with name, email, optional phone, company, vehicle and
message, and one to ten photo file names. Every failed field is listed.
Pass - to read the form from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSubmit(cmd, args[0])
		},
	}
}

func (c *CLI) runSubmit(cmd *cobra.Command, input string) error {
	var r io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open %s: %w", input, err)
		}
		defer f.Close()
		r = f
	}

	desk, err := submit.NewDesk(submit.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	form, err := desk.Decode(r)
	if err == nil {
		var receipt submit.Receipt
		if receipt, err = desk.Accept(cmd.Context(), form); err == nil {
			printSuccess("%s", receipt.Message)
			printKeyValue("Receipt", receipt.ID.String())
			printKeyValue("Photos", fmt.Sprint(receipt.Photos))
			printKeyValue("Received", receipt.ReceivedAt.Format("2006-01-02 15:04 MST"))
			return nil
		}
	}

	var ve *submit.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	printError("Submission rejected")
	for _, f := range ve.Fields {
		field := f.Field
		if field == "" {
			field = "form"
		}
		printDetail("%s: %s", field, f.Message)
	}
	return fmt.Errorf("%d invalid field(s)", len(ve.Fields))
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/plandeck/internal/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document against the content schema",
		Long: `Check a document against the offer content schema.
Without a file or --token the default built-in template is checked.

Example:
  plandeck validate offer.json
  plandeck validate --token "$TOKEN" --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.File = args[0]
			}
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}

			f := opts.formatter(cmd)
			err = schema.Validate(d)
			if err == nil {
				return f.Success("✓ document valid")
			}

			var ve *schema.ValidationError
			if !errors.As(err, &ve) {
				return WrapExitError(ExitCommandError, "validation could not run", err)
			}
			if f.Format == "json" {
				_ = f.Error("E_SCHEMA", "document does not match the content schema", ve.Issues)
			} else {
				fmt.Fprintln(f.Writer, "✗ document does not match the content schema")
				for _, issue := range ve.Issues {
					fmt.Fprintf(f.Writer, "  %s\n", issue)
				}
			}
			return WrapExitError(ExitFailure, "validation failed", err)
		},
	}
	opts.bind(cmd, false)
	return cmd
}

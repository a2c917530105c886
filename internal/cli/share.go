package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/share"
)

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a document as a share token",
		Long: `Encode a JSON document into the compact token carried by share links.
Reads the file argument, or stdin when it is "-" or omitted with --doc -.

Example:
  plandeck encode offer.json
  plandeck encode offer.json --emit url`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.File = args[0]
			}
			if opts.Emit == EmitDocument {
				opts.Emit = EmitToken
			}
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return opts.emit(cmd, d)
		},
	}
	cmd.Flags().StringVar(&opts.File, "doc", "", `read the document from a JSON file ("-" for stdin)`)
	cmd.Flags().StringVar(&opts.Emit, "emit", EmitToken, "output form (token|url)")
	return cmd
}

// DecodeResult is the JSON payload of the decode command.
type DecodeResult struct {
	Token    string  `json:"token"`
	Document doc.Raw `json:"document"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <token|url>",
		Short: "Decode a share token or share link",
		Long: `Decode the document carried by a share token or share link.

Example:
  plandeck decode 'http://localhost:5173/?data=N4Ig...'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			token := tokenOf(args[0], cfg.ShareParam)
			d, err := share.Decode(token)
			if err != nil {
				if f := rootOpts.formatter(cmd); f.Format == "json" {
					_ = f.Error("E_DECODE", err.Error(), nil)
				}
				return WrapExitError(ExitFailure, "failed to decode token", err)
			}

			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(DecodeResult{Token: token, Document: doc.Raw{Value: d}})
			}
			return f.Success(d)
		},
	}
	return cmd
}

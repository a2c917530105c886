package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/docstore"
	"github.com/roach88/plandeck/internal/session"
	"github.com/roach88/plandeck/internal/share"
	"github.com/roach88/plandeck/internal/templates"
)

// Emit modes for commands that produce a document.
const (
	EmitDocument = "doc"
	EmitToken    = "token"
	EmitURL      = "url"
)

// DocumentOptions holds the input and output flags shared by the
// document commands.
type DocumentOptions struct {
	*RootOptions
	File  string // JSON file, "-" for stdin
	Token string // share token or share link
	Emit  string
}

func (o *DocumentOptions) bind(cmd *cobra.Command, emit bool) {
	cmd.Flags().StringVar(&o.File, "doc", "", `read the document from a JSON file ("-" for stdin)`)
	cmd.Flags().StringVar(&o.Token, "token", "", "read the document from a share token or share link")
	if emit {
		cmd.Flags().StringVar(&o.Emit, "emit", EmitDocument, "output form (doc|token|url)")
	}
}

// load returns the input document. Without --doc or --token it is the
// default built-in template.
func (o *DocumentOptions) load(cmd *cobra.Command) (doc.Value, error) {
	switch {
	case o.File != "" && o.Token != "":
		return nil, NewExitError(ExitCommandError, "--doc and --token are mutually exclusive")

	case o.File != "":
		data, err := readInput(cmd, o.File)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read document", err)
		}
		d, err := doc.Parse(data)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid document JSON", err)
		}
		return d, nil

	case o.Token != "":
		cfg, err := o.Config()
		if err != nil {
			return nil, err
		}
		d, err := share.Decode(tokenOf(o.Token, cfg.ShareParam))
		if err != nil {
			return nil, WrapExitError(ExitFailure, "failed to decode token", err)
		}
		return d, nil

	default:
		builtins, err := templates.Catalog()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load templates", err)
		}
		return builtins[0].Document, nil
	}
}

// emit writes the result document in the requested form.
func (o *DocumentOptions) emit(cmd *cobra.Command, d doc.Value) error {
	f := o.formatter(cmd)
	switch o.Emit {
	case "", EmitDocument:
		return f.Success(d)
	case EmitToken, EmitURL:
		token, err := share.Encode(d)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to encode document", err)
		}
		if o.Emit == EmitToken {
			return f.Success(token)
		}
		cfg, err := o.Config()
		if err != nil {
			return err
		}
		address, err := share.WithToken(cfg.BaseURL, token, cfg.ShareParam)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid base URL", err)
		}
		return f.Success(address)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --emit %q: must be doc, token or url", o.Emit))
	}
}

// tokenOf accepts a bare token or a link carrying one.
func tokenOf(s, param string) string {
	if strings.Contains(s, "://") {
		if token, ok := share.TokenFrom(s, param); ok {
			return token
		}
	}
	return s
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

// parseValue reads a command-line value as JSON, falling back to a plain
// string so Hebrew text needs no quoting.
func parseValue(s string) doc.Value {
	v, err := doc.Parse([]byte(s))
	if err != nil {
		return doc.String(s)
	}
	return v
}

// pathError maps document store failures to an exit error.
func pathError(err error) error {
	var pe *docpath.Error
	if errors.As(err, &pe) {
		code := ExitFailure
		if pe.Code == docpath.ErrCodeMalformedPath {
			code = ExitCommandError
		}
		return WrapExitError(code, string(pe.Code), err)
	}
	if errors.Is(err, docstore.ErrInvalidValue) {
		return WrapExitError(ExitCommandError, "INVALID_VALUE", err)
	}
	return WrapExitError(ExitFailure, "edit failed", err)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Read a value from a document",
		Long: `Read the value at a path such as "hero.title" or "plans[0].packages[1]".

Example:
  plandeck get 'plans[0].price' --token "$TOKEN"
  plandeck get hero --doc offer.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}
			v, err := docstore.GetExpr(d, args[0])
			if err != nil {
				return pathError(err)
			}
			return opts.formatter(cmd).Success(v)
		},
	}
	opts.bind(cmd, false)
	return cmd
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}
	var create bool

	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Replace a value in a document",
		Long: `Replace the value at a path. The value is parsed as JSON; anything that
is not valid JSON is stored as a string.

The path must already exist unless --create is given, in which case a
missing final key is added.

Example:
  plandeck set hero.title 'הצעת מחיר חדשה' --emit url
  plandeck set 'plans[0].popular' true --create --doc offer.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}
			write := docstore.SetExpr
			if create {
				write = docstore.PutExpr
			}
			next, err := write(d, args[0], parseValue(args[1]))
			if err != nil {
				return pathError(err)
			}
			return opts.emit(cmd, next)
		},
	}
	opts.bind(cmd, true)
	cmd.Flags().BoolVar(&create, "create", false, "create the final key if it is missing")
	return cmd
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <path> [value]",
		Short: "Append an item to an array",
		Long: `Append a value to the array at a path. Without a value the default
new item is appended.

Example:
  plandeck add 'plans[0].features' 'ליווי אישי'`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}
			var v doc.Value = session.DefaultItem
			if len(args) == 2 {
				v = parseValue(args[1])
			}
			next, err := docstore.InsertItemExpr(d, args[0], v)
			if err != nil {
				return pathError(err)
			}
			return opts.emit(cmd, next)
		},
	}
	opts.bind(cmd, true)
	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove <path> <index>",
		Short: "Remove an item from an array",
		Long: `Remove the element at index from the array at a path.

Example:
  plandeck remove 'plans[0].features' 2 --emit token`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid index", err)
			}
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}
			next, err := docstore.RemoveItemExpr(d, args[0], index)
			if err != nil {
				return pathError(err)
			}
			return opts.emit(cmd, next)
		},
	}
	opts.bind(cmd, true)
	return cmd
}

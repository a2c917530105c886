package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/templates"
)

// TemplateInfo is the listing entry of a template.
type TemplateInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Origin string `json:"origin"`
}

// TemplateList is the JSON payload of templates list.
type TemplateList struct {
	Revision  int64          `json:"revision"`
	Degraded  bool           `json:"degraded,omitempty"`
	Templates []TemplateInfo `json:"templates"`
}

// TemplateDetail is the JSON payload of templates show and save.
type TemplateDetail struct {
	TemplateInfo
	Document doc.Raw `json:"document"`
}

func detailOf(t templates.Template) TemplateDetail {
	return TemplateDetail{
		TemplateInfo: TemplateInfo{ID: t.ID, Name: t.Name, Origin: t.Origin.String()},
		Document:     doc.Raw{Value: t.Document},
	}
}

// templateError maps registry failures to an exit error.
func templateError(msg string, err error) error {
	var pe *templates.PersistError
	switch {
	case errors.Is(err, templates.ErrTemplateNotFound),
		errors.Is(err, templates.ErrBuiltinTemplate),
		errors.Is(err, templates.ErrEmptyName):
		return WrapExitError(ExitFailure, msg, err)
	case errors.As(err, &pe):
		return WrapExitError(ExitFailure, "template kept in memory only", err)
	default:
		return WrapExitError(ExitCommandError, msg, err)
	}
}

// NewTemplatesCommand creates the templates command group.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage offer templates",
		Long: `List, show, save and delete offer templates.

Built-in templates ship with plandeck and cannot be deleted. User-defined
templates are stored in the SQLite database (--db).`,
	}

	cmd.AddCommand(newTemplatesListCommand(rootOpts))
	cmd.AddCommand(newTemplatesShowCommand(rootOpts))
	cmd.AddCommand(newTemplatesSaveCommand(rootOpts))
	cmd.AddCommand(newTemplatesDeleteCommand(rootOpts))
	return cmd
}

func newTemplatesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List templates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd.Context(), cfg, rootOpts.Logger(cmd))
			if err != nil {
				return err
			}
			defer ws.Close()

			list := TemplateList{Revision: ws.Revision(cmd.Context()), Degraded: ws.registry.Degraded()}
			for _, t := range ws.registry.List() {
				list.Templates = append(list.Templates, TemplateInfo{ID: t.ID, Name: t.Name, Origin: t.Origin.String()})
			}

			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(list)
			}
			tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tORIGIN")
			for _, t := range list.Templates {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Origin)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(f.Writer, "\n%d template(s), slot revision %d\n", len(list.Templates), list.Revision)
			if list.Degraded {
				fmt.Fprintln(f.Writer, "⚠ template storage unavailable, showing built-ins only")
			}
			return nil
		},
	}
}

func newTemplatesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Print a template's document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd.Context(), cfg, rootOpts.Logger(cmd))
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := ws.registry.Get(args[0])
			if err != nil {
				return templateError("failed to show template", err)
			}
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(detailOf(t))
			}
			return f.Success(t.Document)
		},
	}
}

func newTemplatesSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a document as a user-defined template",
		Long: `Save a document as a user-defined template.

Example:
  plandeck templates save 'חבילת חתונה' --token "$TOKEN"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.load(cmd)
			if err != nil {
				return err
			}
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd.Context(), cfg, rootOpts.Logger(cmd))
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := ws.registry.SaveAsTemplate(cmd.Context(), args[0], d)
			if err != nil {
				return templateError("failed to save template", err)
			}
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(detailOf(t))
			}
			return f.Success(fmt.Sprintf("✓ saved template %s (%s)", t.ID, t.Name))
		},
	}
	opts.bind(cmd, false)
	return cmd
}

func newTemplatesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a user-defined template",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd.Context(), cfg, rootOpts.Logger(cmd))
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.registry.Delete(cmd.Context(), args[0]); err != nil {
				return templateError("failed to delete template", err)
			}
			return rootOpts.formatter(cmd).Success(fmt.Sprintf("✓ deleted template %s", args[0]))
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/docstore"
	"github.com/roach88/plandeck/internal/engine"
	"github.com/roach88/plandeck/internal/session"
	"github.com/roach88/plandeck/internal/templates"
)

const replHelp = `Commands:
  toggle                      switch between viewing and editing
  mode                        show the current mode
  doc                         print the document
  get <path>                  print the value at path
  set <path> <value>          replace an existing value
  fill <path> <value>         set a value, creating the final key
  add <path> [value]          append to an array
  remove <path> <index>       remove an array element
  save                        encode the document into a share link
  dirty                       report unsaved changes
  offer <plan> [package]      show the name and price of a selection
  templates                   list templates
  load <id>                   replace the document with a template
  save-template <name>        save the document as a template
  delete-template <id>        delete a user-defined template
  help                        show this help
  quit                        leave the session
Values are JSON; anything else is taken as text.`

var errQuit = errors.New("quit")

// OfferReply is the result of the offer command.
type OfferReply struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// SaveReply is the JSON form of a save result.
type SaveReply struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Address string `json:"address,omitempty"`
	Message string `json:"message"`
}

// word splits off the first space-separated word of s.
func word(s string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	return first, strings.TrimSpace(rest)
}

// parseLine turns one input line into an engine command. It returns
// errQuit for quit and a usage error for malformed lines.
func parseLine(line string) (engine.Command, error) {
	verb, rest := word(line)
	cmd := engine.Command{Name: verb}

	needPath := func() (docpath.Path, string, error) {
		expr, tail := word(rest)
		if expr == "" {
			return nil, "", fmt.Errorf("usage: %s <path> ...", verb)
		}
		p, err := docpath.Parse(expr)
		return p, tail, err
	}

	switch verb {
	case "quit", "exit":
		return cmd, errQuit

	case "help":
		cmd.Run = func(context.Context, *session.Session) (any, error) { return replHelp, nil }

	case "toggle":
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.ToggleEditMode(), nil }

	case "mode":
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.Mode(), nil }

	case "doc":
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.Document(), nil }

	case "dirty":
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.Dirty(), nil }

	case "get":
		p, _, err := needPath()
		if err != nil {
			return cmd, err
		}
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.Get(p) }

	case "set", "fill":
		p, value, err := needPath()
		if err != nil {
			return cmd, err
		}
		if value == "" {
			return cmd, fmt.Errorf("usage: %s <path> <value>", verb)
		}
		var ev session.Event = session.EditText{Path: p, Value: parseValue(value)}
		if verb == "fill" {
			ev = session.FillField{Path: p, Value: parseValue(value)}
		}
		cmd.Run = applyThenGet(ev, p)

	case "add":
		p, value, err := needPath()
		if err != nil {
			return cmd, err
		}
		ev := session.AddItem{Path: p}
		if value != "" {
			ev.Value = parseValue(value)
		}
		cmd.Run = applyThenGet(ev, p)

	case "remove":
		p, tail, err := needPath()
		if err != nil {
			return cmd, err
		}
		index, err := strconv.Atoi(tail)
		if err != nil {
			return cmd, fmt.Errorf("usage: remove <path> <index>")
		}
		cmd.Run = applyThenGet(session.RemoveItem{Path: p, Index: index}, p)

	case "save":
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) {
			res := s.Save()
			if res.Status == session.SaveFailed {
				return res, fmt.Errorf("%s: %w", res.Message(), res.Err)
			}
			return res, nil
		}

	case "offer":
		planArg, pkgArg := word(rest)
		plan, err := strconv.Atoi(planArg)
		if err != nil {
			return cmd, fmt.Errorf("usage: offer <plan> [package]")
		}
		sel := session.Selection{PlanIndex: plan}
		if pkgArg != "" {
			pkg, err := strconv.Atoi(pkgArg)
			if err != nil {
				return cmd, fmt.Errorf("usage: offer <plan> [package]")
			}
			sel.PackageIndex = &pkg
		}
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) {
			name, price, err := s.Offer(sel)
			if err != nil {
				return nil, err
			}
			return OfferReply{Name: name, Price: price}, nil
		}

	case "templates":
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.Templates(), nil }

	case "load":
		if rest == "" {
			return cmd, fmt.Errorf("usage: load <id>")
		}
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) {
			if err := s.LoadTemplate(rest); err != nil {
				return nil, err
			}
			return s.Document(), nil
		}

	case "save-template":
		cmd.Run = func(ctx context.Context, s *session.Session) (any, error) {
			return s.SaveAsTemplate(ctx, rest)
		}

	case "delete-template":
		if rest == "" {
			return cmd, fmt.Errorf("usage: delete-template <id>")
		}
		cmd.Run = func(ctx context.Context, s *session.Session) (any, error) {
			return nil, s.DeleteTemplate(ctx, rest)
		}

	default:
		return cmd, fmt.Errorf("unknown command %q (try help)", verb)
	}
	return cmd, nil
}

// applyThenGet applies ev and returns the value now at p.
func applyThenGet(ev session.Event, p docpath.Path) func(context.Context, *session.Session) (any, error) {
	return func(_ context.Context, s *session.Session) (any, error) {
		if err := s.Apply(ev); err != nil {
			return nil, err
		}
		return s.Get(p)
	}
}

// reply writes a command result through the formatter.
func reply(f *OutputFormatter, v any) error {
	switch val := v.(type) {
	case nil:
		return f.Success("ok")
	case session.Mode:
		return f.Success(val.String())
	case session.SaveResult:
		r := SaveReply{Status: val.Status.String(), Token: val.Token, Address: val.Address, Message: val.Message()}
		if f.Format == "json" {
			return f.Success(r)
		}
		return f.Success(r.Message + "\n" + r.Address)
	case templates.Template:
		if f.Format == "json" {
			return f.Success(TemplateInfo{ID: val.ID, Name: val.Name, Origin: val.Origin.String()})
		}
		return f.Success(fmt.Sprintf("✓ saved template %s (%s)", val.ID, val.Name))
	case []templates.Template:
		infos := make([]TemplateInfo, len(val))
		for i, t := range val {
			infos[i] = TemplateInfo{ID: t.ID, Name: t.Name, Origin: t.Origin.String()}
		}
		if f.Format == "json" {
			return f.Success(infos)
		}
		tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
		for _, t := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Origin)
		}
		return tw.Flush()
	case OfferReply:
		if f.Format == "json" {
			return f.Success(val)
		}
		return f.Success(val.Name + ": " + val.Price)
	case doc.Value:
		return f.Success(val)
	default:
		return f.Success(val)
	}
}

// replyError writes a command failure through the formatter.
func replyError(f *OutputFormatter, err error) error {
	var pe *docpath.Error
	var ce *engine.CommandError
	code := "E_COMMAND"
	switch {
	case errors.As(err, &pe):
		code = string(pe.Code)
	case errors.Is(err, session.ErrReadOnly):
		code = "E_READ_ONLY"
	case errors.Is(err, docstore.ErrInvalidValue):
		code = "E_INVALID_VALUE"
	case errors.Is(err, templates.ErrBuiltinTemplate):
		code = "E_BUILTIN"
	case errors.Is(err, templates.ErrTemplateNotFound):
		code = "E_NOT_FOUND"
	case engine.IsPanic(err):
		code = "E_PANIC"
	}
	msg := err.Error()
	if errors.As(err, &ce) {
		msg = ce.Err.Error()
	}
	return f.Error(code, msg, nil)
}

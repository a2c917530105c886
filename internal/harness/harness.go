package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/docstore"
	"github.com/roach88/plandeck/internal/engine"
	"github.com/roach88/plandeck/internal/session"
	"github.com/roach88/plandeck/internal/share"
	"github.com/roach88/plandeck/internal/store"
	"github.com/roach88/plandeck/internal/templates"
	"github.com/roach88/plandeck/internal/testutil"
)

// EntryBase is the address scenario documents are linked from.
const EntryBase = "https://offers.example/"

// Outcome codes for failures that are not path errors.
const (
	CodeReadOnly         = "READ_ONLY"
	CodeBuiltinTemplate  = "BUILTIN_TEMPLATE"
	CodeTemplateNotFound = "TEMPLATE_NOT_FOUND"
	CodeEmptyName        = "EMPTY_NAME"
	CodeInvalidValue     = "INVALID_VALUE"
	CodeError            = "ERROR"
)

// Harness holds the live pieces of one scenario run.
type Harness struct {
	store     *store.Store
	registry  *templates.Registry
	session   *session.Session
	engine    *engine.Engine
	logger    *slog.Logger
	lastToken string // token of the last successful save
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database, preloading the templates slot
// 2. Open the registry and a session on the entry link
// 3. Submit each step to the engine loop and record its outcome
// 4. Stop the loop, evaluate assertions and build the snapshot
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if scenario.StoredTemplates != "" {
		if err := st.Set(ctx, templates.DefaultStorageKey, scenario.StoredTemplates); err != nil {
			return nil, fmt.Errorf("failed to preload templates: %w", err)
		}
	}

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	opts := []templates.Option{
		templates.WithLogger(h.logger),
		templates.WithIDGenerator(testutil.NewSequentialIDs("")),
	}
	if len(scenario.Builtins) > 0 {
		builtins, err := builtinTemplates(scenario.Builtins)
		if err != nil {
			return nil, err
		}
		opts = append(opts, templates.WithBuiltins(builtins))
	}
	h.registry, err = templates.New(ctx, st, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	entry, err := entryAddress(scenario)
	if err != nil {
		return nil, err
	}
	h.session, err = session.New(session.Options{
		Registry:     h.registry,
		EntryAddress: entry,
		Strict:       scenario.Strict,
		Platform:     &session.MemoryPlatform{},
		Now:          testutil.NewClock(testutil.DefaultStart).Now,
		Logger:       h.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	// The loop has stopped; the session is read directly from here on.
	for _, errMsg := range EvaluateAssertions(ctx, h, scenario.Assertions) {
		result.AddError(errMsg)
	}

	result.Snapshot, err = h.snapshot(scenario.Name, result.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	return result, nil
}

func builtinTemplates(bs []BuiltinTemplate) ([]templates.Template, error) {
	out := make([]templates.Template, len(bs))
	for i, b := range bs {
		d, err := doc.FromAny(b.Content)
		if err != nil {
			return nil, fmt.Errorf("builtins[%d]: %w", i, err)
		}
		out[i] = templates.Template{ID: b.ID, Name: b.Name, Document: d}
	}
	return out, nil
}

// entryAddress links the scenario document, or returns the raw entry.
func entryAddress(s *Scenario) (string, error) {
	if s.Document == nil {
		if s.Entry != "" {
			return s.Entry, nil
		}
		return EntryBase, nil
	}
	d, err := doc.FromAny(s.Document)
	if err != nil {
		return "", fmt.Errorf("invalid document: %w", err)
	}
	token, err := share.Encode(d)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return share.WithToken(EntryBase, token, "")
}

// executeSteps runs every step through the engine loop, one at a time.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	h.engine = engine.New(h.session, engine.WithLogger(h.logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	for i, step := range steps {
		cmd, err := h.command(step)
		if err != nil {
			h.engine.Stop()
			<-done
			return fmt.Errorf("step %d: %w", i, err)
		}
		reply, err := h.engine.Submit(cmd)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		res := <-reply

		rec := StepRecord{Seq: res.Seq, Op: step.Op, Outcome: OutcomeOK}
		if res.Err != nil {
			rec.Outcome = outcomeCode(res.Err)
		} else if v, ok := res.Value.(doc.Value); ok {
			rec.Value = v
		}
		result.Steps = append(result.Steps, rec)

		switch {
		case step.ExpectError == "" && res.Err != nil:
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Op, res.Err))
		case step.ExpectError != "" && rec.Outcome != step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s", i, step.Op, step.ExpectError, rec.Outcome))
		}
	}

	h.engine.Stop()
	return <-done
}

// command builds the engine command for a step. Results that should
// appear in the snapshot are returned as doc values.
func (h *Harness) command(step Step) (engine.Command, error) {
	cmd := engine.Command{Name: step.Op}

	var p docpath.Path
	var pathErr error
	if step.Path != "" {
		p, pathErr = docpath.Parse(step.Path)
	}
	var value doc.Value
	if step.Value != nil {
		var err error
		if value, err = doc.FromAny(step.Value); err != nil {
			return cmd, fmt.Errorf("value: %w", err)
		}
	}

	apply := func(ev session.Event) func(context.Context, *session.Session) (any, error) {
		return func(_ context.Context, s *session.Session) (any, error) { return nil, s.Apply(ev) }
	}

	switch step.Op {
	case OpToggle:
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) {
			return doc.String(s.ToggleEditMode().String()), nil
		}
	case OpGet:
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return s.Get(p) }
	case OpSet:
		cmd.Run = apply(session.EditText{Path: p, Value: value})
	case OpFill:
		cmd.Run = apply(session.FillField{Path: p, Value: value})
	case OpAdd:
		cmd.Run = apply(session.AddItem{Path: p, Value: value})
	case OpRemove:
		cmd.Run = apply(session.RemoveItem{Path: p, Index: step.Index})
	case OpSave:
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) {
			res := s.Save()
			if res.Status == session.SaveFailed {
				return nil, res.Err
			}
			h.lastToken = res.Token
			return doc.String(res.Status.String()), nil
		}
	case OpLoad:
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) { return nil, s.LoadTemplate(step.ID) }
	case OpSaveTemplate:
		cmd.Run = func(ctx context.Context, s *session.Session) (any, error) {
			t, err := s.SaveAsTemplate(ctx, step.Name)
			if err != nil {
				return nil, err
			}
			return doc.String(t.ID), nil
		}
	case OpDeleteTemplate:
		cmd.Run = func(ctx context.Context, s *session.Session) (any, error) { return nil, s.DeleteTemplate(ctx, step.ID) }
	case OpOffer:
		sel := session.Selection{PlanIndex: step.Plan, PackageIndex: step.Package}
		cmd.Run = func(_ context.Context, s *session.Session) (any, error) {
			name, price, err := s.Offer(sel)
			if err != nil {
				return nil, err
			}
			return doc.NewObject(doc.O("name", doc.String(name)), doc.O("price", doc.String(price))), nil
		}
	default:
		return cmd, fmt.Errorf("unknown op %q", step.Op)
	}

	// A malformed path is an outcome like any other path error.
	if pathErr != nil {
		cmd.Run = func(context.Context, *session.Session) (any, error) { return nil, pathErr }
	}
	return cmd, nil
}

// outcomeCode names a step failure.
func outcomeCode(err error) string {
	var pe *docpath.Error
	switch {
	case errors.As(err, &pe):
		return string(pe.Code)
	case errors.Is(err, session.ErrReadOnly):
		return CodeReadOnly
	case errors.Is(err, docstore.ErrInvalidValue):
		return CodeInvalidValue
	case errors.Is(err, templates.ErrBuiltinTemplate):
		return CodeBuiltinTemplate
	case errors.Is(err, templates.ErrTemplateNotFound):
		return CodeTemplateNotFound
	case errors.Is(err, templates.ErrEmptyName):
		return CodeEmptyName
	default:
		return CodeError
	}
}

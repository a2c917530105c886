package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/share"
	"github.com/roach88/plandeck/internal/templates"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final session
// state and returns the failure messages. Must only be called once the
// engine loop has stopped.
func EvaluateAssertions(ctx context.Context, h *Harness, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(ctx, h, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(ctx context.Context, h *Harness, a Assertion) error {
	switch a.Type {
	case AssertValue:
		return assertValue(h, a)
	case AssertMode:
		if got := h.session.Mode().String(); got != a.Mode {
			return &AssertionError{Type: a.Type, Expected: a.Mode, Actual: got}
		}
	case AssertSource:
		if got := string(h.session.Source()); got != a.Source {
			return &AssertionError{Type: a.Type, Expected: a.Source, Actual: got}
		}
	case AssertClean:
		if h.session.Dirty() {
			return &AssertionError{Type: a.Type, Expected: "no unsaved changes", Actual: "dirty"}
		}
	case AssertDirty:
		if !h.session.Dirty() {
			return &AssertionError{Type: a.Type, Expected: "unsaved changes", Actual: "clean"}
		}
	case AssertTemplateCount:
		if got := len(h.session.Templates()); got != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(got)}
		}
	case AssertSlotRevision:
		rev, err := h.store.Revision(ctx, templates.DefaultStorageKey)
		if err != nil {
			return err
		}
		if rev != int64(a.Count) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(rev)}
		}
	case AssertLinkRoundTrip:
		return assertLinkRoundTrip(h, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

// assertValue checks the value at a path. A missing value field expects
// null.
func assertValue(h *Harness, a Assertion) error {
	p, err := docpath.Parse(a.Path)
	if err != nil {
		return err
	}
	want, err := doc.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("assertion value: %w", err)
	}
	got, err := h.session.Get(p)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: render(want), Actual: err.Error()}
	}
	if !doc.Equal(want, got) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %s", a.Path, render(want)),
			Actual:   render(got),
		}
	}
	return nil
}

// assertLinkRoundTrip checks that the last saved link carries exactly
// the current document.
func assertLinkRoundTrip(h *Harness, a Assertion) error {
	if h.lastToken == "" {
		return &AssertionError{Type: a.Type, Expected: "a saved link", Actual: "nothing saved"}
	}
	if token, ok := share.TokenFrom(h.session.Address(), ""); !ok || token != h.lastToken {
		return &AssertionError{Type: a.Type, Expected: "session address carries the saved token", Actual: h.session.Address()}
	}
	decoded, err := share.Decode(h.lastToken)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: "a decodable token", Actual: err.Error()}
	}
	if current := h.session.Document(); !doc.Equal(decoded, current) {
		return &AssertionError{Type: a.Type, Expected: render(current), Actual: render(decoded)}
	}
	return nil
}

func render(v doc.Value) string {
	b, err := doc.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

// Package schema checks documents against the offer page content schema.
//
// The schema is written in CUE and embedded in the binary. Validation is
// advisory: document operations never consult it. It backs the validate
// command and the strict option for shared links.
package schema

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/plandeck/internal/doc"
)

//go:embed content.cue
var contentCUE []byte

const definition = "#Content"

// Issue is one schema violation.
type Issue struct {
	// Path locates the offending value, e.g. "plans[0].price".
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "document does not match schema: " + strings.Join(parts, "; ")
}

// A cue.Context is not safe for concurrent use.
var (
	mu      sync.Mutex
	cuectx  *cue.Context
	content cue.Value
	loadErr error
	once    sync.Once
)

func load() {
	cuectx = cuecontext.New()
	v := cuectx.CompileBytes(contentCUE, cue.Filename("content.cue"))
	if err := v.Err(); err != nil {
		loadErr = fmt.Errorf("compile content schema: %w", err)
		return
	}
	content = v.LookupPath(cue.ParsePath(definition))
	if !content.Exists() {
		loadErr = fmt.Errorf("content schema: %s not defined", definition)
	}
}

// Validate unifies d with the content schema. It returns nil when d
// conforms, a *ValidationError listing the violations otherwise.
func Validate(d doc.Value) error {
	text, err := doc.MarshalCanonical(d)
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	once.Do(load)
	if loadErr != nil {
		return loadErr
	}

	// JSON is valid CUE, and integers stay integers this way.
	data := cuectx.CompileBytes(text, cue.Filename("document.json"))
	if err := data.Err(); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	unified := content.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) *ValidationError {
	ve := &ValidationError{}
	seen := make(map[string]bool)
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		issue := Issue{Path: formatPath(e.Path()), Message: fmt.Sprintf(format, args...)}
		if seen[issue.String()] {
			continue
		}
		seen[issue.String()] = true
		ve.Issues = append(ve.Issues, issue)
	}
	if len(ve.Issues) == 0 {
		ve.Issues = []Issue{{Message: err.Error()}}
	}
	return ve
}

// formatPath renders CUE path elements in path expression syntax,
// dropping the schema definition name.
func formatPath(elems []string) string {
	if len(elems) > 0 && elems[0] == definition {
		elems = elems[1:]
	}

	var b strings.Builder
	for _, el := range elems {
		if _, err := strconv.Atoi(el); err == nil {
			b.WriteString("[" + el + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(el)
	}
	return b.String()
}

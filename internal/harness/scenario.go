package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the initial document. It is encoded into the entry
	// link, so the session opens it the way a recipient would.
	Document any `yaml:"document,omitempty"`

	// Entry is a raw entry address, used instead of Document to open
	// a session on an arbitrary (possibly corrupt) link.
	Entry string `yaml:"entry,omitempty"`

	// Strict enables content schema checking of the entry link.
	Strict bool `yaml:"strict,omitempty"`

	// Builtins replaces the built-in catalog. The first is the default.
	Builtins []BuiltinTemplate `yaml:"builtins,omitempty"`

	// StoredTemplates is written to the templates slot before the
	// registry starts, as raw text.
	StoredTemplates string `yaml:"stored_templates,omitempty"`

	// Steps are the UI operations, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final session state.
	Assertions []Assertion `yaml:"assertions"`
}

// BuiltinTemplate is a catalog entry declared by a scenario.
type BuiltinTemplate struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Content any    `yaml:"content"`
}

// Step is one UI operation.
type Step struct {
	// Op is the operation; see the Op constants.
	Op string `yaml:"op"`

	Path    string `yaml:"path,omitempty"`
	Value   any    `yaml:"value,omitempty"`
	Index   int    `yaml:"index,omitempty"`
	ID      string `yaml:"id,omitempty"`
	Name    string `yaml:"name,omitempty"`
	Plan    int    `yaml:"plan,omitempty"`
	Package *int   `yaml:"package,omitempty"`

	// ExpectError is the outcome code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpToggle         = "toggle"
	OpGet            = "get"
	OpSet            = "set"
	OpFill           = "fill"
	OpAdd            = "add"
	OpRemove         = "remove"
	OpSave           = "save"
	OpLoad           = "load"
	OpSaveTemplate   = "save_template"
	OpDeleteTemplate = "delete_template"
	OpOffer          = "offer"
)

var validOps = []string{
	OpToggle, OpGet, OpSet, OpFill, OpAdd, OpRemove, OpSave,
	OpLoad, OpSaveTemplate, OpDeleteTemplate, OpOffer,
}

// Assertion validates the final session state.
type Assertion struct {
	// Type specifies the assertion type; see the Assert constants.
	Type string `yaml:"type"`

	// Path and Value are used by value.
	Path  string `yaml:"path,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Mode is used by mode ("viewing" or "editing").
	Mode string `yaml:"mode,omitempty"`

	// Source is used by source ("link" or "template").
	Source string `yaml:"source,omitempty"`

	// Count is used by template_count and slot_revision.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertValue         = "value"
	AssertMode          = "mode"
	AssertSource        = "source"
	AssertClean         = "clean"
	AssertDirty         = "dirty"
	AssertTemplateCount = "template_count"
	AssertSlotRevision  = "slot_revision"
	AssertLinkRoundTrip = "link_roundtrip"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Discover returns every scenario file under root matching pattern
// (e.g. "**/*.yaml"), in lexical order.
func Discover(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discover scenarios: %w", err)
	}
	slices.Sort(matches)
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Document != nil && s.Entry != "" {
		return fmt.Errorf("document and entry are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, b := range s.Builtins {
		if b.ID == "" || b.Content == nil {
			return fmt.Errorf("builtins[%d]: id and content are required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s Step) error {
	if !slices.Contains(validOps, s.Op) {
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	switch s.Op {
	case OpGet, OpAdd, OpRemove:
		if s.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for %s", index, s.Op)
		}
	case OpSet, OpFill:
		if s.Path == "" || s.Value == nil {
			return fmt.Errorf("steps[%d]: path and value are required for %s", index, s.Op)
		}
	case OpLoad, OpDeleteTemplate:
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", index, s.Op)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertValue:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for value", index)
		}
	case AssertMode:
		if a.Mode != "viewing" && a.Mode != "editing" {
			return fmt.Errorf("assertions[%d]: mode must be viewing or editing", index)
		}
	case AssertSource:
		if a.Source == "" {
			return fmt.Errorf("assertions[%d]: source is required", index)
		}
	case AssertClean, AssertDirty, AssertTemplateCount, AssertSlotRevision, AssertLinkRoundTrip:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

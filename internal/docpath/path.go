package docpath

import (
	"strconv"
	"strings"
)

// Step is one access step of a Path. Only FieldStep and IndexStep implement it.
type Step interface {
	step() // Sealed
	String() string
}

// FieldStep descends into an object key.
type FieldStep struct {
	Name string
}

func (FieldStep) step() {}

func (s FieldStep) String() string { return s.Name }

// IndexStep descends into an array position.
type IndexStep struct {
	Index int
}

func (IndexStep) step() {}

func (s IndexStep) String() string { return "[" + strconv.Itoa(s.Index) + "]" }

// Field is shorthand for FieldStep{Name: name}.
func Field(name string) FieldStep { return FieldStep{Name: name} }

// Index is shorthand for IndexStep{Index: i}.
func Index(i int) IndexStep { return IndexStep{Index: i} }

// Path is a non-empty, ordered sequence of steps.
type Path []Step

// String renders the path in expression form.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		switch st := s.(type) {
		case FieldStep:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(st.Name)
		case IndexStep:
			b.WriteString(st.String())
		}
	}
	return b.String()
}

// Append returns a new path with steps added. p is not modified.
func (p Path) Append(steps ...Step) Path {
	out := make(Path, 0, len(p)+len(steps))
	out = append(out, p...)
	return append(out, steps...)
}

// Parent returns the path without its final step, and that step.
// The parent of a single-step path is empty.
func (p Path) Parent() (Path, Step) {
	if len(p) == 0 {
		return nil, nil
	}
	return p[:len(p)-1], p[len(p)-1]
}

// Parse converts a path expression into steps.
// Returns a MALFORMED_PATH *Error for an empty identifier, an unterminated
// bracket, or an index that is not a non-negative decimal integer.
func Parse(expr string) (Path, error) {
	if expr == "" {
		return nil, newMalformed(expr, "empty path")
	}

	var path Path
	for _, segment := range strings.Split(expr, ".") {
		steps, err := parseSegment(expr, segment)
		if err != nil {
			return nil, err
		}
		path = append(path, steps...)
	}
	return path, nil
}

// MustParse is like Parse but panics on error.
// Intended for literal paths in catalogs and tests.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(expr, segment string) ([]Step, error) {
	open := strings.IndexAny(segment, "[]")
	ident := segment
	if open >= 0 {
		ident = segment[:open]
	}
	if ident == "" {
		return nil, newMalformed(expr, "empty identifier in segment %q", segment)
	}

	steps := []Step{Field(ident)}
	rest := segment[len(ident):]
	for rest != "" {
		if rest[0] != '[' {
			return nil, newMalformed(expr, "unexpected %q after index in segment %q", rest[0], segment)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, newMalformed(expr, "unterminated bracket in segment %q", segment)
		}
		idx, err := parseIndex(rest[1:end])
		if err != nil {
			return nil, newMalformed(expr, "index %q in segment %q: %v", rest[1:end], segment, err)
		}
		steps = append(steps, Index(idx))
		rest = rest[end+1:]
	}
	return steps, nil
}

// parseIndex accepts decimal digits only: no sign, no spaces.
func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, errEmptyIndex
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errNotInteger
		}
	}
	return strconv.Atoi(s)
}

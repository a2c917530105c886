package templates

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/roach88/plandeck/internal/doc"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Templates []catalogEntry `yaml:"templates"`
}

type catalogEntry struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Content any    `yaml:"content"`
}

var loadCatalog = sync.OnceValues(func() ([]Template, error) {
	return parseCatalog(catalogYAML)
})

// Catalog returns the built-in templates in display order.
func Catalog() ([]Template, error) {
	builtins, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return cloneAll(builtins), nil
}

func parseCatalog(data []byte) ([]Template, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Templates))
	out := make([]Template, 0, len(f.Templates))
	for i, e := range f.Templates {
		if e.ID == "" {
			return nil, fmt.Errorf("template catalog entry %d: missing id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("template catalog entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true

		content, err := doc.FromAny(e.Content)
		if err != nil {
			return nil, fmt.Errorf("template catalog entry %q: %w", e.ID, err)
		}
		out = append(out, Template{ID: e.ID, Name: e.Name, Document: content, Origin: Builtin})
	}
	return out, nil
}

package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/plandeck/internal/doc"
)

// DefaultStorageKey is the slot holding user-defined templates. It matches
// the key used by the web page's local storage.
const DefaultStorageKey = "shiberplans_custom_templates"

// IDPrefix starts every user-defined template id.
const IDPrefix = "custom-"

// Storage is a single-value keyed slot store.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// record is the persisted form of a user-defined template.
type record struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Content  doc.Raw `json:"content"`
	IsCustom bool    `json:"isCustom"`
}

// Registry is the set of templates available to a session.
type Registry struct {
	storage  Storage
	key      string
	ids      IDGenerator
	logger   *slog.Logger
	builtins []Template
	custom   []Template
	degraded bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(r *Registry) { r.key = key }
}

// WithIDGenerator overrides the UUIDv7 id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Registry) { r.ids = g }
}

// WithBuiltins replaces the embedded catalog.
func WithBuiltins(ts []Template) Option {
	return func(r *Registry) { r.builtins = cloneAll(ts) }
}

// New builds a registry from the built-in catalog and the user-defined
// templates found in storage. storage may be nil, in which case nothing is
// persisted.
//
// Reading or parsing the stored set never fails New: the problem is logged
// and the registry starts with built-ins only.
func New(ctx context.Context, storage Storage, opts ...Option) (*Registry, error) {
	r := &Registry{
		storage: storage,
		key:     DefaultStorageKey,
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.builtins == nil {
		builtins, err := Catalog()
		if err != nil {
			return nil, err
		}
		r.builtins = builtins
	}
	if err := checkBuiltins(r.builtins); err != nil {
		return nil, err
	}
	for i := range r.builtins {
		r.builtins[i].Origin = Builtin
	}

	r.restore(ctx)
	return r, nil
}

// checkBuiltins applies the catalog rules to a replacement built-in set.
func checkBuiltins(ts []Template) error {
	seen := make(map[string]bool, len(ts))
	for i, t := range ts {
		if t.ID == "" {
			return fmt.Errorf("built-in template %d: missing id", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("built-in template %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		if err := doc.Validate(t.Document); err != nil {
			return fmt.Errorf("built-in template %q: %w", t.ID, err)
		}
	}
	return nil
}

// restore reads the stored user-defined set once.
func (r *Registry) restore(ctx context.Context) {
	if r.storage == nil {
		return
	}

	raw, ok, err := r.storage.Get(ctx, r.key)
	if err != nil {
		r.degraded = true
		r.logger.Warn("template storage unavailable, using built-ins only",
			"key", r.key, "error", err)
		return
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}

	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		r.logger.Error("failed to load templates, using built-ins only",
			"key", r.key, "error", err)
		return
	}

	for i, rec := range records {
		switch {
		case rec.ID == "":
			r.logger.Warn("skipping stored template without id", "index", i)
			continue
		case r.find(rec.ID) >= 0:
			r.logger.Warn("skipping stored template with duplicate id", "id", rec.ID)
			continue
		case rec.Content.Value == nil:
			r.logger.Warn("skipping stored template without content", "id", rec.ID)
			continue
		}
		r.custom = append(r.custom, Template{
			ID:       rec.ID,
			Name:     rec.Name,
			Document: rec.Content.Value,
			Origin:   UserDefined,
		})
	}

	r.logger.Debug("templates loaded",
		"builtin", len(r.builtins), "user", len(r.custom))
}

// List returns all templates: built-ins in catalog order, then user-defined
// ones in creation order. The result is a deep copy.
func (r *Registry) List() []Template {
	return append(cloneAll(r.builtins), cloneAll(r.custom)...)
}

// Default returns the first built-in template.
func (r *Registry) Default() (Template, error) {
	if len(r.builtins) == 0 {
		return Template{}, fmt.Errorf("default template: %w", ErrTemplateNotFound)
	}
	return r.builtins[0].Clone(), nil
}

// Get returns a copy of the template with the given id.
func (r *Registry) Get(id string) (Template, error) {
	i := r.find(id)
	if i < 0 {
		return Template{}, fmt.Errorf("template %q: %w", id, ErrTemplateNotFound)
	}
	return r.at(i).Clone(), nil
}

// Load returns a copy of the template's document. The caller replaces its
// current document with it wholesale.
func (r *Registry) Load(id string) (doc.Value, error) {
	t, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return t.Document, nil
}

// SaveAsTemplate adds a user-defined template holding a deep copy of
// current and persists the user-defined set.
//
// On a storage failure the template is kept in memory and returned together
// with a *PersistError.
func (r *Registry) SaveAsTemplate(ctx context.Context, name string, current doc.Value) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, ErrEmptyName
	}
	if err := doc.Validate(current); err != nil {
		return Template{}, fmt.Errorf("save template %q: %w", name, err)
	}

	id := IDPrefix + r.ids.Generate()
	if r.find(id) >= 0 {
		return Template{}, fmt.Errorf("save template %q: id %q already in use", name, id)
	}

	t := Template{ID: id, Name: name, Document: doc.Clone(current), Origin: UserDefined}
	r.custom = append(r.custom, t)
	r.logger.Info("template saved", "id", id, "name", name)

	return t.Clone(), r.persist(ctx)
}

// Delete removes a user-defined template and persists the remaining set.
// Built-in templates are rejected with ErrBuiltinTemplate and the registry
// is left unchanged.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if slices.ContainsFunc(r.builtins, func(t Template) bool { return t.ID == id }) {
		return fmt.Errorf("delete template %q: %w", id, ErrBuiltinTemplate)
	}
	i := slices.IndexFunc(r.custom, func(t Template) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("delete template %q: %w", id, ErrTemplateNotFound)
	}

	r.custom = slices.Delete(r.custom, i, i+1)
	r.logger.Info("template deleted", "id", id)
	return r.persist(ctx)
}

// Degraded reports whether storage was unavailable on the last read or
// write. A degraded registry keeps working in memory.
func (r *Registry) Degraded() bool { return r.degraded }

// persist overwrites the storage slot with the full user-defined set.
func (r *Registry) persist(ctx context.Context) error {
	if r.storage == nil {
		return nil
	}

	data, err := r.marshalCustom()
	if err == nil {
		err = r.storage.Set(ctx, r.key, data)
	}
	if err != nil {
		r.degraded = true
		r.logger.Error("failed to persist templates", "key", r.key, "error", err)
		return &PersistError{Key: r.key, Err: err}
	}

	r.degraded = false
	return nil
}

func (r *Registry) marshalCustom() (string, error) {
	records := make([]record, len(r.custom))
	for i, t := range r.custom {
		records[i] = record{ID: t.ID, Name: t.Name, Content: doc.Raw{Value: t.Document}, IsCustom: true}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("marshal templates: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// find returns the position of id across built-ins then user-defined
// templates, or -1.
func (r *Registry) find(id string) int {
	for i, t := range r.builtins {
		if t.ID == id {
			return i
		}
	}
	for i, t := range r.custom {
		if t.ID == id {
			return len(r.builtins) + i
		}
	}
	return -1
}

func (r *Registry) at(i int) Template {
	if i < len(r.builtins) {
		return r.builtins[i]
	}
	return r.custom[i-len(r.builtins)]
}

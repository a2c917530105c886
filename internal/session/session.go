// Package session implements the edit session controller.
//
// A Session owns the current document and the edit mode. UI events are
// applied through the document store while editing; saving encodes the
// document into a share link; template flows go through the registry.
//
// A Session belongs to one logical editor and is not safe for concurrent
// use. The engine package serializes access when input arrives from
// several goroutines.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/docstore"
	"github.com/roach88/plandeck/internal/invoice"
	"github.com/roach88/plandeck/internal/schema"
	"github.com/roach88/plandeck/internal/share"
	"github.com/roach88/plandeck/internal/templates"
)

// Mode is the session's edit state.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrReadOnly is returned for edits attempted while viewing.
var ErrReadOnly = errors.New("document is read-only outside edit mode")

// Source tells where the session's initial document came from.
type Source string

const (
	SourceLink     Source = "link"
	SourceTemplate Source = "template"
)

// Options configures a Session.
type Options struct {
	// Registry is required.
	Registry *templates.Registry

	// EntryAddress is the address the session was opened with. A share
	// token found in it becomes the initial document.
	EntryAddress string

	// Param is the query parameter carrying the token. Default "data".
	Param string

	// Strict rejects shared documents that do not match the content schema.
	Strict bool

	Platform Platform
	Sender   invoice.Sender
	Now      func() time.Time
	Logger   *slog.Logger
}

// Session is the edit session controller.
type Session struct {
	registry *templates.Registry
	platform Platform
	sender   invoice.Sender
	now      func() time.Time
	logger   *slog.Logger
	param    string

	mode     Mode
	document doc.Value
	address  string
	source   Source
	clean    string // digest of the last saved or loaded document
}

// New opens a session. The initial document is the one carried by the
// entry address when present and decodable, the default template
// otherwise. Undecodable links are logged, not returned.
func New(opts Options) (*Session, error) {
	if opts.Registry == nil {
		return nil, errors.New("session: registry is required")
	}

	s := &Session{
		registry: opts.Registry,
		platform: opts.Platform,
		sender:   opts.Sender,
		now:      opts.Now,
		logger:   opts.Logger,
		param:    opts.Param,
		address:  opts.EntryAddress,
	}
	if s.platform == nil {
		s.platform = &MemoryPlatform{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.param == "" {
		s.param = share.DefaultParam
	}

	if d, ok := s.fromLink(opts.EntryAddress, opts.Strict); ok {
		s.document, s.source = d, SourceLink
	} else {
		t, err := s.registry.Default()
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		s.document, s.source = t.Document, SourceTemplate
	}

	s.markClean()
	return s, nil
}

func (s *Session) fromLink(address string, strict bool) (doc.Value, bool) {
	token, ok := share.TokenFrom(address, s.param)
	if !ok {
		return nil, false
	}

	d, err := share.Decode(token)
	if err != nil {
		s.logger.Error("failed to parse content from link, using default", "error", err)
		return nil, false
	}
	if strict {
		if err := schema.Validate(d); err != nil {
			s.logger.Warn("shared content does not match schema, using default", "error", err)
			return nil, false
		}
	}
	return d, true
}

// Mode returns the current edit mode.
func (s *Session) Mode() Mode { return s.mode }

// ToggleEditMode flips between Viewing and Editing and returns the new mode.
func (s *Session) ToggleEditMode() Mode {
	if s.mode == Editing {
		s.mode = Viewing
	} else {
		s.mode = Editing
	}
	s.logger.Debug("edit mode toggled", "mode", s.mode)
	return s.mode
}

// SetMode sets the edit mode explicitly.
func (s *Session) SetMode(m Mode) { s.mode = m }

// Source reports where the initial document came from.
func (s *Session) Source() Source { return s.source }

// Address returns the current externally addressable location.
func (s *Session) Address() string { return s.address }

// Document returns a copy of the current document.
func (s *Session) Document() doc.Value { return doc.Clone(s.document) }

// Get reads the value at p. Reading is allowed in any mode.
func (s *Session) Get(p docpath.Path) (doc.Value, error) {
	return docstore.Get(s.document, p)
}

// Apply runs an edit event against the current document. On failure the
// document is unchanged.
func (s *Session) Apply(ev Event) error {
	if s.mode != Editing {
		return ErrReadOnly
	}

	next, err := ev.apply(s.document)
	if err != nil {
		s.logger.Debug("edit rejected", "event", ev.String(), "error", err)
		return err
	}
	s.document = next
	return nil
}

// Dirty reports whether the document changed since it was last saved or
// loaded.
func (s *Session) Dirty() bool {
	return s.digest() != s.clean
}

func (s *Session) markClean() { s.clean = s.digest() }

func (s *Session) digest() string {
	d, err := doc.Digest(s.document)
	if err != nil {
		// Unserializable documents never compare clean.
		return ""
	}
	return d
}

// Templates lists the available templates.
func (s *Session) Templates() []templates.Template { return s.registry.List() }

// LoadTemplate replaces the current document wholesale with the
// template's snapshot.
func (s *Session) LoadTemplate(id string) error {
	if s.mode != Editing {
		return ErrReadOnly
	}
	d, err := s.registry.Load(id)
	if err != nil {
		return err
	}
	s.document = d
	s.markClean()
	s.logger.Info("template loaded", "id", id)
	return nil
}

// SaveAsTemplate snapshots the current document as a user-defined
// template. A *templates.PersistError means the template exists in memory
// only.
func (s *Session) SaveAsTemplate(ctx context.Context, name string) (templates.Template, error) {
	if s.mode != Editing {
		return templates.Template{}, ErrReadOnly
	}
	return s.registry.SaveAsTemplate(ctx, name, s.document)
}

// DeleteTemplate removes a user-defined template.
func (s *Session) DeleteTemplate(ctx context.Context, id string) error {
	if s.mode != Editing {
		return ErrReadOnly
	}
	return s.registry.Delete(ctx, id)
}

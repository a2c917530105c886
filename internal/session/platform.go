package session

import "sync"

// Platform is the host environment's side-effect surface. Only Save
// touches it.
type Platform interface {
	// UpdateLocation replaces the externally addressable location (the
	// page URL) without a reload.
	UpdateLocation(address string) error

	// CopyToClipboard places text on the clipboard.
	CopyToClipboard(text string) error
}

// MemoryPlatform records side effects in memory.
//
// LocationErr and ClipboardErr, when set, are returned by the
// corresponding call instead of recording it.
type MemoryPlatform struct {
	mu        sync.Mutex
	location  string
	clipboard string

	LocationErr  error
	ClipboardErr error
}

func (p *MemoryPlatform) UpdateLocation(address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.LocationErr != nil {
		return p.LocationErr
	}
	p.location = address
	return nil
}

func (p *MemoryPlatform) CopyToClipboard(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ClipboardErr != nil {
		return p.ClipboardErr
	}
	p.clipboard = text
	return nil
}

// Location returns the last address set.
func (p *MemoryPlatform) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// Clipboard returns the last text copied.
func (p *MemoryPlatform) Clipboard() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clipboard
}

package session

import (
	"fmt"

	"github.com/roach88/plandeck/internal/share"
)

// SaveStatus is the outcome of Save.
type SaveStatus int

const (
	// SaveCopied: the location was updated and the address copied.
	SaveCopied SaveStatus = iota
	// SaveLocationOnly: the location was updated but the clipboard was not.
	SaveLocationOnly
	// SaveFailed: nothing was externalized.
	SaveFailed
)

func (s SaveStatus) String() string {
	switch s {
	case SaveCopied:
		return "copied"
	case SaveLocationOnly:
		return "location-only"
	case SaveFailed:
		return "failed"
	default:
		return fmt.Sprintf("SaveStatus(%d)", int(s))
	}
}

// SaveResult reports what Save did.
type SaveResult struct {
	Status  SaveStatus
	Token   string
	Address string
	Err     error
}

// Message is the operator notice for the result.
func (r SaveResult) Message() string {
	switch r.Status {
	case SaveCopied:
		return "הקישור נשמר והועתק ללוח! שלח אותו כדי לשתף את העריכות."
	case SaveLocationOnly:
		return "הקישור נוצר בשורת הכתובת. העתק אותו כדי לשתף."
	default:
		return "שגיאה בשמירת התוכן."
	}
}

// Save encodes the current document into the session address and copies
// the address to the clipboard. It never panics and never changes the
// document; failures are reported in the result.
func (s *Session) Save() (res SaveResult) {
	defer func() {
		if r := recover(); r != nil {
			res = SaveResult{Status: SaveFailed, Err: fmt.Errorf("save: panic: %v", r)}
			s.logger.Error("failed to save content", "error", res.Err)
		}
	}()

	token, err := share.Encode(s.document)
	if err != nil {
		return s.saveFailed(err)
	}
	address, err := share.WithToken(s.address, token, s.param)
	if err != nil {
		return s.saveFailed(err)
	}
	if err := s.platform.UpdateLocation(address); err != nil {
		return s.saveFailed(fmt.Errorf("update location: %w", err))
	}
	s.address = address
	s.markClean()

	res = SaveResult{Status: SaveCopied, Token: token, Address: address}
	if err := s.platform.CopyToClipboard(address); err != nil {
		s.logger.Warn("failed to copy address", "error", err)
		res.Status, res.Err = SaveLocationOnly, err
	}
	s.logger.Info("content saved", "status", res.Status, "token_len", len(token))
	return res
}

func (s *Session) saveFailed(err error) SaveResult {
	s.logger.Error("failed to save content", "error", err)
	return SaveResult{Status: SaveFailed, Err: err}
}

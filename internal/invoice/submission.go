// Package invoice builds and delivers offer confirmations.
//
// A Submission carries what the client confirmed: the selected offer, its
// price, contact details and a hand-drawn signature as an image data URL.
// Render produces the RTL HTML invoice; a Sender delivers it. Delivery is
// attempted once and never retried.
package invoice

import (
	"errors"
	"strings"
	"time"
)

// DateLayout renders dates the way the he-IL locale does, e.g.
// "1.3.2025, 9:00:00".
const DateLayout = "2.1.2006, 15:04:05"

var (
	ErrMissingClientName = errors.New("client name is required")
	ErrMissingSignature  = errors.New("signature is required")
	ErrMissingOffer      = errors.New("no offer selected")
)

// Submission is one confirmed offer.
type Submission struct {
	ClientName  string
	ContactName string
	Phone       string
	Email       string
	OfferName   string
	Price       string

	// SignatureImage is an image data URL, opaque to this package except
	// for the media type check in Render.
	SignatureImage string

	Date time.Time
}

// Validate reports every missing required field.
func (s Submission) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ClientName) == "" {
		errs = append(errs, ErrMissingClientName)
	}
	if strings.TrimSpace(s.SignatureImage) == "" {
		errs = append(errs, ErrMissingSignature)
	}
	if strings.TrimSpace(s.OfferName) == "" {
		errs = append(errs, ErrMissingOffer)
	}
	return errors.Join(errs...)
}

// FormattedDate returns Date in DateLayout.
func (s Submission) FormattedDate() string {
	return s.Date.Format(DateLayout)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/docstore"
	"github.com/roach88/plandeck/internal/invoice"
)

// ErrNoSender is returned by SubmitOffer when the session has no sender.
var ErrNoSender = errors.New("no invoice sender configured")

// Selection picks a plan, or one package of a plan.
type Selection struct {
	PlanIndex    int
	PackageIndex *int
}

// Signer is what the client fills in when confirming an offer.
type Signer struct {
	ClientName     string
	ContactName    string
	Phone          string
	Email          string
	SignatureImage string
}

// Offer resolves the display name and price of a selection from the
// current document. A package selection is named "<plan> - <package>" and
// priced by the package label.
func (s *Session) Offer(sel Selection) (name, price string, err error) {
	plan := docpath.Path{docpath.Field("plans"), docpath.Index(sel.PlanIndex)}

	planName, err := docstore.Get(s.document, plan.Append(docpath.Field("name")))
	if err != nil {
		return "", "", err
	}
	name = text(planName)

	if sel.PackageIndex == nil {
		planPrice, err := docstore.Get(s.document, plan.Append(docpath.Field("price")))
		if err != nil {
			return "", "", err
		}
		return name, text(planPrice), nil
	}

	pkg, err := docstore.Get(s.document, plan.Append(docpath.Field("packages"), docpath.Index(*sel.PackageIndex)))
	if err != nil {
		return "", "", err
	}
	return name + " - " + text(pkg), text(pkg), nil
}

// SubmitOffer confirms a selection: it builds and validates the
// submission, renders the invoice and makes one delivery attempt. The
// document is never modified. The returned submission is populated
// whenever the selection resolved, even if delivery failed.
func (s *Session) SubmitOffer(ctx context.Context, sel Selection, signer Signer) (invoice.Submission, error) {
	name, price, err := s.Offer(sel)
	if err != nil {
		return invoice.Submission{}, fmt.Errorf("resolve offer: %w", err)
	}

	sub := invoice.Submission{
		ClientName:     signer.ClientName,
		ContactName:    signer.ContactName,
		Phone:          signer.Phone,
		Email:          signer.Email,
		OfferName:      name,
		Price:          price,
		SignatureImage: signer.SignatureImage,
		Date:           s.now(),
	}
	if err := sub.Validate(); err != nil {
		return sub, err
	}
	if s.sender == nil {
		return sub, ErrNoSender
	}

	html, err := invoice.Render(sub)
	if err != nil {
		return sub, err
	}
	if err := s.sender.Send(ctx, sub, html); err != nil {
		s.logger.Error("failed to send offer", "offer", name, "error", err)
		return sub, err
	}
	s.logger.Info("offer submitted", "offer", name, "client", sub.ClientName)
	return sub, nil
}

// text renders a scalar for display.
func text(v doc.Value) string {
	switch val := v.(type) {
	case doc.String:
		return string(val)
	case doc.Number:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case doc.Null:
		return ""
	default:
		b, err := doc.MarshalCanonical(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/invoice"
)

type recordingSender struct {
	calls []invoice.Submission
	html  []string
	err   error
}

func (r *recordingSender) Send(_ context.Context, sub invoice.Submission, html string) error {
	r.calls = append(r.calls, sub)
	r.html = append(r.html, html)
	return r.err
}

const signature = "data:image/jpeg;base64,/9j/4AAQ"

func intPtr(i int) *int { return &i }

func TestOffer(t *testing.T) {
	s := newFixture(t, nil).session

	name, price, err := s.Offer(Selection{PlanIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, "בסיסי", name)
	assert.Equal(t, "₪2,500", price)

	name, price, err = s.Offer(Selection{PlanIndex: 1, PackageIndex: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, "מקצועי - שנתי", name)
	assert.Equal(t, "שנתי", price)

	_, _, err = s.Offer(Selection{PlanIndex: 9})
	assert.True(t, docpath.IsOutOfRange(err))

	_, _, err = s.Offer(Selection{PlanIndex: 2, PackageIndex: intPtr(0)})
	assert.True(t, docpath.IsNotFound(err), "add-on plan has no packages")
}

func TestOffer_NumericPrice(t *testing.T) {
	s := newFixture(t, nil).session
	s.SetMode(Editing)
	require.NoError(t, s.Apply(EditText{Path: path(t, "plans[0].price"), Value: doc.Number(2500)}))

	_, price, err := s.Offer(Selection{PlanIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, "2500", price)
}

func TestSubmitOffer(t *testing.T) {
	f := newFixture(t, nil)
	before := f.session.Document()

	sub, err := f.session.SubmitOffer(context.Background(),
		Selection{PlanIndex: 1, PackageIndex: intPtr(0)},
		Signer{ClientName: "ישראל", Phone: "050", SignatureImage: signature})
	require.NoError(t, err)

	require.Len(t, f.sender.calls, 1)
	assert.Equal(t, sub, f.sender.calls[0])
	assert.Equal(t, "מקצועי - חודשי", sub.OfferName)
	assert.Equal(t, "חודשי", sub.Price)
	assert.Equal(t, "1.3.2025, 9:00:00", sub.FormattedDate())
	assert.Contains(t, f.sender.html[0], "מקצועי - חודשי")
	assert.Contains(t, f.sender.html[0], signature)

	assert.True(t, doc.Equal(before, f.session.Document()))
}

func TestSubmitOffer_RequiresNameAndSignature(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.session.SubmitOffer(context.Background(), Selection{PlanIndex: 0}, Signer{ClientName: " "})
	assert.ErrorIs(t, err, invoice.ErrMissingClientName)
	assert.ErrorIs(t, err, invoice.ErrMissingSignature)
	assert.Empty(t, f.sender.calls)
}

func TestSubmitOffer_DeliveryFailureIsReportedOnce(t *testing.T) {
	f := newFixture(t, nil)
	f.sender.err = &invoice.SendError{Status: http.StatusBadGateway}
	before := f.session.Document()

	sub, err := f.session.SubmitOffer(context.Background(), Selection{PlanIndex: 0},
		Signer{ClientName: "ישראל", SignatureImage: signature})

	var se *invoice.SendError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "בסיסי", sub.OfferName)
	assert.Len(t, f.sender.calls, 1, "no retry")
	assert.True(t, doc.Equal(before, f.session.Document()))
}

func TestSubmitOffer_NoSender(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Sender = nil })

	_, err := f.session.SubmitOffer(context.Background(), Selection{PlanIndex: 0},
		Signer{ClientName: "ישראל", SignatureImage: signature})
	assert.ErrorIs(t, err, ErrNoSender)
}

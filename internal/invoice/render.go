package invoice

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed invoice.html.tmpl
var invoiceTemplate string

var tmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// Default branding used by Render.
const (
	DefaultBrand   = "Amit Shiber - Video Production"
	DefaultProduct = "ShiberPlans"
)

// Signature data URLs accepted in the rendered invoice.
var signaturePrefixes = []string{
	"data:image/png;base64,",
	"data:image/jpeg;base64,",
}

type view struct {
	Brand       string
	Product     string
	ClientName  string
	ContactName string
	Phone       string
	Email       string
	OfferName   string
	Price       string
	Date        string
	Signature   template.URL
}

// Render produces the HTML invoice for sub. All text is escaped. The
// signature is embedded only when it is a PNG or JPEG data URL; anything
// else is left out of the document.
func Render(sub Submission) (string, error) {
	v := view{
		Brand:       DefaultBrand,
		Product:     DefaultProduct,
		ClientName:  sub.ClientName,
		ContactName: sub.ContactName,
		Phone:       sub.Phone,
		Email:       sub.Email,
		OfferName:   sub.OfferName,
		Price:       sub.Price,
		Date:        sub.FormattedDate(),
	}
	if safeSignature(sub.SignatureImage) {
		v.Signature = template.URL(sub.SignatureImage)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

func safeSignature(s string) bool {
	for _, p := range signaturePrefixes {
		if strings.HasPrefix(s, p) && !strings.ContainsAny(s[len(p):], "\"'<> ") {
			return true
		}
	}
	return false
}

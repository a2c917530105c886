package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/invoice"
	"github.com/roach88/plandeck/internal/session"
	"github.com/roach88/plandeck/internal/share"
	"github.com/roach88/plandeck/internal/templates"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	URL       string
	Token     string
	Plan      int
	Package   int
	Signer    session.Signer
	Signature string
	DryRun    bool
}

// SubmitReply is the JSON payload of the submit command.
type SubmitReply struct {
	Offer  string `json:"offer"`
	Price  string `json:"price"`
	Client string `json:"client"`
	Date   string `json:"date"`
	Sent   bool   `json:"sent"`
}

// previewSender writes the rendered invoice instead of delivering it.
type previewSender struct {
	w io.Writer
}

func (p previewSender) Send(_ context.Context, _ invoice.Submission, html string) error {
	_, err := fmt.Fprintln(p.w, html)
	return err
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a signed offer confirmation",
		Long: `Confirm a plan, or one package of a plan, and send the invoice by email.

The document must come from a share link (--url) or its token (--token).
The signature is an image data URL, or @file to read a PNG or JPEG file.
Email delivery uses the EmailJS keys from the configuration. With
--dry-run the invoice HTML is printed instead.

Example:
  plandeck submit --url "$LINK" --plan 1 --package 2 \
    --client 'חברת דוגמה' --signature @signature.png`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "share link carrying the document")
	cmd.Flags().StringVar(&opts.Token, "token", "", "share token carrying the document")
	cmd.Flags().IntVar(&opts.Plan, "plan", 0, "plan index")
	cmd.Flags().IntVar(&opts.Package, "package", -1, "package index within the plan (-1 for the whole plan)")
	cmd.Flags().StringVar(&opts.Signer.ClientName, "client", "", "client name (required)")
	cmd.Flags().StringVar(&opts.Signer.ContactName, "contact", "", "contact person")
	cmd.Flags().StringVar(&opts.Signer.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&opts.Signer.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&opts.Signature, "signature", "", "signature data URL or @file (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the invoice instead of sending it")

	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	logger := opts.Logger(cmd)
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	address, err := opts.entryAddress(cfg.BaseURL, cfg.ShareParam)
	if err != nil {
		return err
	}

	signature, err := readSignature(opts.Signature)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read signature", err)
	}
	signer := opts.Signer
	signer.SignatureImage = signature

	var sender invoice.Sender = previewSender{w: cmd.OutOrStdout()}
	if !opts.DryRun {
		sender = emailSender(cfg, logger)
		if sender == nil {
			return WrapExitError(ExitCommandError, "email is not configured", invoice.ErrNotConfigured)
		}
	}

	// Submitting never touches stored templates.
	reg, err := templates.New(cmd.Context(), nil, templates.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load templates", err)
	}
	sess, err := session.New(session.Options{
		Registry:     reg,
		EntryAddress: address,
		Param:        cfg.ShareParam,
		Strict:       cfg.Strict,
		Sender:       sender,
		Logger:       logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open session", err)
	}
	if sess.Source() != session.SourceLink {
		return NewExitError(ExitFailure, "the link does not carry a valid document")
	}

	sel := session.Selection{PlanIndex: opts.Plan}
	if opts.Package >= 0 {
		sel.PackageIndex = &opts.Package
	}

	sub, err := sess.SubmitOffer(cmd.Context(), sel, signer)
	if err != nil {
		var se *invoice.SendError
		var pe *docpath.Error
		switch {
		case errors.As(err, &se):
			return WrapExitError(ExitFailure, "email provider refused the offer", err)
		case errors.As(err, &pe):
			return pathError(err)
		default:
			return WrapExitError(ExitFailure, "failed to submit offer", err)
		}
	}

	if opts.DryRun {
		return nil
	}
	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(SubmitReply{
			Offer: sub.OfferName, Price: sub.Price, Client: sub.ClientName,
			Date: sub.FormattedDate(), Sent: true,
		})
	}
	return f.Success(fmt.Sprintf("✓ sent %s (%s) for %s", sub.OfferName, sub.Price, sub.ClientName))
}

// entryAddress returns the session address from --url, or a link built
// around --token. Exactly one of them is required.
func (o *SubmitOptions) entryAddress(base, param string) (string, error) {
	switch {
	case o.URL != "" && o.Token != "":
		return "", NewExitError(ExitCommandError, "--url and --token are mutually exclusive")
	case o.URL != "":
		return o.URL, nil
	case o.Token != "":
		address, err := share.WithToken(base, tokenOf(o.Token, param), param)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "invalid base URL", err)
		}
		return address, nil
	default:
		return "", NewExitError(ExitCommandError, "a shared document is required: pass --url or --token")
	}
}

// readSignature returns s, or for "@file" the file as an image data URL.
func readSignature(s string) (string, error) {
	name, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	mediaType := http.DetectContentType(data)
	if mediaType != "image/png" && mediaType != "image/jpeg" {
		return "", fmt.Errorf("%s: expected a PNG or JPEG image, got %s", name, mediaType)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

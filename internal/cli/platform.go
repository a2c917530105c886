package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/roach88/plandeck/internal/config"
	"github.com/roach88/plandeck/internal/invoice"
)

var errNoClipboard = errors.New("clipboard not available (use --osc52)")

// terminalPlatform is the session platform of the CLI. The session keeps
// the address and the REPL prints it; the clipboard is reached through
// the OSC 52 terminal escape when enabled.
type terminalPlatform struct {
	term  io.Writer
	osc52 bool
}

func (p *terminalPlatform) UpdateLocation(string) error { return nil }

func (p *terminalPlatform) CopyToClipboard(text string) error {
	if !p.osc52 {
		return errNoClipboard
	}
	_, err := fmt.Fprintf(p.term, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

// emailSender returns the configured EmailJS sender, or nil when the
// email keys are not set.
func emailSender(cfg config.Config, logger *slog.Logger) invoice.Sender {
	if !cfg.Email.Configured() {
		return nil
	}
	return &invoice.EmailJSSender{
		Endpoint:   cfg.Email.Endpoint,
		ServiceID:  cfg.Email.ServiceID,
		TemplateID: cfg.Email.TemplateID,
		PublicKey:  cfg.Email.PublicKey,
		Client:     &http.Client{Timeout: cfg.Email.Timeout},
		Logger:     logger,
	}
}

package notify

import (
	"context"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/config"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// Notifier delivers a Message. Callers treat every error as best-effort.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the driver selected by cfg.Driver.
func New(cfg config.NotifyConfig) (Notifier, error) {
	switch cfg.Driver {
	case "", "log":
		return LogNotifier{}, nil
	case "relay":
		return NewRelay(cfg.RelayBaseURL, cfg.RelayFormID), nil
	case "smtp":
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}

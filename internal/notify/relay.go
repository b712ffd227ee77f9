package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/guonaihong/gout"
)

// Relay posts messages to a form-submission service (Formspree style),
// which forwards them as email.
type Relay struct {
	URL    string
	client *http.Client
}

func NewRelay(baseURL, formID string) *Relay {
	return &Relay{
		URL:    strings.TrimRight(baseURL, "/") + "/" + formID,
		client: &http.Client{},
	}
}

func (r *Relay) Send(ctx context.Context, msg Message) error {
	payload := gout.H{
		"email":    msg.To,
		"_subject": msg.Subject,
		"message":  msg.Body,
	}
	if msg.ReplyTo != "" {
		payload["_replyto"] = msg.ReplyTo
	}

	var code int
	var body string
	err := gout.New(r.client).
		POST(r.URL).
		WithContext(ctx).
		SetHeader(gout.H{"Accept": "application/json"}).
		SetJSON(payload).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("relay responded %d: %s", code, body)
	}
	return nil
}

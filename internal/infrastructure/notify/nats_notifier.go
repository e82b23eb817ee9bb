package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"

	"promette/internal/errs"
	"promette/internal/ports"
)

// NATSNotifier publishes committed transitions to a NATS subject so
// downstream inbox screens can refresh without polling. Callers publish
// after commit and treat failures as log-only.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

var _ ports.TransitionNotifier = (*NATSNotifier)(nil)

func NewNATSNotifier(url string, subject string) (*NATSNotifier, error) {
	trimmedURL := strings.TrimSpace(url)
	if trimmedURL == "" {
		return nil, errors.New("nats url is required")
	}
	trimmedSubject := strings.TrimSpace(subject)
	if trimmedSubject == "" {
		return nil, errors.New("nats subject is required")
	}

	conn, err := nats.Connect(trimmedURL, nats.Name("promette"))
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %q", trimmedURL)
	}

	return &NATSNotifier{conn: conn, subject: trimmedSubject}, nil
}

func (n *NATSNotifier) PublishTransition(ctx context.Context, event ports.TransitionEvent) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal transition event")
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		return errs.Wrap(err, "publish transition event")
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		_ = n.conn.Drain()
	}
}

// Noop is the notifier used when NATS is not configured.
type Noop struct{}

var _ ports.TransitionNotifier = Noop{}

func (Noop) PublishTransition(context.Context, ports.TransitionEvent) error { return nil }

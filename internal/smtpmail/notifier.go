// Package smtpmail implements the dispatch.Notifier interface over a plain
// SMTP session. The session is driven recipient by recipient so the server's
// answer to each RCPT command becomes an individual outcome: a refused CC
// never masks an accepted primary recipient, and vice versa.
package smtpmail

import (
	"context"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"

	"github.com/itassetops/assetnotify/pkg/dispatch"
	"github.com/itassetops/assetnotify/pkg/errors"
)

// Config holds the transport settings.
type Config struct {
	Host   string
	Port   int
	Sender string
}

// Notifier sends messages over SMTP. One Send call is one session; there is
// no connection reuse between recipient groups and no retry.
type Notifier struct {
	config Config
}

// New creates an SMTP Notifier.
func New(config Config) *Notifier {
	return &Notifier{config: config}
}

// Send delivers one message, reporting an outcome per target address.
// Failure to open or hold the session returns a TransportError; the
// dispatcher treats that as fatal for the remaining run.
func (n *Notifier) Send(ctx context.Context, msg dispatch.Message) ([]dispatch.Outcome, error) {
	addr := net.JoinHostPort(n.config.Host, strconv.Itoa(n.config.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.NewTransportError(addr, "dial failed", err)
	}

	client, err := smtp.NewClient(conn, n.config.Host)
	if err != nil {
		conn.Close()
		return nil, errors.NewTransportError(addr, "session handshake failed", err)
	}
	defer client.Close()

	if err := client.Mail(n.config.Sender); err != nil {
		return nil, errors.NewTransportError(addr, "sender rejected", err)
	}

	outcomes := make([]dispatch.Outcome, 0, len(msg.Targets()))
	accepted := 0
	for _, target := range msg.Targets() {
		if err := client.Rcpt(target); err != nil {
			code, detail := smtpStatus(err)
			outcomes = append(outcomes, dispatch.Outcome{
				Recipient: target,
				Code:      code,
				Message:   detail,
			})
			continue
		}
		outcomes = append(outcomes, dispatch.Outcome{Recipient: target, Success: true})
		accepted++
	}

	if accepted == 0 {
		// Every target refused; nothing to write.
		return outcomes, nil
	}

	w, err := client.Data()
	if err != nil {
		return nil, errors.NewTransportError(addr, "DATA rejected", err)
	}
	if _, err := w.Write(render(n.config.Sender, msg)); err != nil {
		w.Close()
		return nil, errors.NewTransportError(addr, "body write failed", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.NewTransportError(addr, "message not accepted", err)
	}

	if err := client.Quit(); err != nil {
		// Delivery already happened; a noisy QUIT is not a failure.
		return outcomes, nil
	}
	return outcomes, nil
}

// smtpStatus extracts the server's status code and text from an RCPT error.
func smtpStatus(err error) (int, string) {
	if te, ok := err.(*textproto.Error); ok {
		return te.Code, te.Msg
	}
	return 0, err.Error()
}

// Package dispatch fans reconciled assets out into per-recipient
// notification batches and drives delivery through an abstract Notifier,
// recording every attempt in an append-only send log. Sends are sequential
// and independent: one refused recipient never blocks the others, while a
// transport-level failure aborts the remaining loop with the partial log
// preserved.
package dispatch

import "context"

// Payload carries the structured table for one notification. Rendering it
// into a mail body is the transport adapter's concern; the core only
// produces data.
type Payload struct {
	Headers []string
	Rows    [][]string
}

// Message is one notification batch addressed to a single logical recipient,
// possibly with additional transport targets (CC/BCC).
type Message struct {
	To      string
	Cc      []string
	Bcc     []string
	Subject string
	Payload Payload

	// Record controls whether outcomes of this message reach the send log.
	// Administrative and self-addressed mail is sent unrecorded.
	Record bool
}

// Targets returns every transport target of the message: To, then Cc, then
// Bcc, with empty addresses skipped.
func (m Message) Targets() []string {
	targets := make([]string, 0, 1+len(m.Cc)+len(m.Bcc))
	for _, addr := range append(append([]string{m.To}, m.Cc...), m.Bcc...) {
		if addr != "" {
			targets = append(targets, addr)
		}
	}
	return targets
}

// Outcome reports delivery for one target address of one message. A single
// transport call yields one Outcome per target: a refusal of the CC address
// is not a failure of the primary recipient, and vice versa.
type Outcome struct {
	Recipient string
	Success   bool
	Code      int
	Message   string
}

// Notifier abstracts the mail transport. Send reports outcomes per
// individual target address. The returned error is reserved for
// transport-level failure (cannot open or hold the session); per-recipient
// refusals are outcomes, not errors.
type Notifier interface {
	Send(ctx context.Context, msg Message) ([]Outcome, error)
}

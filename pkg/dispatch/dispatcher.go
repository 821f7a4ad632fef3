package dispatch

import (
	"context"
	"sort"
	"strings"

	"github.com/itassetops/assetnotify/pkg/errors"
	"github.com/itassetops/assetnotify/pkg/logging"
	"github.com/itassetops/assetnotify/pkg/records"
)

// Config controls dispatch behavior.
type Config struct {
	// Subject line applied to every recipient notification.
	Subject string

	// CC addresses added to every recipient notification.
	CC []string

	// IgnoreAddress is exempt from failure logging even when refused,
	// typically a standing CC mailbox.
	IgnoreAddress string

	// AdminAddress receives a best-effort error notice when the transport
	// fails mid-run. Empty disables the side channel.
	AdminAddress string

	// RecipientColumn names the column carrying the resolved recipient.
	RecipientColumn string

	// PayloadColumns selects which columns appear in the notification
	// table. Empty means every column except the recipient column.
	PayloadColumns []string
}

// Dispatcher groups reconciled rows by recipient and sends one notification
// batch per recipient. Sends are strictly sequential; there is no retry.
type Dispatcher struct {
	notifier Notifier
	log      *SendLog
	config   Config
}

// New creates a Dispatcher writing to the given send log.
func New(notifier Notifier, log *SendLog, config Config) *Dispatcher {
	if config.RecipientColumn == "" {
		config.RecipientColumn = records.DefaultRecipientColumn
	}
	return &Dispatcher{notifier: notifier, log: log, config: config}
}

// Dispatch sends one notification per recipient with assets attributed to
// them. Rows with an empty recipient are skipped. Recipients are attempted
// in sorted order so runs are deterministic; outcomes of different
// recipients are independent. A transport-level failure aborts the remaining
// sends and is returned after a best-effort admin notice; the partial send
// log is preserved.
func (d *Dispatcher) Dispatch(ctx context.Context, rows []records.Record) error {
	logger := logging.FromContext(ctx)

	groups := d.group(rows)
	recipients := make([]string, 0, len(groups))
	for recipient := range groups {
		recipients = append(recipients, recipient)
	}
	sort.Strings(recipients)

	logger.Info().
		Int("recipients", len(recipients)).
		Msg("Dispatching notifications")

	for _, recipient := range recipients {
		msg := Message{
			To:      recipient,
			Cc:      d.config.CC,
			Subject: d.config.Subject,
			Payload: d.payload(groups[recipient]),
			Record:  true,
		}

		logger.Info().
			Str("recipient", recipient).
			Int("assets", len(groups[recipient])).
			Msg("Sending notification")

		outcomes, err := d.notifier.Send(ctx, msg)
		if err != nil {
			logger.Error().Err(err).
				Str("recipient", recipient).
				Msg("Transport failed, aborting remaining sends")
			d.notifyAdmin(ctx, err)
			return errors.WrapTransport("", err)
		}
		d.record(ctx, msg, outcomes)
	}
	return nil
}

// group buckets rows by their recipient column, dropping empty recipients.
func (d *Dispatcher) group(rows []records.Record) map[string][]records.Record {
	groups := make(map[string][]records.Record)
	for _, row := range rows {
		recipient := strings.TrimSpace(row.Get(d.config.RecipientColumn))
		if recipient == "" {
			continue
		}
		groups[recipient] = append(groups[recipient], row)
	}
	return groups
}

// payload renders a recipient's rows as a structured table.
func (d *Dispatcher) payload(rows []records.Record) Payload {
	headers := d.config.PayloadColumns
	if len(headers) == 0 && len(rows) > 0 {
		for _, column := range rows[0].Columns() {
			if column != d.config.RecipientColumn {
				headers = append(headers, column)
			}
		}
	}

	table := Payload{Headers: headers}
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, column := range headers {
			cells[i] = row.Get(column)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// record appends one send log entry per target outcome. Failures of the
// ignore address are suppressed; unrecorded messages log nothing.
func (d *Dispatcher) record(ctx context.Context, msg Message, outcomes []Outcome) {
	logger := logging.FromContext(ctx)

	for _, outcome := range outcomes {
		if outcome.Success {
			logger.Info().
				Str("recipient", outcome.Recipient).
				Msg("Delivery accepted")
		} else if strings.EqualFold(outcome.Recipient, d.config.IgnoreAddress) {
			logger.Warn().
				Str("recipient", outcome.Recipient).
				Msg("Ignore address refused, not logged")
			continue
		} else {
			logger.Error().
				Str("recipient", outcome.Recipient).
				Int("code", outcome.Code).
				Str("detail", outcome.Message).
				Msg("Delivery refused")
		}

		if !msg.Record {
			continue
		}
		d.log.Append(Entry{
			Recipient: outcome.Recipient,
			Subject:   msg.Subject,
			Success:   outcome.Success,
			Code:      outcome.Code,
			Message:   outcome.Message,
		})
	}
}

// SendSummary emails the rendered send log to the admin address, unrecorded,
// so the operator sees every attempt including failures. Nothing is sent
// when no admin address is configured or nothing was attempted.
func (d *Dispatcher) SendSummary(ctx context.Context) error {
	if d.config.AdminAddress == "" || d.log.Len() == 0 {
		return nil
	}

	msg := Message{
		To:      d.config.AdminAddress,
		Subject: d.config.Subject + " - send report",
		Payload: Summary(d.log),
	}
	outcomes, err := d.notifier.Send(ctx, msg)
	if err != nil {
		return errors.WrapTransport("", err)
	}
	for _, outcome := range outcomes {
		if !outcome.Success {
			logging.FromContext(ctx).Warn().
				Str("recipient", outcome.Recipient).
				Int("code", outcome.Code).
				Str("detail", outcome.Message).
				Msg("Send report refused")
		}
	}
	return nil
}

// notifyAdmin sends an unrecorded error notice to the admin address. Best
// effort: a failure here is only logged.
func (d *Dispatcher) notifyAdmin(ctx context.Context, cause error) {
	if d.config.AdminAddress == "" {
		return
	}

	msg := Message{
		To:      d.config.AdminAddress,
		Subject: d.config.Subject + " - dispatch aborted",
		Payload: Payload{
			Headers: []string{"Error"},
			Rows:    [][]string{{cause.Error()}},
		},
	}
	if _, err := d.notifier.Send(ctx, msg); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Admin error notice failed")
	}
}

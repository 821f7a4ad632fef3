package dispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itassetops/assetnotify/pkg/dispatch"
	"github.com/itassetops/assetnotify/pkg/errors"
	"github.com/itassetops/assetnotify/pkg/records"
)

// fakeNotifier scripts per-recipient outcomes and records every message it
// was asked to send.
type fakeNotifier struct {
	refused  map[string]dispatch.Outcome
	failFor  map[string]error
	messages []dispatch.Message
}

func (f *fakeNotifier) Send(_ context.Context, msg dispatch.Message) ([]dispatch.Outcome, error) {
	f.messages = append(f.messages, msg)
	if err, ok := f.failFor[msg.To]; ok {
		return nil, err
	}

	outcomes := make([]dispatch.Outcome, 0, len(msg.Targets()))
	for _, target := range msg.Targets() {
		if outcome, ok := f.refused[target]; ok {
			outcomes = append(outcomes, outcome)
			continue
		}
		outcomes = append(outcomes, dispatch.Outcome{Recipient: target, Success: true})
	}
	return outcomes, nil
}

var dispatchColumns = []string{"SN", "Model", "Notification Email"}

func assetRow(key, model, recipient string) records.Record {
	return records.New(dispatchColumns, map[string]string{
		"SN": key, "Model": model, "Notification Email": recipient,
	})
}

func TestDispatchGroupsByRecipient(t *testing.T) {
	notifier := &fakeNotifier{}
	log := dispatch.NewSendLog()
	d := dispatch.New(notifier, log, dispatch.Config{Subject: "Asset notice"})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "b@co.com"),
		assetRow("A2", "T490", "a@co.com"),
		assetRow("A3", "X1", "b@co.com"),
		assetRow("A4", "X2", ""),
	})
	require.NoError(t, err)

	// One message per recipient, attempted in sorted order, empty skipped.
	require.Len(t, notifier.messages, 2)
	assert.Equal(t, "a@co.com", notifier.messages[0].To)
	assert.Equal(t, "b@co.com", notifier.messages[1].To)
	assert.Len(t, notifier.messages[1].Payload.Rows, 2)

	// Payload excludes the recipient column by default.
	assert.Equal(t, []string{"SN", "Model"}, notifier.messages[0].Payload.Headers)

	assert.Equal(t, 3, log.Len())
	assert.Empty(t, log.Failures())
}

func TestDispatchPartialFailureIsolation(t *testing.T) {
	notifier := &fakeNotifier{
		refused: map[string]dispatch.Outcome{
			"a@co.com": {Recipient: "a@co.com", Success: false, Code: 550, Message: "mailbox unavailable"},
		},
	}
	log := dispatch.NewSendLog()
	d := dispatch.New(notifier, log, dispatch.Config{Subject: "Asset notice"})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
		assetRow("A2", "T490", "b@co.com"),
	})
	require.NoError(t, err)

	// One recipient being refused does not stop the other.
	require.Len(t, notifier.messages, 2)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Success)
	assert.Equal(t, 550, entries[0].Code)
	assert.True(t, entries[1].Success)
}

func TestDispatchIgnoreAddressFailureSuppressed(t *testing.T) {
	notifier := &fakeNotifier{
		refused: map[string]dispatch.Outcome{
			"cc-box@co.com": {Recipient: "cc-box@co.com", Success: false, Code: 550},
		},
	}
	log := dispatch.NewSendLog()
	d := dispatch.New(notifier, log, dispatch.Config{
		Subject:       "Asset notice",
		CC:            []string{"cc-box@co.com"},
		IgnoreAddress: "CC-Box@co.com",
	})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
	})
	require.NoError(t, err)

	// The recipient's success is logged; the ignore address failure is not.
	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@co.com", entries[0].Recipient)
	assert.True(t, entries[0].Success)
}

func TestDispatchIgnoreAddressSuccessStillLogged(t *testing.T) {
	notifier := &fakeNotifier{}
	log := dispatch.NewSendLog()
	d := dispatch.New(notifier, log, dispatch.Config{
		Subject:       "Asset notice",
		CC:            []string{"cc-box@co.com"},
		IgnoreAddress: "cc-box@co.com",
	})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, log.Len())
}

func TestDispatchTransportFailureAborts(t *testing.T) {
	cause := errors.NewTransportError("smtp.co.com", "connection reset", nil)
	notifier := &fakeNotifier{
		failFor: map[string]error{"b@co.com": cause},
	}
	log := dispatch.NewSendLog()
	d := dispatch.New(notifier, log, dispatch.Config{
		Subject:      "Asset notice",
		AdminAddress: "admin@co.com",
	})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
		assetRow("A2", "T490", "b@co.com"),
		assetRow("A3", "X1", "c@co.com"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsTransportUnavailable(err))

	// a was sent, b hit the transport failure, c was never attempted, and
	// the admin notice went out last.
	require.Len(t, notifier.messages, 3)
	assert.Equal(t, "a@co.com", notifier.messages[0].To)
	assert.Equal(t, "b@co.com", notifier.messages[1].To)
	assert.Equal(t, "admin@co.com", notifier.messages[2].To)

	// Partial log survives; the admin notice is not recorded.
	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@co.com", entries[0].Recipient)
}

func TestDispatchNoAdminAddressConfigured(t *testing.T) {
	notifier := &fakeNotifier{
		failFor: map[string]error{"a@co.com": errors.NewTransportError("smtp.co.com", "down", nil)},
	}
	d := dispatch.New(notifier, dispatch.NewSendLog(), dispatch.Config{Subject: "Asset notice"})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
	})
	require.Error(t, err)

	// Only the failed send itself, no admin side channel.
	assert.Len(t, notifier.messages, 1)
}

func TestSendSummaryEmailsAdmin(t *testing.T) {
	notifier := &fakeNotifier{
		refused: map[string]dispatch.Outcome{
			"b@co.com": {Recipient: "b@co.com", Success: false, Code: 550, Message: "mailbox unavailable"},
		},
	}
	log := dispatch.NewSendLog()
	d := dispatch.New(notifier, log, dispatch.Config{
		Subject:      "Asset notice",
		AdminAddress: "admin@co.com",
	})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
		assetRow("A2", "X1", "b@co.com"),
	})
	require.NoError(t, err)
	require.NoError(t, d.SendSummary(context.Background()))

	// The report goes out after the per-recipient sends, to the admin
	// address, carrying one row per recorded attempt.
	require.Len(t, notifier.messages, 3)
	report := notifier.messages[2]
	assert.Equal(t, "admin@co.com", report.To)
	assert.Equal(t, "Asset notice - send report", report.Subject)
	assert.Equal(t, []string{"Time", "Recipient", "Subject", "Success", "Detail"}, report.Payload.Headers)
	require.Len(t, report.Payload.Rows, 2)
	assert.Equal(t, "N", report.Payload.Rows[1][3])

	// The report itself is never recorded.
	assert.Equal(t, 2, log.Len())
}

func TestSendSummarySkippedWithoutAdminAddress(t *testing.T) {
	notifier := &fakeNotifier{}
	log := dispatch.NewSendLog()
	log.Append(dispatch.Entry{Recipient: "a@co.com", Success: true})
	d := dispatch.New(notifier, log, dispatch.Config{Subject: "Asset notice"})

	require.NoError(t, d.SendSummary(context.Background()))
	assert.Empty(t, notifier.messages)
}

func TestSendSummarySkippedWhenNothingAttempted(t *testing.T) {
	notifier := &fakeNotifier{}
	d := dispatch.New(notifier, dispatch.NewSendLog(), dispatch.Config{
		Subject:      "Asset notice",
		AdminAddress: "admin@co.com",
	})

	require.NoError(t, d.SendSummary(context.Background()))
	assert.Empty(t, notifier.messages)
}

func TestDispatchPayloadColumnsConfigured(t *testing.T) {
	notifier := &fakeNotifier{}
	d := dispatch.New(notifier, dispatch.NewSendLog(), dispatch.Config{
		Subject:        "Asset notice",
		PayloadColumns: []string{"SN"},
	})

	err := d.Dispatch(context.Background(), []records.Record{
		assetRow("A1", "T480", "a@co.com"),
	})
	require.NoError(t, err)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, []string{"SN"}, notifier.messages[0].Payload.Headers)
	assert.Equal(t, [][]string{{"A1"}}, notifier.messages[0].Payload.Rows)
}

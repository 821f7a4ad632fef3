package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itassetops/assetnotify/internal/config"
	"github.com/itassetops/assetnotify/internal/report"
	"github.com/itassetops/assetnotify/internal/smtpmail"
	"github.com/itassetops/assetnotify/pkg/dispatch"
	"github.com/itassetops/assetnotify/pkg/logging"
	"github.com/itassetops/assetnotify/pkg/records"
)

// sendCmd dispatches per-recipient notifications from the reconciled workbook.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one notification email per resolved recipient",
	Long: `Send groups the reconciled workbook's rows by recipient and sends one
notification per recipient over SMTP. Every delivery attempt is recorded in
the send log; the run finishes with a summary that always includes failed
sends and their error text. A transport failure aborts the remaining sends
but preserves the partial log.`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateDispatch(); err != nil {
		return err
	}

	schema, err := records.LoadSchema(cfg.Report.Schema)
	if err != nil {
		return err
	}

	rows, err := report.ReadSheet(cfg.Report.Output, cfg.Report.DataSheet)
	if err != nil {
		return err
	}

	notifier := smtpmail.New(smtpmail.Config{
		Host:   cfg.SMTP.Host,
		Port:   cfg.SMTP.Port,
		Sender: cfg.SMTP.Sender,
	})

	sendLog := dispatch.NewSendLog()
	dispatcher := dispatch.New(notifier, sendLog, dispatch.Config{
		Subject:         cfg.SMTP.Subject,
		CC:              cfg.Notify.CC,
		IgnoreAddress:   cfg.Notify.IgnoreAddress,
		AdminAddress:    cfg.Notify.AdminAddress,
		RecipientColumn: schema.RecipientColumn(),
		PayloadColumns:  payloadColumns(schema),
	})

	dispatchErr := dispatcher.Dispatch(ctx, rows)
	reportSummary(sendLog, dispatchErr != nil)

	if err := dispatcher.SendSummary(ctx); err != nil {
		logger.Warn().Err(err).Msg("Send report email failed")
	}
	return dispatchErr
}

// payloadColumns selects the notification table columns: the asset key and
// the model when the schema maps one.
func payloadColumns(schema *records.Schema) []string {
	var columns []string
	if key, ok := schema.Column(records.FieldAssetKey); ok {
		columns = append(columns, key)
	}
	if model, ok := schema.Column(records.FieldModel); ok {
		columns = append(columns, model)
	}
	return columns
}

// reportSummary logs the post-run send report. Failures are always listed,
// even when the bulk of the run succeeded.
func reportSummary(sendLog *dispatch.SendLog, aborted bool) {
	failures := sendLog.Failures()
	event := logging.Info()
	if len(failures) > 0 || aborted {
		event = logging.Warn()
	}
	event.
		Int("attempted", sendLog.Len()).
		Int("failed", len(failures)).
		Bool("aborted", aborted).
		Msg("Send run complete")

	for _, f := range failures {
		logging.Warn().
			Str("recipient", f.Recipient).
			Int("code", f.Code).
			Str("detail", f.Message).
			Msg("Delivery failed")
	}
}

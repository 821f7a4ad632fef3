package cmd

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/itassetops/assetnotify/internal/config"
	"github.com/itassetops/assetnotify/internal/directory"
	"github.com/itassetops/assetnotify/internal/report"
	"github.com/itassetops/assetnotify/pkg/logging"
	"github.com/itassetops/assetnotify/pkg/reconcile"
	"github.com/itassetops/assetnotify/pkg/records"
)

// parseCmd reconciles the inventory export into the output workbook.
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Reconcile the inventory export into a recipient-attributed workbook",
	Long: `Parse reads the inventory export, resolves one notification recipient per
asset (Owner before User), applies band and directory exemptions, and writes
the reconciled data sheet plus a per-recipient summary sheet.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateReconcile(); err != nil {
		return err
	}

	schema, err := records.LoadSchema(cfg.Report.Schema)
	if err != nil {
		return err
	}

	rows, err := report.ReadSheet(cfg.Report.Input, cfg.Report.DataSheet)
	if err != nil {
		return err
	}
	logger.Info().
		Str("input", cfg.Report.Input).
		Int("rows", len(rows)).
		Msg("Loaded inventory export")

	opts := []reconcile.Option{
		reconcile.WithSchema(schema),
		reconcile.WithBandThreshold(cfg.Reconcile.BandThreshold),
		reconcile.WithManufacturerFilter(cfg.Reconcile.Manufacturers),
		reconcile.WithDomain(cfg.Reconcile.Domain),
	}
	if oracle, cleanup, err := buildOracle(ctx, cfg); err != nil {
		return err
	} else if oracle != nil {
		defer cleanup()
		opts = append(opts, reconcile.WithOracle(oracle))
	}

	engine, err := reconcile.New(opts...)
	if err != nil {
		return err
	}

	result, err := engine.Reconcile(ctx, rows)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		logger.Warn().Msg(warning)
	}

	sheets := []report.Sheet{
		report.FromRecords(cfg.Report.DataSheet, result.Notifiable),
		report.FromSummary(cfg.Report.SummarySheet, schema.RecipientColumn(), cfg.Report.CountColumn, result.Summary),
	}
	if err := report.Write(cfg.Report.Output, sheets...); err != nil {
		return err
	}

	logger.Info().
		Str("output", cfg.Report.Output).
		Int("notifiable", len(result.Notifiable)).
		Int("total_assets", result.TotalAssets()).
		Msg("Reconciled workbook written")
	return nil
}

// buildOracle wires the directory-backed exemption oracles when a DSN is
// configured. The cleanup closes the pool.
func buildOracle(ctx context.Context, cfg *config.Config) (reconcile.ExemptionOracle, func(), error) {
	if cfg.Directory.DSN == "" {
		return nil, nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Directory.DSN)
	if err != nil {
		return nil, nil, err
	}

	oracle := directory.Any{
		directory.NewVIPOracle(pool),
		directory.NewBandOracle(pool, cfg.Directory.MinBand),
	}
	return oracle, pool.Close, nil
}

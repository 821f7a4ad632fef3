// Package config loads and validates the runtime configuration from Viper,
// which in turn reads the config file, environment variables, and any .env
// file loaded by the command layer. Configuration errors are fatal at
// startup, before any report data is processed.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/itassetops/assetnotify/pkg/errors"
)

// Config is the full runtime configuration surface.
type Config struct {
	Report    Report    `mapstructure:"report"`
	Reconcile Reconcile `mapstructure:"reconcile"`
	SMTP      SMTP      `mapstructure:"smtp"`
	Notify    Notify    `mapstructure:"notify"`
	Directory Directory `mapstructure:"directory"`
}

// Report locates the input export and the reconciled output workbook.
type Report struct {
	Input        string `mapstructure:"input"`
	DataSheet    string `mapstructure:"data_sheet"`
	SummarySheet string `mapstructure:"summary_sheet"`
	Output       string `mapstructure:"output"`
	Schema       string `mapstructure:"schema"`
	CountColumn  string `mapstructure:"count_column"`
}

// Reconcile holds the core pipeline settings.
type Reconcile struct {
	// BandThreshold is the band at or above which a recipient is exempt.
	BandThreshold int `mapstructure:"band_threshold"`

	// Manufacturers keeps only matching rows notifiable when non-empty.
	Manufacturers []string `mapstructure:"manufacturers"`

	// Domain is the corporate email domain suffix for normalization.
	Domain string `mapstructure:"domain"`
}

// SMTP holds the mail transport settings.
type SMTP struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Sender  string `mapstructure:"sender"`
	Subject string `mapstructure:"subject"`
}

// Notify holds dispatch-level addressing.
type Notify struct {
	CC            []string `mapstructure:"cc"`
	IgnoreAddress string   `mapstructure:"ignore_address"`
	AdminAddress  string   `mapstructure:"admin_address"`
}

// Directory configures the optional database-backed exemption oracles.
// An empty DSN disables them.
type Directory struct {
	DSN     string `mapstructure:"dsn"`
	MinBand int    `mapstructure:"min_band"`
}

// configKeys lists every key Unmarshal must see. Values that arrive only
// through AutomaticEnv are invisible to Unmarshal unless the key carries a
// default or an explicit binding, so every key is bound to its env form.
var configKeys = []string{
	"report.input",
	"report.data_sheet",
	"report.summary_sheet",
	"report.output",
	"report.schema",
	"report.count_column",
	"reconcile.band_threshold",
	"reconcile.manufacturers",
	"reconcile.domain",
	"smtp.host",
	"smtp.port",
	"smtp.sender",
	"smtp.subject",
	"notify.cc",
	"notify.ignore_address",
	"notify.admin_address",
	"directory.dsn",
	"directory.min_band",
}

// defaults that hold when neither config file nor environment set a value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("report.data_sheet", "Data")
	v.SetDefault("report.summary_sheet", "Summary")
	v.SetDefault("report.count_column", "Assets")
	v.SetDefault("smtp.port", 25)
	v.SetDefault("reconcile.band_threshold", -1)
}

// bindEnv makes every config key readable from the environment, config file
// or not: "smtp.host" binds to SMTP_HOST and so on.
func bindEnv(v *viper.Viper) {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	for _, key := range configKeys {
		_ = v.BindEnv(key, strings.ToUpper(replacer.Replace(key)))
	}
}

// Load reads the configuration from the global Viper instance.
func Load() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "cannot decode configuration", err)
	}

	// Comma-separated env values arrive as a single element.
	cfg.Reconcile.Manufacturers = splitList(cfg.Reconcile.Manufacturers)
	cfg.Notify.CC = splitList(cfg.Notify.CC)
	return &cfg, nil
}

// splitList expands comma-separated entries and drops empties.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// ValidateReconcile checks everything the parse operation needs. Fatal
// before any data is read.
func (c *Config) ValidateReconcile() error {
	if c.Report.Input == "" {
		return errors.NewConfigError("report", "input workbook path is required", nil)
	}
	if c.Report.Schema == "" {
		return errors.NewConfigError("report", "column schema file is required", nil)
	}
	if c.Report.Output == "" {
		return errors.NewConfigError("report", "output workbook path is required", nil)
	}
	if c.Reconcile.BandThreshold < 0 {
		return errors.NewConfigError("reconcile", "band_threshold must be set to a non-negative integer", nil)
	}
	return nil
}

// ValidateDispatch checks everything the send operation needs.
func (c *Config) ValidateDispatch() error {
	if c.Report.Output == "" {
		return errors.NewConfigError("report", "output workbook path is required", nil)
	}
	if c.Report.Schema == "" {
		return errors.NewConfigError("report", "column schema file is required", nil)
	}
	if c.SMTP.Host == "" {
		return errors.NewConfigError("smtp", "host is required", nil)
	}
	if c.SMTP.Sender == "" {
		return errors.NewConfigError("smtp", "sender address is required", nil)
	}
	if c.SMTP.Subject == "" {
		return errors.NewConfigError("smtp", "subject is required", nil)
	}
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Remote backend names accepted by REMOTE_BACKEND.
const (
	BackendAppsScript = "appsscript"
	BackendSheets     = "sheets"
	BackendMemory     = "memory"
)

type Config struct {
	// HTTP Server
	Port string `envconfig:"PORT" default:"8080"`

	// Remote spreadsheet backend
	RemoteBackend string `envconfig:"REMOTE_BACKEND" default:"appsscript"`
	SheetEndpoint string `envconfig:"SHEET_ENDPOINT"`

	// Google Sheets API (sheets backend)
	GoogleSpreadsheetID      string `envconfig:"GOOGLE_SPREADSHEET_ID"`
	GoogleTransactionsSheet  string `envconfig:"GOOGLE_TRANSACTIONS_SHEET" default:"Transacciones"`
	GoogleOrdersSheet        string `envconfig:"GOOGLE_ORDERS_SHEET" default:"Pedidos"`
	GoogleServiceAccountJSON string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Local snapshot
	SnapshotDBPath string `envconfig:"SNAPSHOT_DB_PATH" default:"./data/yeca.db"`
	SnapshotKey    string `envconfig:"SNAPSHOT_KEY" default:"agenda_pro_data_v2"`

	// State store
	LoadTimeout   time.Duration `envconfig:"LOAD_TIMEOUT" default:"10s"`
	MirrorTimeout time.Duration `envconfig:"MIRROR_TIMEOUT" default:"30s"`

	// AMQP (optional; empty URL mirrors writes inline instead)
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"yeca"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"sync_mutations"`

	// AI insights (optional)
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Email reports
	ReportRecipient string `envconfig:"REPORT_RECIPIENT"`
	ReportSubject   string `envconfig:"REPORT_SUBJECT" default:"Reporte Quincenal - Agendas Yeca"`

	// Insight cache
	InsightCacheTTL  time.Duration `envconfig:"INSIGHT_CACHE_TTL" default:"15m"`
	InsightCacheSize int           `envconfig:"INSIGHT_CACHE_SIZE" default:"32"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.RemoteBackend {
	case BackendAppsScript:
		if c.SheetEndpoint == "" {
			errors = append(errors, "SHEET_ENDPOINT is required for the appsscript backend")
		} else if u, err := url.Parse(c.SheetEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid sheet endpoint '%s': must be an absolute URL", c.SheetEndpoint))
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for the sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets backend")
		}
	case BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid remote backend '%s': must be one of [%s %s %s]",
			c.RemoteBackend, BackendAppsScript, BackendSheets, BackendMemory))
	}

	if c.SnapshotDBPath == "" {
		errors = append(errors, "snapshot database path cannot be empty")
	}
	if c.SnapshotKey == "" {
		errors = append(errors, "snapshot key cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.LoadTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid load timeout %v: must be at least 1 second", c.LoadTimeout))
	}
	if c.MirrorTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mirror timeout %v: must be at least 1 second", c.MirrorTimeout))
	}

	if c.InsightCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid insight cache size %d: must be at least 1", c.InsightCacheSize))
	}
	if c.InsightCacheTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid insight cache TTL %v: must be at least 1 minute", c.InsightCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

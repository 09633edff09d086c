package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backends.
const (
	BackendRemote = "remote"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

const minExecTokenLen = 16

var validBackends = []string{BackendRemote, BackendMemory, BackendSQLite, BackendSheets}

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend    string
	RequestTimeout time.Duration

	// Remote endpoint. Empty in env means the URL file is consulted.
	APIURL   string
	APIToken string

	// Bearer token required by /exec; the endpoint is off without it.
	ExecToken string

	// Memory backend
	MemorySeedFile string
	MemoryLatency  time.Duration

	// Database
	SQLiteDBPath string

	// AMQP; publishing is off when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleGoalsSheet        string
	GoogleSettingsSheet     string
	GoogleCredentialsFile   string
	GoogleCredentialsJSON   string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:    getEnv("DATA_BACKEND", BackendMemory),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		APIURL:   getEnv("API_URL", ""),
		APIToken: getEnv("API_TOKEN", ""),

		ExecToken: getEnv("EXEC_TOKEN", ""),

		MemorySeedFile: getEnv("MEMORY_SEED_FILE", ""),
		MemoryLatency:  getEnvDuration("MEMORY_LATENCY", 0),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/financas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mutations"),

		GoogleSpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTransactionsSheet: getEnv("GOOGLE_TRANSACTIONS_SHEET", "Transacoes"),
		GoogleGoalsSheet:        getEnv("GOOGLE_GOALS_SHEET", "Metas"),
		GoogleSettingsSheet:     getEnv("GOOGLE_SETTINGS_SHEET", "Config"),
		GoogleCredentialsFile:   getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON:   getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.RequestTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 100ms", c.RequestTimeout))
	} else if c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 5 minutes", c.RequestTimeout))
	}

	if c.DataBackend == BackendRemote {
		if c.APIURL == "" {
			errors = append(errors, "API URL is required when using remote backend (set API_URL or run set-url)")
		} else if err := ValidateAPIURL(c.APIURL); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.ExecToken != "" && len(c.ExecToken) < minExecTokenLen {
		errors = append(errors, fmt.Sprintf("invalid exec token: must be at least %d characters", minExecTokenLen))
	}

	if c.DataBackend == BackendMemory {
		if c.MemoryLatency < 0 || c.MemoryLatency > 10*time.Second {
			errors = append(errors, fmt.Sprintf("invalid memory latency %v: must be between 0 and 10s", c.MemoryLatency))
		}
	}

	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
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

	if c.DataBackend == BackendSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleTransactionsSheet == "" || c.GoogleGoalsSheet == "" || c.GoogleSettingsSheet == "" {
			errors = append(errors, "Google sheet names cannot be empty when using sheets backend")
		}

		hasFile := c.GoogleCredentialsFile != ""
		if !hasFile && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateAPIURL accepts absolute http and https URLs only.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL '%s': %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL scheme '%s': must be 'http' or 'https'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API URL '%s': missing host", raw)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

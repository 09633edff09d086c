package backend

import (
	"fmt"

	"financas/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:           backendType,
		RequestTimeout: appConfig.RequestTimeout,

		APIURL:   appConfig.APIURL,
		APIToken: appConfig.APIToken,

		MemorySeedFile: appConfig.MemorySeedFile,
		MemoryLatency:  appConfig.MemoryLatency,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:     appConfig.GoogleSpreadsheetID,
		GoogleTransactionsSheet: appConfig.GoogleTransactionsSheet,
		GoogleGoalsSheet:        appConfig.GoogleGoalsSheet,
		GoogleSettingsSheet:     appConfig.GoogleSettingsSheet,
		GoogleCredentialsFile:   appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON:   appConfig.GoogleCredentialsJSON,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case RemoteBackend:
		if c.APIURL == "" {
			return fmt.Errorf("API URL is required for remote backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			return fmt.Errorf("either GoogleCredentialsFile or GoogleCredentialsJSON must be provided for sheets backend")
		}
	case MemoryBackend:
		// A missing seed file means the demo data.
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{RemoteBackend, MemoryBackend, SQLiteBackend, SheetsBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

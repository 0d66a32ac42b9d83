package testing

import (
	"testing"

	"vibibay-client-go/internal/platform/config"
	"vibibay-client-go/internal/platform/logging"
)

// SetupTestConfig returns a config suitable for unit tests: memory session
// store, quiet logging, web facade disabled.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.API.BaseURL = "http://127.0.0.1:8080"
	cfg.Session.Store.Type = "memory"
	cfg.Log.Level = "error"
	cfg.Web.Enabled = false

	return cfg
}

// SetupTestLogger returns a logger that discards output.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	return logging.Discard()
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLocal() *Config {
	return &Config{
		Port:          "8390",
		Env:           "development",
		StoreBackend:  StoreBackendLocal,
		StoreBucket:   "media",
		LocalDBDriver: "sqlite",
		LocalDBDSN:    "ricordi.db",
		MediaDir:      "/tmp/ricordi/media",
	}
}

func TestValidateLocalBackend(t *testing.T) {
	cfg := validLocal()
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresPort(t *testing.T) {
	cfg := validLocal()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRESTRequiresURL(t *testing.T) {
	cfg := validLocal()
	cfg.StoreBackend = StoreBackendREST
	cfg.StoreURL = ""
	assert.Error(t, cfg.Validate())

	cfg.StoreURL = "https://store.example"
	cfg.StoreAPIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validLocal()
	cfg.StoreBackend = "csv"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := validLocal()
	cfg.LocalDBDriver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestValidateLocalRequiresMediaDir(t *testing.T) {
	cfg := validLocal()
	cfg.MediaDir = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresBucket(t *testing.T) {
	cfg := validLocal()
	cfg.StoreBucket = ""
	assert.Error(t, cfg.Validate())
}

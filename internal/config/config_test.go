package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("VITE_GROQ_API_KEY", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Parse([]byte("server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "codereview.db", cfg.Database.Path)
	assert.Equal(t, DefaultAIBaseURL, cfg.AI.BaseURL)
	assert.Equal(t, DefaultAIModel, cfg.AI.Model)
	assert.Equal(t, DefaultAITimeout, cfg.AI.Timeout)
	assert.Equal(t, 2000, cfg.AI.MaxTokens)
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.1, *cfg.AI.Temperature, 1e-6)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.AI.Timeout)
	assert.Empty(t, cfg.AI.APIKey)
}

func TestParse_TimeoutNeverZero(t *testing.T) {
	cfg, err := Parse([]byte("ai:\n  timeout: -5s\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAITimeout, cfg.AI.Timeout)

	cfg, err = Parse([]byte("ai:\n  timeout: 5s\n"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
}

func TestParse_ExplicitZeroTemperature(t *testing.T) {
	cfg, err := Parse([]byte("ai:\n  temperature: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.AI.Temperature)
	assert.Zero(t, *cfg.AI.Temperature)

	_, err = Parse([]byte("ai:\n  temperature: 3\n"))
	assert.ErrorContains(t, err, "ai.temperature")
}

func TestEnvOverrides_APIKey(t *testing.T) {
	t.Run("GROQ_API_KEY wins over file", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "env-key")
		t.Setenv("VITE_GROQ_API_KEY", "vite-key")

		cfg := &Config{AI: AI{APIKey: "file-key"}}
		cfg.applyEnvOverrides()
		assert.Equal(t, "env-key", cfg.AI.APIKey)
	})

	t.Run("VITE_GROQ_API_KEY only fills an empty key", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "")
		t.Setenv("VITE_GROQ_API_KEY", "vite-key")

		cfg := &Config{AI: AI{APIKey: "file-key"}}
		cfg.applyEnvOverrides()
		assert.Equal(t, "file-key", cfg.AI.APIKey)

		cfg = &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "vite-key", cfg.AI.APIKey)
	})
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")

	_, err := Parse([]byte("database:\n  driver: oracle\n"))
	assert.ErrorContains(t, err, "unsupported database.driver")

	_, err = Parse([]byte("database:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "database.host")

	_, err = Parse([]byte("minio:\n  enabled: true\n"))
	assert.ErrorContains(t, err, "minio.endpoint")

	_, err = Parse([]byte("auth:\n  apiKeys:\n    alice: \"\"\n"))
	assert.ErrorContains(t, err, "auth.apiKeys[alice]")

	_, err = Parse([]byte("auth:\n  apiKeys:\n    \"team a\": key\n"))
	assert.ErrorContains(t, err, `invalid owner id "team a"`)

	_, err = Parse([]byte("auth:\n  apiKeys:\n    team_a-1: key\n"))
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
database:
  driver: mysql
  host: db
  port: 3306
  user: app
  password: secret
  name: reviews
auth:
  apiKeys:
    alice: key-a
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "app:secret@tcp(db:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "key-a", cfg.Auth.APIKeys["alice"])

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{Database: Database{Host: "pg", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "require"}}
	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=n sslmode=require", cfg.PostgresDSN())
}

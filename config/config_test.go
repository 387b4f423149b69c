package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
http:
  address: ":8080"
  cors_origins: ["http://localhost:5500"]
database:
  driver: postgres
  host: localhost
  port: 5432
  user: noir
  password: secret
  name: noir
kafka:
  brokers: ["localhost:9092"]
smtp:
  host: smtp.example.com
worker:
  expiration_sweep_minutes: 15
`

func TestParse_DefaultsAndValues(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "/api", cfg.HTTP.BasePath)
	assert.Equal(t, []string{"http://localhost:5500"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "host=localhost port=5432 user=noir password=secret dbname=noir sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, NotifyKafka, cfg.Notifications.Mode)
	assert.Equal(t, "apartados.notificaciones", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, 24, cfg.Apartados.HoldTTLHours)
	assert.Equal(t, 6, cfg.Apartados.CodeLength)
	assert.Equal(t, 5, cfg.Apartados.CodeAttempts)
	assert.Equal(t, 15, cfg.Worker.ExpirationSweepMinutes)
	assert.Equal(t, 300, cfg.SMTP.QRSize)
	assert.False(t, cfg.Auth.Enabled())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("NOTIFICATIONS_MODE", "log")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, NotifyLog, cfg.Notifications.Mode)
}

func TestParse_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name        string
		yaml        string
		expectedErr string
	}{
		{
			name:        "Unknown driver",
			yaml:        "database: {driver: mongo}\nnotifications: {mode: log}\n",
			expectedErr: "unsupported driver",
		},
		{
			name:        "Postgres without host",
			yaml:        "database: {driver: postgres}\nnotifications: {mode: log}\n",
			expectedErr: "url or host is required",
		},
		{
			name:        "Kafka mode without brokers",
			yaml:        "database: {driver: dynamodb}\nnotifications: {mode: kafka}\n",
			expectedErr: "requires kafka.brokers",
		},
		{
			name:        "SMTP mode without host",
			yaml:        "database: {driver: dynamodb}\n",
			expectedErr: "requires smtp.host",
		},
		{
			name:        "Relative base path",
			yaml:        "database: {driver: dynamodb}\nnotifications: {mode: log}\nhttp: {base_path: api}\n",
			expectedErr: "must start with /",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "noir", cfg.Database.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

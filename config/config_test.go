package config

import (
	"testing"
	"time"

	"github.com/farellandr/eventbuddy/internal/logger"
	"github.com/farellandr/eventbuddy/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.CORSOrigins)
	assert.False(t, cfg.AllowAdminSignup)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "booking-events", cfg.KafkaTopic)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.AllowAdminSignup)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadConfigCollectsProblems(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "maybe")
	t.Setenv("PORT", "http")
	t.Setenv("LOG_FORMAT", "")

	_, err := LoadConfig()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET", "JWT_TTL", "ALLOW_ADMIN_SIGNUP", "PORT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=require TimeZone=UTC", cfg.DSN())
}

func TestInitPublisherWithoutBrokers(t *testing.T) {
	pub, err := InitPublisher(&Config{}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, notify.NopPublisher{}, pub)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.NotNil(t, cfg)
	assert.Equal(t, "placement-service", cfg.Service.Name)
	assert.Equal(t, "3000", cfg.Service.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, MailLog, cfg.Mail.Backend)
	assert.Equal(t, ChatbotRules, cfg.Chatbot.Backend)
	assert.Equal(t, "sid", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.GetSessionTTL())
	assert.Equal(t, int64(10<<20), cfg.GetMaxUploadBytes())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("PUBLIC_BASE_URL", "https://portal.example.edu/")
	t.Setenv("STORAGE_BACKEND", StorageS3)
	t.Setenv("S3_BUCKET", "cv")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Service.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.GetSessionTTL())
	assert.Equal(t, "https://portal.example.edu", cfg.Service.PublicBaseURL)
	assert.Equal(t, "cv", cfg.Storage.S3Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Database.Driver = "mysql"
	cfg.Session.TTL = "forever"
	cfg.Mail.Backend = MailSMTP
	cfg.Chatbot.Backend = ChatbotOpenAI

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `unknown DB_DRIVER "mysql"`)
	assert.Contains(t, msg, "SESSION_TTL")
	assert.Contains(t, msg, "SMTP_HOST is required")
	assert.Contains(t, msg, "CHATBOT_API_KEY is required")
}

func TestDurationGetters_FallBackOnGarbage(t *testing.T) {
	cfg := &Config{}
	cfg.Shutdown.Timeout = "nope"
	cfg.Shutdown.ReadinessDrainDelay = ""
	cfg.Session.TTL = "x"

	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeoutDuration())
	assert.Equal(t, time.Duration(0), cfg.GetReadinessDrainDelayDuration())
	assert.Equal(t, 24*time.Hour, cfg.GetSessionTTL())
}

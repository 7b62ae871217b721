package config

import (
	"testing"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KINTONE_APP_ID_RULEBOOK", "296")
	t.Setenv("KNOWLEDGE_CACHE_TTL", "")
	t.Setenv("CHATWORK_MY_ID", "10686206")

	cfg := Load()

	assert.Equal(t, "296", cfg.Kintone.Rulebook.AppID)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, int64(10686206), cfg.Chatwork.BotAccountID)
	assert.Equal(t, 0.3, cfg.Ai.Temperature)
}

func TestValidateKintone(t *testing.T) {
	cfg := &Config{}
	cfg.Kintone.Domain = "example.cybozu.com"
	cfg.Kintone.Rulebook.Token = "rb"

	err := cfg.ValidateKintone()
	require.Error(t, err)

	var cfgErr *apperror.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"KINTONE_API_TOKEN_JM", "KINTONE_API_TOKEN_SCHEDULE"}, cfgErr.Keys)

	cfg.Kintone.MeetingMinutes.Token = "jm"
	cfg.Kintone.Schedule.Token = "sc"
	assert.NoError(t, cfg.ValidateKintone())
}

func TestValidateChatwork(t *testing.T) {
	cfg := &Config{}
	assert.True(t, apperror.IsConfiguration(cfg.ValidateChatwork()))

	cfg.Chatwork.APIToken = "token"
	err := cfg.ValidateChatwork()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHATWORK_MY_ID")

	cfg.Chatwork.BotAccountID = 10686206
	assert.NoError(t, cfg.ValidateChatwork())
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	t.Setenv("PIPELINE_TIMEOUT", "not-a-duration")
	assert.Equal(t, 5*time.Second, getEnvAsDuration("PIPELINE_TIMEOUT", 5*time.Second))

	t.Setenv("PIPELINE_TIMEOUT", "90s")
	assert.Equal(t, 90*time.Second, getEnvAsDuration("PIPELINE_TIMEOUT", 5*time.Second))
}

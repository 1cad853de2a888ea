package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDumpYAML(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "hunter2"
	cfg.Email.ResendAPIKey = "re_live_key"

	out, err := DumpYAML(cfg)
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, testSecret)
	assert.NotContains(t, text, "hunter2")
	assert.NotContains(t, text, "re_live_key")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, redacted, decoded.Server.JwtSecretKey)
	assert.Equal(t, redacted, decoded.Database.Password)
	assert.Equal(t, "", decoded.Redis.Password)
	assert.Equal(t, "PLN", decoded.Currency.ReferenceCurrency)
	assert.Equal(t, 60, decoded.RateLimit.WindowSeconds)

	assert.Equal(t, testSecret, cfg.Server.JwtSecretKey, "the input must not be modified")
}

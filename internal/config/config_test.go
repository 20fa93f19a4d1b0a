package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("IG_USERNAME", "bridge_account")
	t.Setenv("IG_PASSWORD", "hunter2hunter2")
	t.Setenv("DISCORD_TOKEN", "token-value")
}

func TestLoad_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr error
	}{
		{"missing username", "IG_USERNAME", ErrMissingUsername},
		{"missing password", "IG_PASSWORD", ErrMissingPassword},
		{"missing token", "DISCORD_TOKEN", ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "instacord.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 8082, cfg.ServerPort)
	assert.Empty(t, cfg.TargetUsernames)
	assert.Empty(t, cfg.Discord.GuildID)
}

func TestLoad_TargetUsernames(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty means allow all", "", nil},
		{"single user", "Alice", []string{"alice"}},
		{"trims and lowercases", " Alice , BOB ,", []string{"alice", "bob"}},
		{"drops empty entries", ",,alice,,", []string{"alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("TARGET_USERNAMES", tt.raw)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.TargetUsernames)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_PATH", "/var/lib/instacord/archive.db")
	t.Setenv("RETENTION_DAYS", "7")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("DISCORD_GUILD_ID", "123456789")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/instacord/archive.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, "123456789", cfg.Discord.GuildID)
}

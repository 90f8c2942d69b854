package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "redis", cfg.Storage.Type)
	require.Equal(t, "standard", cfg.Limiter.Strategy)
	require.Equal(t, "rate-limit:", cfg.Limiter.KeyPrefix)
	require.Equal(t, "memory", cfg.Override.Backend)
	require.Equal(t, "localhost:6379", cfg.Redis.GetRedisAddr())

	require.Len(t, cfg.Tiers, 2)
	require.Equal(t, "premium-", cfg.Tiers[0].Prefix)
	require.Equal(t, "", cfg.Tiers[1].Prefix)
}

func TestLoadKeepsConfiguredKeyPrefix(t *testing.T) {
	path := writeConfig(t, `{"limiter": {"key_prefix": "custom:"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "custom:", cfg.Limiter.KeyPrefix)
}

func TestLoadInjectsBaseTier(t *testing.T) {
	path := writeConfig(t, `{
		"tiers": [
			{"name": "premium", "prefix": "premium-", "window_ms": 5000, "max_requests": 10}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Tiers, 2)
	require.Equal(t, "", cfg.Tiers[1].Prefix, "a base tier is appended when only prefixed tiers are configured")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")
	t.Setenv("POSTGRES_DSN", "host=db user=gw")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "redis.internal:6380", cfg.Redis.GetRedisAddr())
	require.Equal(t, "s3cret", cfg.Admin.JWTSecret)
	require.True(t, cfg.Postgres.Enabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad json", `{`},
		{"bad storage type", `{"storage": {"type": "cassandra"}}`},
		{"bad strategy", `{"limiter": {"strategy": "optimistic"}}`},
		{"bad override backend", `{"override": {"backend": "etcd"}}`},
		{"nameless tier", `{"tiers": [{"prefix": "", "window_ms": 1000, "max_requests": 5}]}`},
		{"zero window", `{"tiers": [{"name": "free", "prefix": "", "window_ms": 0, "max_requests": 5}]}`},
		{"postgres without dsn", `{"postgres": {"enabled": true}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
		})
	}
}

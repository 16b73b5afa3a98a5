package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanwoo-dev/melogate/internal/config"
)

// clearEnv resets every variable Load reads so tests see a clean slate
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "API_KEY", "CORS_ALLOWED_ORIGINS", "REQUEST_TIMEOUT_SECONDS",
		"TTS_ENGINE", "MELO_API_URL", "TTS_COMMAND", "OPENAI_API_KEY", "GEMINI_API_KEY",
		"DEFAULT_LANGUAGE", "DEFAULT_SPEAKER_ID", "DEFAULT_SPEED", "DEFAULT_SAMPLE_RATE",
		"MAX_CONCURRENT_SYNTHESES", "REDIS_URL", "CACHE_MAX_ENTRIES", "CACHE_TTL_SECONDS",
		"DATABASE_URL", "OUTPUT_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, config.EngineMelo, cfg.Engine)
	assert.Equal(t, "http://localhost:8001", cfg.MeloAPIURL)
	assert.Equal(t, "EN", cfg.DefaultLanguage)
	assert.Equal(t, 1.0, cfg.DefaultSpeed)
	assert.Equal(t, 22050, cfg.DefaultSampleRate)
	assert.Equal(t, 4, cfg.MaxConcurrentSyntheses)
	assert.Equal(t, 2048, cfg.CacheMaxEntries)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9100")
	t.Setenv("DEFAULT_LANGUAGE", "KR")
	t.Setenv("DEFAULT_SPEAKER_ID", "KR")
	t.Setenv("DEFAULT_SPEED", "1.3")
	t.Setenv("DEFAULT_SAMPLE_RATE", "44100")
	t.Setenv("MAX_CONCURRENT_SYNTHESES", "8")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "KR", cfg.DefaultLanguage)
	assert.Equal(t, "KR", cfg.DefaultSpeakerID)
	assert.Equal(t, 1.3, cfg.DefaultSpeed)
	assert.Equal(t, 44100, cfg.DefaultSampleRate)
	assert.Equal(t, 8, cfg.MaxConcurrentSyntheses)
}

func TestLoadEngineValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown engine",
			env:  map[string]string{"TTS_ENGINE": "festival"},
			want: "unknown TTS_ENGINE",
		},
		{
			name: "exec without command",
			env:  map[string]string{"TTS_ENGINE": "exec"},
			want: "TTS_COMMAND is required",
		},
		{
			name: "openai without key",
			env:  map[string]string{"TTS_ENGINE": "openai"},
			want: "OPENAI_API_KEY is required",
		},
		{
			name: "gemini without key",
			env:  map[string]string{"TTS_ENGINE": "gemini"},
			want: "GEMINI_API_KEY is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadRejectsBadDefaults(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"negative speed", "DEFAULT_SPEED", "-0.5", "DEFAULT_SPEED must be positive"},
		{"zero sample rate", "DEFAULT_SAMPLE_RATE", "-22050", "DEFAULT_SAMPLE_RATE must be positive"},
		{"zero concurrency", "MAX_CONCURRENT_SYNTHESES", "-1", "MAX_CONCURRENT_SYNTHESES must be positive"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadUnparsableNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_SPEED", "fast")
	t.Setenv("DEFAULT_SAMPLE_RATE", "cd-quality")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.DefaultSpeed)
	assert.Equal(t, 22050, cfg.DefaultSampleRate)
}

func TestAddr(t *testing.T) {
	cfg := &config.Config{Host: "0.0.0.0", Port: "8000"}
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Engine names accepted in TTS_ENGINE.
const (
	EngineMelo   = "melo"
	EngineExec   = "exec"
	EngineOpenAI = "openai"
	EngineGemini = "gemini"
)

type Config struct {
	// Server
	Host               string
	Port               string
	APIKey             string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)
	RequestTimeout     time.Duration

	// Engine selection
	Engine string // melo | exec | openai | gemini

	// MeloTTS model server (default engine)
	MeloAPIURL string

	// Exec engine — local synthesis command, shell-words syntax
	TTSCommand string

	// Hosted engines
	OpenAIKey string
	GeminiKey string

	// Synthesis defaults applied when the request omits a field
	DefaultLanguage   string
	DefaultSpeakerID  string
	DefaultSpeed      float64
	DefaultSampleRate int

	// Concurrency bound on in-flight engine calls
	MaxConcurrentSyntheses int

	// Cache
	RedisURL        string // empty = in-memory LRU
	CacheMaxEntries int
	CacheTTL        time.Duration

	// Optional request history (Postgres) and on-disk WAV archive
	DatabaseURL string
	OutputDir   string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8000"),
		APIKey:             getEnv("API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,

		Engine:     getEnv("TTS_ENGINE", EngineMelo),
		MeloAPIURL: getEnv("MELO_API_URL", "http://localhost:8001"),
		TTSCommand: getEnv("TTS_COMMAND", ""),
		OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
		GeminiKey:  getEnv("GEMINI_API_KEY", ""),

		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "EN"),
		DefaultSpeakerID:  getEnv("DEFAULT_SPEAKER_ID", ""),
		DefaultSpeed:      getEnvFloat("DEFAULT_SPEED", 1.0),
		DefaultSampleRate: getEnvInt("DEFAULT_SAMPLE_RATE", 22050),

		MaxConcurrentSyntheses: getEnvInt("MAX_CONCURRENT_SYNTHESES", 4),

		RedisURL:        getEnv("REDIS_URL", ""),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 2048),
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,

		DatabaseURL: getEnv("DATABASE_URL", ""),
		OutputDir:   getEnv("OUTPUT_DIR", ""),
	}

	// Validate engine selection and its prerequisites
	switch cfg.Engine {
	case EngineMelo:
		if cfg.MeloAPIURL == "" {
			return nil, fmt.Errorf("MELO_API_URL is required for the melo engine")
		}
	case EngineExec:
		if cfg.TTSCommand == "" {
			return nil, fmt.Errorf("TTS_COMMAND is required for the exec engine")
		}
	case EngineOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai engine")
		}
	case EngineGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini engine")
		}
	default:
		return nil, fmt.Errorf("unknown TTS_ENGINE %q (expected melo, exec, openai or gemini)", cfg.Engine)
	}

	if cfg.DefaultSpeed <= 0 {
		return nil, fmt.Errorf("DEFAULT_SPEED must be positive, got %v", cfg.DefaultSpeed)
	}

	if cfg.DefaultSampleRate <= 0 {
		return nil, fmt.Errorf("DEFAULT_SAMPLE_RATE must be positive, got %d", cfg.DefaultSampleRate)
	}

	if cfg.MaxConcurrentSyntheses <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_SYNTHESES must be positive, got %d", cfg.MaxConcurrentSyntheses)
	}

	return cfg, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all Prepwise environment variables.
const EnvPrefix = "PREPWISE_"

// Config holds all application configuration. Secrets (API keys, the JWT
// signing secret) are loaded exclusively from environment variables and never
// appear in the config file.
type Config struct {
	HTTPAddress    string `yaml:"http_address"`
	DBPath         string `yaml:"db_path"`
	LLMProvider    string `yaml:"llm_provider"` // openai or gemini
	OpenAIModel    string `yaml:"openai_model"`
	GeminiModel    string `yaml:"gemini_model"`
	STTProvider    string `yaml:"stt_provider"` // whisper or google
	TTSProvider    string `yaml:"tts_provider"` // openai or elevenlabs
	Voice          string `yaml:"voice"`
	SupabaseURL    string `yaml:"supabase_url"`
	SupabaseBucket string `yaml:"supabase_bucket"`
	StartWindowMS  int    `yaml:"start_window_ms"`

	// Secrets come from environment variables only, never from YAML.
	OpenAIAPIKey       string `yaml:"-"`
	GeminiAPIKey       string `yaml:"-"`
	ElevenLabsAPIKey   string `yaml:"-"`
	SupabaseServiceKey string `yaml:"-"`
	JWTSecret          string `yaml:"-"`
}

func defaults() Config {
	return Config{
		HTTPAddress:    ":8080",
		DBPath:         "data/prepwise.db",
		LLMProvider:    "openai",
		OpenAIModel:    "gpt-4",
		GeminiModel:    "gemini-2.0-flash",
		STTProvider:    "whisper",
		TTSProvider:    "openai",
		Voice:          "nova",
		SupabaseBucket: "resumes",
		StartWindowMS:  2000,
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the result.
// It returns the config, any validation warnings, and an error if the file
// exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// StartWindow returns the welcome deduplication window as a duration,
// falling back to 2s when the configured value is not positive.
func (c *Config) StartWindow() time.Duration {
	if c.StartWindowMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.StartWindowMS) * time.Millisecond
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "HTTP_ADDRESS"); v != "" {
		cfg.HTTPAddress = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = v
	}
	if v := os.Getenv(EnvPrefix + "OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv(EnvPrefix + "GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv(EnvPrefix + "STT_PROVIDER"); v != "" {
		cfg.STTProvider = v
	}
	if v := os.Getenv(EnvPrefix + "TTS_PROVIDER"); v != "" {
		cfg.TTSProvider = v
	}
	if v := os.Getenv(EnvPrefix + "VOICE"); v != "" {
		cfg.Voice = v
	}
	if v := os.Getenv(EnvPrefix + "SUPABASE_URL"); v != "" {
		cfg.SupabaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "SUPABASE_BUCKET"); v != "" {
		cfg.SupabaseBucket = v
	}
	if v := os.Getenv(EnvPrefix + "START_WINDOW_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.StartWindowMS = ms
		}
	}
}

func loadSecrets(cfg *Config) {
	cfg.OpenAIAPIKey = os.Getenv(EnvPrefix + "OPENAI_API_KEY")
	cfg.GeminiAPIKey = os.Getenv(EnvPrefix + "GEMINI_API_KEY")
	cfg.ElevenLabsAPIKey = os.Getenv(EnvPrefix + "ELEVENLABS_API_KEY")
	cfg.SupabaseServiceKey = os.Getenv(EnvPrefix + "SUPABASE_SERVICE_KEY")
	cfg.JWTSecret = os.Getenv(EnvPrefix + "JWT_SECRET")
}

func validate(cfg *Config) []string {
	var warnings []string

	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OpenAI API key not configured, the server cannot reach the model. Set "+EnvPrefix+"OPENAI_API_KEY.")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			warnings = append(warnings, "Gemini API key not configured, the server cannot reach the model. Set "+EnvPrefix+"GEMINI_API_KEY.")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown llm_provider %q, using openai.", cfg.LLMProvider))
		cfg.LLMProvider = "openai"
	}

	if cfg.TTSProvider == "elevenlabs" && cfg.ElevenLabsAPIKey == "" {
		warnings = append(warnings, "ElevenLabs API key not configured, speech synthesis cannot start. Set "+EnvPrefix+"ELEVENLABS_API_KEY.")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		warnings = append(warnings, "Supabase storage not configured, resume uploads are disabled.")
	}
	if cfg.JWTSecret == "" {
		warnings = append(warnings, "JWT secret not configured, all authenticated requests will be rejected. Set "+EnvPrefix+"JWT_SECRET.")
	}

	return warnings
}

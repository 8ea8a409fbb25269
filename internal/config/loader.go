package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jonathan/adaptive-tutor/internal/llm"
)

const (
	// EnvPrefix prefixes every override, e.g. TUTOR_LLM__MODEL
	EnvPrefix = "TUTOR_"
	// EnvConfigFile names an optional YAML file
	EnvConfigFile = "TUTOR_CONFIG"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. the YAML file named by TUTOR_CONFIG, if set
//  3. TUTOR_* env vars, where "__" separates sections (TUTOR_SERVER__ADDR -> server.addr)
//
// Conventional variables (GEMINI_API_KEY, OPENAI_API_KEY, DATABASE_URL, REDIS_URL)
// fill fields left empty by the layers above.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyConventionalEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps TUTOR_RATE_LIMIT__DEFAULT_LIMIT to rate_limit.default_limit
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func applyConventionalEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch llm.Provider(cfg.LLM.Provider) {
		case llm.ProviderOpenAI:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && os.Getenv(EnvPrefix+"DATABASE__URL") == "" {
		cfg.Database.URL = v
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = os.Getenv("REDIS_URL")
	}
}

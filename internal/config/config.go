// Package config loads recollect configuration from a YAML file and
// RECOLLECT_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/store"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBPath string `mapstructure:"db"`

	EmbeddingProvider string `mapstructure:"embedding_provider"` // openai, ollama, or hash
	EmbeddingModel    string `mapstructure:"embedding_model"`
	EmbeddingBaseURL  string `mapstructure:"embedding_base_url"`
	EmbeddingAPIKey   string `mapstructure:"embedding_api_key"`
	EmbeddingDims     int    `mapstructure:"embedding_dims"`

	DecayHalfLifeDays   float64 `mapstructure:"decay_half_life_days"`
	EnableLexical       bool    `mapstructure:"enable_lexical"`
	MaxConcurrentEmbeds int64   `mapstructure:"max_concurrent_embeds"`
	HopfieldBeta        float64 `mapstructure:"hopfield_beta"`
	HopfieldIters       int     `mapstructure:"hopfield_iters"`
}

// Load reads $RECOLLECT_CONFIG (or ~/.recollect/config.yaml) and the
// environment. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("db", filepath.Join(home, ".recollect", "memory.db"))
	v.SetDefault("embedding_provider", "ollama")
	// Empty model lets each provider pick its own default (ollama:
	// nomic-embed-text, openai: intfloat/multilingual-e5-base).
	v.SetDefault("embedding_model", "")
	v.SetDefault("embedding_base_url", "")
	v.SetDefault("embedding_dims", 768)
	v.SetDefault("decay_half_life_days", 30.0)
	v.SetDefault("enable_lexical", true)
	v.SetDefault("max_concurrent_embeds", 4)
	v.SetDefault("hopfield_beta", 4.0)
	v.SetDefault("hopfield_iters", 3)

	if path := os.Getenv("RECOLLECT_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, ".recollect"))
	}

	v.SetEnvPrefix("recollect")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Embedder constructs the configured embedding backend.
func (c *Config) Embedder() (embedding.Embedder, error) {
	switch c.EmbeddingProvider {
	case "openai":
		if c.EmbeddingAPIKey == "" {
			return nil, fmt.Errorf("embedding provider openai requires an api key")
		}
		return embedding.NewOpenAIEmbedder(c.EmbeddingBaseURL, c.EmbeddingAPIKey, c.EmbeddingModel, c.EmbeddingDims), nil
	case "ollama":
		return embedding.NewOllamaEmbedder(c.EmbeddingBaseURL, c.EmbeddingModel), nil
	case "hash":
		return embedding.NewHashEmbedder(c.EmbeddingDims), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", c.EmbeddingProvider)
	}
}

// StoreOptions builds store options from the configuration.
func (c *Config) StoreOptions() (store.Options, error) {
	emb, err := c.Embedder()
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{
		Embedder:            emb,
		EnableLexical:       c.EnableLexical,
		DecayHalfLifeDays:   c.DecayHalfLifeDays,
		MaxConcurrentEmbeds: c.MaxConcurrentEmbeds,
		HopfieldBeta:        c.HopfieldBeta,
		HopfieldIters:       c.HopfieldIters,
	}, nil
}

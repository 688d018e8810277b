package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type CorpusConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// ResolverConfig carries the deterministic resolver's tunables. The
// similarity threshold is the margin by which the best case-name match must
// beat the runner-up to count as a strict winner.
type ResolverConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	YearWindow          int     `toml:"year_window"`
	MissingFieldFactor  float64 `toml:"missing_field_factor"`
	YearBonus           float64 `toml:"year_bonus"`
	CourtBonus          float64 `toml:"court_bonus"`
	AgreementBonus      float64 `toml:"agreement_bonus"`
	PartialCeiling      float64 `toml:"partial_ceiling"`
}

type ArbiterConfig struct {
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	RejectThreshold float64 `toml:"reject_threshold"`
}

type ConcurrencyConfig struct {
	Workers int `toml:"workers"`
}

type Config struct {
	Graph       GraphConfig       `toml:"graph"`
	Corpus      CorpusConfig      `toml:"corpus"`
	LLM         LLMConfig         `toml:"llm"`
	Resolver    ResolverConfig    `toml:"resolver"`
	Arbiter     ArbiterConfig     `toml:"arbiter"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
}

// Default returns the configuration used when no file overrides a value.
// The partial ceiling sits just under the exact-match tier so no bonus can
// lift a partial or arbiter-assisted match into it.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{Path: "data/caselink.db"},
		Resolver: ResolverConfig{
			SimilarityThreshold: 0.25,
			YearWindow:          1,
			MissingFieldFactor:  0.6,
			YearBonus:           0.05,
			CourtBonus:          0.05,
			AgreementBonus:      0.05,
			PartialCeiling:      0.89,
		},
		Arbiter: ArbiterConfig{
			TimeoutSeconds:  30,
			RejectThreshold: 0.5,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

func (c *ArbiterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

package config

import (
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
)

type Config struct {
	ElmJSON            string   `json:"elm_json"`
	Exclude            []string `json:"exclude"`
	DiagnosticsDelayMS int      `json:"diagnostics_delay_ms"`
	GraphAddress       string   `json:"graph_address"`
	ParserPoolSize     int      `json:"parser_pool_size"`
	Root               string   `json:"root"` // only for dump!
}

var defaultConfig = Config{
	ElmJSON:            "elm.json",
	Exclude:            []string{"elm-stuff/**", "**/node_modules/**"},
	DiagnosticsDelayMS: 300,
	GraphAddress:       "localhost:0",
	ParserPoolSize:     4,
	Root:               ".",
}

// Default returns the configuration used when the client sends none.
func Default() Config {
	cfg := defaultConfig
	cfg.Exclude = append([]string(nil), defaultConfig.Exclude...)
	return cfg
}

func Load(v any) (Config, error) {
	cfg := Default()
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in src will overwrite.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return cfg, nil
}

// LoadFromJSON reads JSON from r into a Config.
func LoadFromJSON(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Excluded reports whether the slash separated path rel, relative to the
// workspace root, matches one of the exclude globs.
func (c Config) Excluded(rel string) bool {
	for _, pattern := range c.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

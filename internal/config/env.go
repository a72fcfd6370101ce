package config

import (
	"os"
	"strings"
)

const modelEnvPrefix = "PARROT_VOSK_MODEL_"

// Loader applies environment overrides on top of a FileConfig. Tests can override
// Lookup and Environ to inject deterministic maps.
type Loader struct {
	Lookup  func(string) (string, bool)
	Environ func() []string
}

// Load reads the config file at path and applies environment overrides.
func (l Loader) Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	l.Apply(&cfg)
	return cfg, nil
}

// Apply overrides cfg with PARROT_* environment variables.
func (l Loader) Apply(cfg *FileConfig) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.Environ == nil {
		l.Environ = os.Environ
	}

	overrideString(l.Lookup, "PARROT_LANG", &cfg.Practice.Lang)
	overrideString(l.Lookup, "PARROT_DECK", &cfg.Practice.Deck)
	overrideString(l.Lookup, "PARROT_LOG_LEVEL", &cfg.Log.Level)

	for _, kv := range l.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, modelEnvPrefix) {
			continue
		}
		value = strings.TrimSpace(value)
		lang := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, modelEnvPrefix), "_", "-"))
		if lang == "" || value == "" {
			continue
		}
		if cfg.Recognizer.Models == nil {
			cfg.Recognizer.Models = map[string]string{}
		}
		cfg.Recognizer.Models[lang] = value
	}
}

func overrideString(lookup func(string) (string, bool), key string, target **string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		v := strings.TrimSpace(value)
		*target = &v
	}
}

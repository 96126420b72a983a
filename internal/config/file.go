package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"gocit/internal/errors"
)

// LoadFile reads a YAML test configuration on top of the defaults, then applies
// CIT_* environment overrides. Keys missing from the file keep their default.
func LoadFile(path string) (*TestConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot read %q", path), "failed to load config: %v", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot parse %q", path), "failed to parse config: %v", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "configuration validation failed for %q", path)
	}
	return &cfg, nil
}

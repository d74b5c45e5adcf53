package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Load parses a workspace option file (`.luacheck.yaml`), the one
// config-file concern the core itself owns per §6. File discovery and
// `.gitignore` honouring remain the CLI front-end's job (§1 non-goals);
// this just decodes bytes the caller already read.
func Load(data []byte) (Options, error) {
	opts := Default()
	if len(data) == 0 {
		return opts, nil
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parse workspace options: %w", err)
	}
	if opts.InferTableSize == 0 {
		opts.InferTableSize = Default().InferTableSize
	}
	if opts.CheckBudget == 0 {
		opts.CheckBudget = DefaultCheckBudgetMillis
	}
	return opts, nil
}

// Dump serializes opts back to YAML, used by tests that round-trip a
// workspace snapshot.
func Dump(opts Options) ([]byte, error) {
	return yaml.Marshal(opts)
}

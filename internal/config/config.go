// Package config loads host-level diagnostic toggles for the Luminous CLI.
// These are knobs for the driver, not the language: the language core
// itself never reads an environment variable (spec.md §6).
package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds diagnostic toggles threaded into the compiler/VM as plain
// constructor parameters, never read again from inside lang/compiler or
// lang/vm.
type Config struct {
	TraceExec  bool `env:"LUMINOUS_TRACE_EXEC" yaml:"traceExec"`
	DumpChunks bool `env:"LUMINOUS_DUMP_CHUNKS" yaml:"dumpChunks"`
	StackMax   int  `env:"LUMINOUS_STACK_MAX" yaml:"stackMax"`

	// ImportPaths is read from luminous.yaml only. Nothing consults it:
	// the scanner resolves stdlib import targets under lib/src alone.
	ImportPaths []string `yaml:"importPaths"`
}

// projectFile is the optional project-level override file, layered under
// the env-var config: env vars win when both set the same field.
const projectFile = "luminous.yaml"

// Load layers an optional luminous.yaml project file found in dir under
// environment variables: loadYAML runs first so its values populate cfg,
// then env.Parse overwrites only the fields whose variable is actually
// set (no envDefault tags survive here), so an explicit env var always
// wins but an absent one never stomps a YAML-configured value.
func Load(dir string) (*Config, error) {
	var cfg Config
	if err := loadYAML(dir, &cfg); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(dir string, cfg *Config) error {
	b, err := os.ReadFile(dir + string(os.PathSeparator) + projectFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// parseFile reads and decodes the local YAML configuration file. A file that
// cannot be read surfaces the underlying error unchanged so the caller can
// distinguish "does not exist" from everything else; a file that exists but
// does not parse is wrapped in [ErrMalformedFile] and is always fatal.
func parseFile(path string) (*sections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg sections
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedFile, path, err)
	}

	return &cfg, nil
}

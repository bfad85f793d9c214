package crate

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a crate definition file:
//
//	crates:
//	  - id: genesis
//	    name: Genesis Supply Crate
//	    items:
//	      - {id: 12, name: Plasma Blade, weight: 70, rarity: common}
//	      - {id: 40, name: Void Visor, weight: 8, rarity: rare}
type File struct {
	Crates []Config `yaml:"crates"`
}

// ParseYAML decodes and validates a crate file. Unknown keys are rejected so
// typos in weights do not silently become zero.
func ParseYAML(data []byte) ([]Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse crate yaml: %w", err)
	}
	for i := range f.Crates {
		if err := f.Crates[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Crates, nil
}

// LoadYAML reads a crate file from disk.
func LoadYAML(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crate file: %w", err)
	}
	return ParseYAML(data)
}

package relay

import (
	"fmt"
	"os"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk layout of a relay table file:
//
//	relays:
//	  - pin: 18
//	    name: Living Light
//	    description: Living room main lighting
type tableFile struct {
	Relays []types.RelayDefinition `yaml:"relays"`
}

// LoadDefinitions returns the relay table to use. A non-empty path wins
// over the inline definitions. Either source is validated before use.
func LoadDefinitions(path string, inline []types.RelayDefinition) ([]types.RelayDefinition, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	defs := inline
	source := "config"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read relay table: %w", err)
		}

		var file tableFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse relay table %s: %w", path, err)
		}

		defs = file.Relays
		source = path
	}

	if err := validator.ValidateDefinitions(defs); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", source, err)
	}

	return defs, nil
}

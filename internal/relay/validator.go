package relay

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/relays-v1.json
var relayTableSchemaJSON string

type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("relays-v1.json",
		strings.NewReader(relayTableSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("relays-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateTable checks a JSON-encoded relay table against the schema.
func (v *Validator) ValidateTable(data []byte) error {
	var table interface{}
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(table); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

func (v *Validator) ValidateDefinitions(defs []types.RelayDefinition) error {
	if defs == nil {
		defs = []types.RelayDefinition{}
	}

	data, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to marshal relay table: %w", err)
	}

	return v.ValidateTable(data)
}

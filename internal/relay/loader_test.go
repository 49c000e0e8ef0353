package relay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relays.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write relay table: %v", err)
	}
	return path
}

func TestLoadDefinitionsFromFile(t *testing.T) {
	path := writeTable(t, `
relays:
  - pin: 21
    name: Garage Door
    description: Garage door opener
  - pin: 22
    name: Porch Light
`)

	defs, err := LoadDefinitions(path, testDefinitions())
	if err != nil {
		t.Fatalf("LoadDefinitions() error = %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Pin != 21 || defs[0].Name != "Garage Door" || defs[0].Description != "Garage door opener" {
		t.Errorf("unexpected first definition: %+v", defs[0])
	}
	if defs[1].Description != "" {
		t.Errorf("description should default to empty, got %q", defs[1].Description)
	}
}

func TestLoadDefinitionsInline(t *testing.T) {
	defs, err := LoadDefinitions("", testDefinitions())
	if err != nil {
		t.Fatalf("LoadDefinitions() error = %v", err)
	}
	if len(defs) != 2 || defs[1].Name != "Bedroom Light" {
		t.Errorf("unexpected definitions: %+v", defs)
	}
}

func TestLoadDefinitionsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		inline []types.RelayDefinition
	}{
		{name: "empty inline table", inline: nil},
		{name: "missing name", inline: []types.RelayDefinition{{Pin: 3}}},
		{name: "negative pin", inline: []types.RelayDefinition{{Pin: -1, Name: "x"}}},
		{name: "empty file table", file: "relays: []\n"},
		{name: "malformed yaml", file: "relays: [pin: 1\n"},
		{name: "blank name in file", file: "relays:\n  - pin: 1\n    name: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeTable(t, tt.file)
			}
			if _, err := LoadDefinitions(path, tt.inline); err == nil {
				t.Error("LoadDefinitions() should have failed")
			}
		})
	}
}

func TestLoadDefinitionsMissingFile(t *testing.T) {
	if _, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope.yaml"), testDefinitions()); err == nil {
		t.Error("LoadDefinitions() with missing file should fail")
	}
}

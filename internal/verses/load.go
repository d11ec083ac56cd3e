package verses

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/verseclock/internal/apperr"
)

//go:embed data/verses.yaml
var defaultTableYAML []byte

// Parse decodes a YAML mapping of "HH:MM" keys to {text, categories}
// entries. Document order becomes table order.
func Parse(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("verses: parse: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, apperr.ErrEmptyTable
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("verses: parse: top level must be a mapping, line %d", root.Line)
	}

	items := make([]Item, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		var it Item
		if err := valNode.Decode(&it); err != nil {
			return nil, fmt.Errorf("verses: parse %q (line %d): %w", keyNode.Value, keyNode.Line, err)
		}
		it.Key = keyNode.Value
		items = append(items, it)
	}
	return NewTable(items...)
}

// LoadFile reads and parses a verse table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("verses: read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Parse(defaultTableYAML)
}

// Load returns the table at path, or the built-in table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

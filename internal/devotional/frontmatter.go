package devotional

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// meta is the YAML frontmatter of a devotional template.
type meta struct {
	Title    string   `yaml:"title"`
	Books    []string `yaml:"books"`
	Keywords []string `yaml:"keywords"`
	Default  bool     `yaml:"default"`
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the Markdown body. Templates must carry frontmatter with a title.
func splitFrontmatter(data []byte) (meta, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return meta{}, "", fmt.Errorf("missing frontmatter")
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return meta{}, "", fmt.Errorf("unterminated frontmatter")
	}

	var m meta
	if err := yaml.Unmarshal(rest[:idx], &m); err != nil {
		return meta{}, "", fmt.Errorf("frontmatter: %w", err)
	}
	if m.Title == "" {
		return meta{}, "", fmt.Errorf("frontmatter: title is required")
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return m, body, nil
}

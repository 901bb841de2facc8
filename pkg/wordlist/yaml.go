package wordlist

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlWord is one entry of a YAML word list. An entry is either a bare
// string or a mapping with metadata.
type yamlWord struct {
	ID          string   `yaml:"id,omitempty"`
	Text        string   `yaml:"text"`
	Category    string   `yaml:"category,omitempty"`
	Severity    string   `yaml:"severity,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Variants    []string `yaml:"variants,omitempty"`
}

func (w *yamlWord) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		w.Text = node.Value
		return nil
	case yaml.MappingNode:
		type plain yamlWord
		return node.Decode((*plain)(w))
	default:
		return fmt.Errorf("line %d: word must be a string or a mapping", node.Line)
	}
}

// yamlWordlistFile is the top-level structure of a word list file. Category
// and severity apply to every word that does not set its own.
type yamlWordlistFile struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Language    string     `yaml:"language,omitempty"`
	Category    string     `yaml:"category,omitempty"`
	Severity    string     `yaml:"severity,omitempty"`
	Words       []yamlWord `yaml:"words"`
}

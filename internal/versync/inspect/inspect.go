// Package inspect reads the current value of a field rule through a
// structured parse of the document, falling back to the rule's own pattern.
package inspect

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gear-foundation/versync/internal/versync/patcher"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Dependency is a Cargo dependency specification. A bare string value is
// decoded into Version.
type Dependency struct {
	Version   string `mapstructure:"version"`
	Git       string `mapstructure:"git"`
	Tag       string `mapstructure:"tag"`
	Branch    string `mapstructure:"branch"`
	Path      string `mapstructure:"path"`
	Workspace bool   `mapstructure:"workspace"`
}

// cargoTables lists dependency tables in lookup order.
var cargoTables = [][]string{
	{"workspace", "dependencies"},
	{"dependencies"},
	{"dev-dependencies"},
	{"build-dependencies"},
}

// CargoDependencies returns the dependencies of a Cargo manifest keyed by
// table ("workspace.dependencies", "dependencies", ...) and crate name.
func CargoDependencies(content []byte) (map[string]map[string]Dependency, error) {
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	out := make(map[string]map[string]Dependency)
	for _, path := range cargoTables {
		table, ok := lookupTable(doc, path)
		if !ok {
			continue
		}
		deps := make(map[string]Dependency, len(table))
		for name, raw := range table {
			dep, err := decodeDependency(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", strings.Join(path, "."), name, err)
			}
			deps[name] = dep
		}
		out[strings.Join(path, ".")] = deps
	}
	return out, nil
}

func lookupTable(doc map[string]any, path []string) (map[string]any, bool) {
	cur := doc
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func decodeDependency(raw any) (Dependency, error) {
	switch v := raw.(type) {
	case string:
		return Dependency{Version: v}, nil
	case map[string]any:
		var dep Dependency
		if err := mapstructure.Decode(v, &dep); err != nil {
			return Dependency{}, err
		}
		return dep, nil
	default:
		return Dependency{}, fmt.Errorf("unsupported dependency value %T", raw)
	}
}

// YAMLValues returns the scalar values of every mapping entry named key,
// anywhere in the document, in document order.
func YAMLValues(content []byte, key string) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, err
	}
	var out []string
	walkYAML(&root, key, &out)
	return out, nil
}

func walkYAML(n *yaml.Node, key string, out *[]string) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Value == key && v.Kind == yaml.ScalarNode {
				*out = append(*out, v.Value)
			}
			walkYAML(v, key, out)
		}
		return
	}
	for _, c := range n.Content {
		walkYAML(c, key, out)
	}
}

// CurrentValues returns the values the rule's field currently holds in the
// document at path. The structured read only covers the common dependency
// tables and plain YAML mappings; when it disagrees with the occurrences the
// rule's pattern would rewrite, the pattern's view wins.
func CurrentValues(path string, content []byte, rule patcher.FieldRule) []string {
	found := rule.Find(content)
	structured, ok := structuredValues(path, content, rule)
	if !ok || !sameValues(structured, found) {
		return found
	}
	return structured
}

func structuredValues(path string, content []byte, rule patcher.FieldRule) ([]string, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".toml" && (rule.Kind == patcher.KindVersion || rule.Kind == patcher.KindGitTag):
		tables, err := CargoDependencies(content)
		if err != nil {
			return nil, false
		}
		var out []string
		for _, table := range cargoTables {
			dep, ok := tables[strings.Join(table, ".")][rule.Key]
			if !ok {
				continue
			}
			value := dep.Version
			if rule.Kind == patcher.KindGitTag {
				value = dep.Tag
			}
			if value != "" {
				out = append(out, value)
			}
		}
		return out, true

	case (ext == ".yml" || ext == ".yaml") && rule.Kind == patcher.KindYAMLKey:
		values, err := YAMLValues(content, rule.Key)
		if err != nil {
			return nil, false
		}
		return values, true
	}

	return nil, false
}

// sameValues reports whether a and b hold the same distinct values.
func sameValues(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	other := make(map[string]bool, len(b))
	for _, v := range b {
		if !set[v] {
			return false
		}
		other[v] = true
	}
	return len(set) == len(other)
}

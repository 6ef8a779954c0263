// Package patcher rewrites version values of named fields in text files.
//
// Every FieldRule is anchored to one field name at the start of a line and
// carries a "version" capture group. Only the bytes of that group are replaced,
// so formatting, comments and neighbouring fields are preserved verbatim.
package patcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects how a rule locates its field.
type Kind string

const (
	// KindVersion matches `key = "X"` and `key = { ..., version = "X", ... }`.
	KindVersion Kind = "version"
	// KindGitTag matches the tag of `key = { git = "...", tag = "X" }`.
	KindGitTag Kind = "git-tag"
	// KindYAMLKey matches a `KEY: X` line, optionally quoted.
	KindYAMLKey Kind = "yaml-key"
	// KindPattern uses a caller supplied expression with a (?P<version>...) group.
	KindPattern Kind = "pattern"
)

const versionGroup = "version"

// FieldRule describes one field whose value tracks an upstream version.
type FieldRule struct {
	Name        string // label used in logs and reports
	Key         string // field key, empty for KindPattern
	Kind        Kind
	Upstream    string         // upstream whose resolved version is written
	ValuePrefix string         // prepended to the bare version, e.g. "v"
	Pattern     *regexp.Regexp // has a named "version" group
}

// Spec is the declarative form of a FieldRule.
type Spec struct {
	Kind        Kind
	Key         string
	Name        string
	Upstream    string
	ValuePrefix *string // nil selects the kind's default
	Pattern     string  // KindPattern only
}

// NewRule compiles spec into a FieldRule.
func NewRule(spec Spec) (FieldRule, error) {
	rule := FieldRule{
		Name:     spec.Name,
		Key:      spec.Key,
		Kind:     spec.Kind,
		Upstream: spec.Upstream,
	}
	if rule.Name == "" {
		rule.Name = spec.Key
	}
	if spec.Upstream == "" {
		return FieldRule{}, invalidRule(rule.Name, "upstream is required")
	}

	var expr string
	switch spec.Kind {
	case KindVersion:
		expr = tomlKey(spec.Key) + `(?:\{(?:[^}\n]*?,)?[ \t]*version[ \t]*=[ \t]*)?"(?P<version>[^"\n]*)"`
	case KindGitTag:
		expr = tomlKey(spec.Key) + `\{(?:[^}\n]*?,)?[ \t]*tag[ \t]*=[ \t]*"(?P<version>[^"\n]*)"`
		rule.ValuePrefix = "v"
	case KindYAMLKey:
		expr = `(?m)^[ \t]*(?:-[ \t]+)?` + regexp.QuoteMeta(spec.Key) +
			`:[ \t]*["']?(?P<version>v?[0-9]+\.[0-9]+\.[0-9]+)["']?[ \t]*(?:#[^\n]*)?\r?$`
	case KindPattern:
		expr = spec.Pattern
		if rule.Name == "" {
			rule.Name = spec.Pattern
		}
	default:
		return FieldRule{}, invalidRule(rule.Name, fmt.Sprintf("unknown kind %q", spec.Kind))
	}

	if spec.Kind != KindPattern && strings.TrimSpace(spec.Key) == "" {
		return FieldRule{}, invalidRule(rule.Name, "key is required")
	}
	if spec.ValuePrefix != nil {
		rule.ValuePrefix = *spec.ValuePrefix
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return FieldRule{}, ErrInvalidRule.MsgErr(fmt.Sprintf("rule %s: bad pattern", rule.Name), err)
	}
	if re.SubexpIndex(versionGroup) < 0 {
		return FieldRule{}, invalidRule(rule.Name, "pattern has no (?P<version>...) group")
	}
	rule.Pattern = re
	return rule, nil
}

// MustRule is NewRule that panics on error. Intended for built-in rule tables.
func MustRule(spec Spec) FieldRule {
	rule, err := NewRule(spec)
	if err != nil {
		panic(err)
	}
	return rule
}

// Render returns the field value for the bare version.
func (r FieldRule) Render(version string) string {
	return r.ValuePrefix + version
}

// Find returns the current values of every occurrence of the field.
func (r FieldRule) Find(content []byte) []string {
	gi := r.Pattern.SubexpIndex(versionGroup)
	var out []string
	for _, m := range r.Pattern.FindAllSubmatch(content, -1) {
		if m[gi] != nil {
			out = append(out, string(m[gi]))
		}
	}
	return out
}

// tomlKey anchors a bare or quoted TOML key at the start of a line.
func tomlKey(key string) string {
	k := regexp.QuoteMeta(key)
	return `(?m)^[ \t]*(?:` + k + `|"` + k + `")[ \t]*=[ \t]*`
}

func invalidRule(name, reason string) error {
	return ErrInvalidRule.MsgErr(fmt.Sprintf("rule %s", name), fmt.Errorf("%s", reason))
}

// StringPtr is a helper for Spec.ValuePrefix.
func StringPtr(s string) *string {
	return &s
}

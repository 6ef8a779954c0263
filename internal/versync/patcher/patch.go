package patcher

import (
	"bytes"
	"fmt"
	"strings"
)

// RuleResult records what one rule did to a document.
type RuleResult struct {
	Rule     string
	Upstream string
	Value    string   // rendered value written to every match
	Previous []string // values found before patching, one per match
	Changed  int      // matches whose value differed from Value
}

// Matches is the number of field occurrences the rule found.
func (r RuleResult) Matches() int {
	return len(r.Previous)
}

// Patch is the in-memory result of applying rules to a document.
type Patch struct {
	Original []byte
	Content  []byte
	Results  []RuleResult
}

// Changed reports whether the patched content differs from the original.
func (p *Patch) Changed() bool {
	return !bytes.Equal(p.Original, p.Content)
}

// Apply substitutes versions[rule.Upstream] into every occurrence of each
// rule's field, in declaration order. Every rule must have a version.
func Apply(content []byte, rules []FieldRule, versions map[string]string) (*Patch, error) {
	p := &Patch{
		Original: content,
		Content:  content,
		Results:  make([]RuleResult, 0, len(rules)),
	}

	for _, rule := range rules {
		version, ok := versions[rule.Upstream]
		if !ok || strings.TrimSpace(version) == "" {
			return nil, ErrMissingVersion.Msg(fmt.Sprintf("rule %s needs a version of upstream %q", rule.Name, rule.Upstream))
		}
		var res RuleResult
		p.Content, res = applyRule(p.Content, rule, rule.Render(version))
		p.Results = append(p.Results, res)
	}
	return p, nil
}

func applyRule(content []byte, rule FieldRule, value string) ([]byte, RuleResult) {
	res := RuleResult{
		Rule:     rule.Name,
		Upstream: rule.Upstream,
		Value:    value,
	}

	gi := rule.Pattern.SubexpIndex(versionGroup)
	matches := rule.Pattern.FindAllSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, res
	}

	var out bytes.Buffer
	out.Grow(len(content) + len(matches)*len(value))
	last := 0
	for _, m := range matches {
		start, end := m[2*gi], m[2*gi+1]
		if start < 0 {
			continue
		}
		prev := string(content[start:end])
		res.Previous = append(res.Previous, prev)
		if prev != value {
			res.Changed++
		}
		out.Write(content[last:start])
		out.WriteString(value)
		last = end
	}
	out.Write(content[last:])
	return out.Bytes(), res
}

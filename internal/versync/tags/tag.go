// Package tags resolves the newest release of an upstream repository from its
// tag list. A tag qualifies when, after its required prefix is removed, it is
// exactly MAJOR.MINOR.PATCH. A single leading "v" is also accepted unless the
// prefix already ends in "v". Pre-release and build metadata tags never qualify.
package tags

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var releaseRe = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)$`)

// Tag is a qualifying release tag.
type Tag struct {
	Name   string // raw tag name as returned by the remote
	Prefix string // prefix the tag was matched under
	Major  uint64
	Minor  uint64
	Patch  uint64

	semver *semver.Version
}

// ParseTag parses raw under prefix. It reports false for tags that do not
// carry the prefix or whose remainder is not a plain release triple.
func ParseTag(raw, prefix string) (Tag, bool) {
	if !strings.HasPrefix(raw, prefix) {
		return Tag{}, false
	}
	rest := strings.TrimPrefix(raw, prefix)
	if !strings.HasSuffix(prefix, "v") {
		rest = strings.TrimPrefix(rest, "v")
	}
	m := releaseRe.FindStringSubmatch(rest)
	if m == nil {
		return Tag{}, false
	}

	var parts [3]uint64
	for i := range parts {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return Tag{}, false
		}
		parts[i] = n
	}

	return Tag{
		Name:   raw,
		Prefix: prefix,
		Major:  parts[0],
		Minor:  parts[1],
		Patch:  parts[2],
		semver: semver.New(parts[0], parts[1], parts[2], "", ""),
	}, true
}

// Version returns the bare MAJOR.MINOR.PATCH string.
func (t Tag) Version() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Semver returns the tag as a semantic version.
func (t Tag) Semver() *semver.Version {
	if t.semver == nil {
		return semver.New(t.Major, t.Minor, t.Patch, "", "")
	}
	return t.semver
}

// Compare compares the numeric triples field by field.
func (t Tag) Compare(o Tag) int {
	return t.Semver().Compare(o.Semver())
}

func (t Tag) String() string {
	return t.Name
}

// Qualifying returns the tags of names that parse under prefix and satisfy
// constraint (nil means any), newest first. Equal versions keep input order.
func Qualifying(names []string, prefix string, constraint *semver.Constraints) []Tag {
	out := make([]Tag, 0, len(names))
	for _, name := range names {
		tag, ok := ParseTag(strings.TrimSpace(name), prefix)
		if !ok {
			continue
		}
		if constraint != nil && !constraint.Check(tag.Semver()) {
			continue
		}
		out = append(out, tag)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Compare(out[j]) > 0
	})
	return out
}

// Latest returns the newest qualifying tag, or ErrNoMatchingTag.
func Latest(names []string, prefix string, constraint *semver.Constraints) (Tag, error) {
	qualifying := Qualifying(names, prefix, constraint)
	if len(qualifying) == 0 {
		msg := fmt.Sprintf("none of %d tags matches %sMAJOR.MINOR.PATCH", len(names), prefix)
		if constraint != nil {
			msg += " within " + constraint.String()
		}
		return Tag{}, ErrNoMatchingTag.Msg(msg)
	}
	return qualifying[0], nil
}

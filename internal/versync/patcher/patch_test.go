package patcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `[workspace.dependencies]
# gear
gstd = "1.2.0"
gear-core = "1.2.0"
gtest = { git = "https://example/repo", tag = "v1.2.0" }
parity-scale-codec = { version = "1.2.0", default-features = false }
sails-rs = "0.5.0"
`

func gearRules() []FieldRule {
	return []FieldRule{
		MustRule(Spec{Kind: KindVersion, Key: "gstd", Upstream: "gear"}),
		MustRule(Spec{Kind: KindVersion, Key: "gear-core", Upstream: "gear"}),
		MustRule(Spec{Kind: KindGitTag, Key: "gtest", Upstream: "gear"}),
		MustRule(Spec{Kind: KindVersion, Key: "sails-rs", Upstream: "sails"}),
	}
}

func TestApply(t *testing.T) {
	versions := map[string]string{"gear": "1.11.0", "sails": "0.6.0"}

	p, err := Apply([]byte(manifest), gearRules(), versions)
	require.NoError(t, err)
	assert.True(t, p.Changed())
	assert.Equal(t, `[workspace.dependencies]
# gear
gstd = "1.11.0"
gear-core = "1.11.0"
gtest = { git = "https://example/repo", tag = "v1.11.0" }
parity-scale-codec = { version = "1.2.0", default-features = false }
sails-rs = "0.6.0"
`, string(p.Content))

	require.Len(t, p.Results, 4)
	assert.Equal(t, []string{"v1.2.0"}, p.Results[2].Previous)
	assert.Equal(t, "v1.11.0", p.Results[2].Value)
	assert.Equal(t, 1, p.Results[2].Changed)
	assert.Equal(t, 1, p.Results[3].Matches())
}

func TestApplyExamples(t *testing.T) {
	versions := map[string]string{"gear": "1.11.0"}

	p, err := Apply([]byte(`gstd = "1.2.0"`), []FieldRule{MustRule(Spec{Kind: KindVersion, Key: "gstd", Upstream: "gear"})}, versions)
	require.NoError(t, err)
	assert.Equal(t, `gstd = "1.11.0"`, string(p.Content))

	p, err = Apply([]byte(`gtest = { git = "https://example/repo", tag = "v1.2.0" }`),
		[]FieldRule{MustRule(Spec{Kind: KindGitTag, Key: "gtest", Upstream: "gear"})}, versions)
	require.NoError(t, err)
	assert.Equal(t, `gtest = { git = "https://example/repo", tag = "v1.11.0" }`, string(p.Content))
}

func TestApplyIdempotent(t *testing.T) {
	versions := map[string]string{"gear": "1.11.0", "sails": "0.6.0"}

	first, err := Apply([]byte(manifest), gearRules(), versions)
	require.NoError(t, err)
	second, err := Apply(first.Content, gearRules(), versions)
	require.NoError(t, err)

	assert.False(t, second.Changed())
	assert.Equal(t, first.Content, second.Content)
	for _, res := range second.Results {
		assert.Zero(t, res.Changed, res.Rule)
	}
}

func TestApplyFieldIsolation(t *testing.T) {
	doc := `gstd = "1.2.0"
gstd-extra = "1.2.0"
my-gstd = "1.2.0"
gmeta = { version = "1.2.0" }
`
	p, err := Apply([]byte(doc), []FieldRule{MustRule(Spec{Kind: KindVersion, Key: "gstd", Upstream: "gear"})},
		map[string]string{"gear": "1.3.0"})
	require.NoError(t, err)
	assert.Equal(t, `gstd = "1.3.0"
gstd-extra = "1.2.0"
my-gstd = "1.2.0"
gmeta = { version = "1.2.0" }
`, string(p.Content))
}

func TestApplyEveryOccurrence(t *testing.T) {
	doc := `[dependencies]
gstd = "1.0.0"

[dev-dependencies]
gstd = { version = "1.0.1", features = ["debug"] }
`
	p, err := Apply([]byte(doc), []FieldRule{MustRule(Spec{Kind: KindVersion, Key: "gstd", Upstream: "gear"})},
		map[string]string{"gear": "1.0.1"})
	require.NoError(t, err)
	assert.Contains(t, string(p.Content), `gstd = "1.0.1"`)
	assert.Equal(t, []string{"1.0.0", "1.0.1"}, p.Results[0].Previous)
	assert.Equal(t, 1, p.Results[0].Changed)
}

func TestApplyYAML(t *testing.T) {
	doc := "env:\n  GEAR_VERSION: 1.2.0 # keep in sync\n"
	rule := MustRule(Spec{Kind: KindYAMLKey, Key: "GEAR_VERSION", Upstream: "gear"})
	p, err := Apply([]byte(doc), []FieldRule{rule}, map[string]string{"gear": "1.11.0"})
	require.NoError(t, err)
	assert.Equal(t, "env:\n  GEAR_VERSION: 1.11.0 # keep in sync\n", string(p.Content))
}

func TestApplyYAMLSkipsNonVersionValues(t *testing.T) {
	doc := "env:\n" +
		"  GEAR_VERSION: ${{ vars.GEAR_VERSION }}\n" +
		"  - GEAR_VERSION: latest\n" +
		"  GEAR_VERSION: 1.2.0-rc.1\n" +
		"  GEAR_VERSION: \"1.2.0\" \r\n"
	rule := MustRule(Spec{Kind: KindYAMLKey, Key: "GEAR_VERSION", Upstream: "gear"})
	p, err := Apply([]byte(doc), []FieldRule{rule}, map[string]string{"gear": "1.11.0"})
	require.NoError(t, err)

	want := strings.Replace(doc, `"1.2.0"`, `"1.11.0"`, 1)
	assert.Equal(t, want, string(p.Content))
	assert.Equal(t, []string{"1.2.0"}, p.Results[0].Previous)

	p, err = Apply([]byte("env:\n  GEAR_VERSION: ${{ vars.GEAR_VERSION }}\n"), []FieldRule{rule}, map[string]string{"gear": "1.11.0"})
	require.NoError(t, err)
	assert.False(t, p.Changed())
	assert.Zero(t, p.Results[0].Matches())
}

func TestApplyNoMatch(t *testing.T) {
	rule := MustRule(Spec{Kind: KindVersion, Key: "gclient", Upstream: "gear"})
	p, err := Apply([]byte(manifest), []FieldRule{rule}, map[string]string{"gear": "1.11.0"})
	require.NoError(t, err)
	assert.False(t, p.Changed())
	assert.Zero(t, p.Results[0].Matches())
}

func TestApplyMissingVersion(t *testing.T) {
	_, err := Apply([]byte(manifest), gearRules(), map[string]string{"gear": "1.11.0"})
	assert.ErrorIs(t, err, ErrMissingVersion)

	_, err = Apply([]byte(manifest), gearRules(), map[string]string{"gear": "1.11.0", "sails": " "})
	assert.ErrorIs(t, err, ErrMissingVersion)
}

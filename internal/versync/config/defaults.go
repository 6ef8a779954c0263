package config

import "github.com/gear-foundation/versync/internal/versync/patcher"

const (
	DefaultAPIURL    = "https://api.github.com"
	DefaultTimeout   = "10s"
	DefaultManifest  = "Cargo.toml"
	DefaultWorkflows = ".github/workflows/*.yml"

	// DefaultConfigFile is picked up from the working directory when present.
	DefaultConfigFile = "versync.yaml"
)

// DefaultConfig tracks the Gear runtime and the Sails framework and keeps the
// workspace manifest and CI workflows of a Gear dapps repository in sync.
func DefaultConfig() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		WriteMode: string(patcher.WriteChanged),
		Upstreams: []Upstream{
			{Name: "gear", Repo: "gear-tech/gear"},
			{Name: "sails", Repo: "gear-tech/sails", Prefix: "rs/v"},
		},
		Targets: []Target{
			{
				Path: DefaultManifest,
				Rules: []Rule{
					{Key: "gstd", Kind: string(patcher.KindVersion), Upstream: "gear"},
					{Key: "gmeta", Kind: string(patcher.KindVersion), Upstream: "gear"},
					{Key: "gclient", Kind: string(patcher.KindVersion), Upstream: "gear"},
					{Key: "gear-core", Kind: string(patcher.KindVersion), Upstream: "gear"},
					{Key: "gear-wasm-builder", Kind: string(patcher.KindVersion), Upstream: "gear"},
					{Key: "gtest", Kind: string(patcher.KindGitTag), Upstream: "gear"},
					{Key: "sails-rs", Kind: string(patcher.KindVersion), Upstream: "sails"},
					{Key: "sails-idl-gen", Kind: string(patcher.KindVersion), Upstream: "sails"},
					{Key: "sails-client-gen", Kind: string(patcher.KindVersion), Upstream: "sails"},
				},
			},
			{
				Path: DefaultWorkflows,
				Rules: []Rule{
					{Key: "GEAR_VERSION", Kind: string(patcher.KindYAMLKey), Upstream: "gear"},
				},
			},
		},
	}
}

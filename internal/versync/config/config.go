// Package config loads and validates the versync configuration: the tracked
// upstream repositories, the target files and the field rules applied to them.
// Every value has a built-in default so that versync runs without a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gear-foundation/versync/internal/version"
	"github.com/gear-foundation/versync/internal/versync/patcher"
	"github.com/gear-foundation/versync/internal/versync/tags"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Upstream is a tracked remote repository.
type Upstream struct {
	Name       string `yaml:"name" validate:"required"`
	Repo       string `yaml:"repo" validate:"required"` // owner/name
	Prefix     string `yaml:"prefix,omitempty"`         // required tag prefix, e.g. "rs/v"
	Constraint string `yaml:"constraint,omitempty"`     // optional semver range, e.g. "< 2.0.0"
}

// Rule is the declarative form of a patcher.FieldRule.
type Rule struct {
	Name        string  `yaml:"name,omitempty"`
	Kind        string  `yaml:"kind" validate:"required,oneof=version git-tag yaml-key pattern"`
	Key         string  `yaml:"key,omitempty" validate:"required_unless=Kind pattern"`
	Pattern     string  `yaml:"pattern,omitempty" validate:"required_if=Kind pattern"`
	Upstream    string  `yaml:"upstream" validate:"required"`
	ValuePrefix *string `yaml:"value_prefix,omitempty"`
}

// Target is a file, or a glob of files, and the rules applied to it.
type Target struct {
	Path     string `yaml:"path" validate:"required"`
	Optional bool   `yaml:"optional,omitempty"` // a glob may match no file
	Rules    []Rule `yaml:"rules" validate:"required,min=1,dive"`
}

// Config holds all versync settings.
type Config struct {
	APIURL    string     `yaml:"api_url" validate:"required,url"`
	Timeout   string     `yaml:"timeout"`
	PerPage   int        `yaml:"per_page" validate:"gte=0,lte=100"`
	MaxPages  int        `yaml:"max_pages" validate:"gte=0"`
	WriteMode string     `yaml:"write_mode" validate:"omitempty,oneof=changed always"`
	Upstreams []Upstream `yaml:"upstreams" validate:"required,min=1,dive"`
	Targets   []Target   `yaml:"targets" validate:"required,min=1,dive"`

	Token string `yaml:"-"` // from the environment only
}

// LoadConfig returns the configuration for workDir. An explicit file must
// exist; without one, versync.yaml in workDir is used when present and the
// built-in defaults otherwise. A .env file in workDir is loaded before the
// API token is read from VERSYNC_GITHUB_TOKEN or GITHUB_TOKEN.
func LoadConfig(file, workDir string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := file != ""
	if !explicit {
		file = filepath.Join(workDir, DefaultConfigFile)
	}

	raw, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, ErrInvalidConfig.MsgErr(fmt.Sprintf("parsing %s", file), err)
		}
		log.Debug().Str("config_file", file).Msg("loaded config file")
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, ErrConfigNotFound.MsgErr(fmt.Sprintf("reading %s", file), err)
	default:
		log.Debug().Msg("no config file, using built-in defaults")
	}

	envFile := filepath.Join(workDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, ErrInvalidConfig.MsgErr(fmt.Sprintf("loading %s", envFile), err)
	}
	cfg.Token = TokenFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TokenFromEnv returns the GitHub API token, if any.
func TokenFromEnv() string {
	if tok := strings.TrimSpace(os.Getenv("VERSYNC_GITHUB_TOKEN")); tok != "" {
		return tok
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and cross references.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ErrInvalidConfig.Err(err)
		}
		for _, fe := range verrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	if _, err := c.GetTimeoutDuration(); err != nil {
		problems = append(problems, err.Error())
	}

	names := make(map[string]bool, len(c.Upstreams))
	for i, u := range c.Upstreams {
		if names[u.Name] {
			problems = append(problems, fmt.Sprintf("upstreams[%d]: duplicate name %q", i, u.Name))
		}
		names[u.Name] = true
		if _, err := u.Query(); err != nil {
			problems = append(problems, fmt.Sprintf("upstreams[%d]: %s", i, describe(err)))
		}
	}

	for i, t := range c.Targets {
		for j, r := range t.Rules {
			if r.Upstream != "" && !names[r.Upstream] {
				problems = append(problems, fmt.Sprintf("targets[%d].rules[%d]: unknown upstream %q", i, j, r.Upstream))
			}
		}
		if len(problems) == 0 {
			if _, err := t.FieldRules(); err != nil {
				problems = append(problems, fmt.Sprintf("targets[%d]: %s", i, describe(err)))
			}
		}
	}

	if len(problems) > 0 {
		return ErrInvalidConfig.MsgErr("invalid configuration", errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url":
		return field + " must be a URL"
	default:
		return fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param())
	}
}

func describe(err error) string {
	var appErr interface{ ErrorAll() string }
	if errors.As(err, &appErr) {
		return appErr.ErrorAll()
	}
	return err.Error()
}

// Query converts the upstream into a tag query.
func (u Upstream) Query() (tags.Query, error) {
	if _, _, err := tags.SplitRepo(u.Repo); err != nil {
		return tags.Query{}, err
	}
	q := tags.Query{Repo: u.Repo, Prefix: u.Prefix}
	if strings.TrimSpace(u.Constraint) != "" {
		c, err := semver.NewConstraint(u.Constraint)
		if err != nil {
			return tags.Query{}, ErrInvalidConfig.MsgErr(fmt.Sprintf("constraint %q", u.Constraint), err)
		}
		q.Constraint = c
	}
	return q, nil
}

// FieldRules compiles the target's rules.
func (t Target) FieldRules() ([]patcher.FieldRule, error) {
	rules := make([]patcher.FieldRule, 0, len(t.Rules))
	for _, r := range t.Rules {
		rule, err := patcher.NewRule(patcher.Spec{
			Kind:        patcher.Kind(r.Kind),
			Key:         r.Key,
			Name:        r.Name,
			Upstream:    r.Upstream,
			ValuePrefix: r.ValuePrefix,
			Pattern:     r.Pattern,
		})
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Upstream returns the upstream with the given name.
func (c *Config) Upstream(name string) (Upstream, bool) {
	for _, u := range c.Upstreams {
		if u.Name == name {
			return u, true
		}
	}
	return Upstream{}, false
}

// GetTimeoutDuration parses Timeout; empty selects DefaultTimeout.
func (c *Config) GetTimeoutDuration() (time.Duration, error) {
	s := c.Timeout
	if strings.TrimSpace(s) == "" {
		s = DefaultTimeout
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("timeout %q must be a positive duration", c.Timeout)
	}
	return d, nil
}

// GetWriteMode returns the configured write policy.
func (c *Config) GetWriteMode() patcher.WriteMode {
	if c.WriteMode == string(patcher.WriteAlways) {
		return patcher.WriteAlways
	}
	return patcher.WriteChanged
}

// GetServerURL implements httpclient.Configurator.
func (c *Config) GetServerURL() string { return c.APIURL }

// GetToken implements httpclient.Configurator.
func (c *Config) GetToken() string { return c.Token }

// GetUserAgent implements httpclient.Configurator.
func (c *Config) GetUserAgent() string { return version.UserAgent() }

// GetTimeout implements httpclient.Configurator.
func (c *Config) GetTimeout() time.Duration {
	d, err := c.GetTimeoutDuration()
	if err != nil {
		return 0
	}
	return d
}

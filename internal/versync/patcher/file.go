package patcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// WriteMode decides when a prepared file is written back.
type WriteMode string

const (
	WriteChanged WriteMode = "changed" // write only when content differs
	WriteAlways  WriteMode = "always"  // rewrite even when nothing changed
)

// Options control PatchFile and FilePatch.Write.
type Options struct {
	Mode   WriteMode
	DryRun bool
}

// FilePatch is a patch prepared for a file on disk but not yet written.
type FilePatch struct {
	Path string
	*Patch

	mode os.FileMode
}

// Prepare reads path, applies rules and checks that the result still parses.
// Nothing is written.
func Prepare(path string, rules []FieldRule, versions map[string]string) (*FilePatch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ErrFileIO.MsgErr(fmt.Sprintf("stat %s", path), err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrFileIO.MsgErr(fmt.Sprintf("reading %s", path), err)
	}

	p, err := Apply(content, rules, versions)
	if err != nil {
		return nil, err
	}
	if p.Changed() {
		if err := checkSyntax(path, p.Original, p.Content); err != nil {
			return nil, err
		}
	}

	return &FilePatch{Path: path, Patch: p, mode: info.Mode().Perm()}, nil
}

// Write stores the patched content according to opts and reports whether the
// file was written.
func (fp *FilePatch) Write(opts Options) (bool, error) {
	if opts.DryRun {
		return false, nil
	}
	if !fp.Changed() && opts.Mode != WriteAlways {
		log.Debug().Str("file", fp.Path).Msg("unchanged, not writing")
		return false, nil
	}
	if err := os.WriteFile(fp.Path, fp.Content, fp.mode); err != nil {
		return false, ErrFileIO.MsgErr(fmt.Sprintf("writing %s", fp.Path), err)
	}
	log.Info().Str("file", fp.Path).Bool("changed", fp.Changed()).Msg("file written")
	return true, nil
}

// PatchFile prepares and writes path in one step.
func PatchFile(path string, rules []FieldRule, versions map[string]string, opts Options) (*FilePatch, bool, error) {
	fp, err := Prepare(path, rules, versions)
	if err != nil {
		return nil, false, err
	}
	written, err := fp.Write(opts)
	return fp, written, err
}

// checkSyntax refuses a patch that turns a parsable TOML or YAML document
// into an unparsable one. Other file types are not checked.
func checkSyntax(path string, before, after []byte) error {
	var parse func([]byte) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parse = func(b []byte) error {
			var doc map[string]any
			return toml.Unmarshal(b, &doc)
		}
	case ".yml", ".yaml":
		parse = func(b []byte) error {
			var doc yaml.Node
			return yaml.Unmarshal(b, &doc)
		}
	default:
		return nil
	}

	if parse(before) != nil {
		log.Warn().Str("file", path).Msg("original does not parse, skipping syntax check")
		return nil
	}
	if err := parse(after); err != nil {
		return ErrCorruptPatch.MsgErr(fmt.Sprintf("refusing to write %s", path), err)
	}
	return nil
}

// Package synchronizer runs the version sync pipeline: resolve the newest
// release of every upstream a rule refers to, then patch every target file.
// All files are read and patched in memory before the first one is written.
package synchronizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gear-foundation/versync/internal/common/httpclient"
	"github.com/gear-foundation/versync/internal/versync/config"
	"github.com/gear-foundation/versync/internal/versync/inspect"
	"github.com/gear-foundation/versync/internal/versync/patcher"
	"github.com/gear-foundation/versync/internal/versync/tags"
	"github.com/rs/zerolog/log"
)

// Synchronizer keeps target files in line with upstream releases.
type Synchronizer struct {
	cfg      *config.Config
	resolver *tags.Resolver
	workDir  string
}

// New creates a synchronizer. Relative target paths are resolved against workDir.
func New(cfg *config.Config, resolver *tags.Resolver, workDir string) *Synchronizer {
	return &Synchronizer{
		cfg:      cfg,
		resolver: resolver,
		workDir:  workDir,
	}
}

// NewFromConfig creates a synchronizer that reads tags from the GitHub API
// described by cfg.
func NewFromConfig(cfg *config.Config, workDir string) *Synchronizer {
	client := httpclient.NewClient(cfg)
	source := tags.NewGitHubSource(client, cfg.PerPage, cfg.MaxPages)
	return New(cfg, tags.NewResolver(source), workDir)
}

// RunOptions control a sync run.
type RunOptions struct {
	DryRun bool
	Mode   patcher.WriteMode // empty uses the configured mode
}

type target struct {
	files []string
	rules []patcher.FieldRule
}

// Resolve returns the bare version of every upstream referenced by a rule.
// It stops at the first upstream that cannot be resolved.
func (s *Synchronizer) Resolve(ctx context.Context) (map[string]string, []UpstreamResult, error) {
	used := make(map[string]bool)
	for _, t := range s.cfg.Targets {
		for _, r := range t.Rules {
			used[r.Upstream] = true
		}
	}

	versions := make(map[string]string, len(used))
	results := make([]UpstreamResult, 0, len(used))
	for _, u := range s.cfg.Upstreams {
		if !used[u.Name] {
			log.Debug().Str("upstream", u.Name).Msg("not referenced by any rule, skipping")
			continue
		}
		q, err := u.Query()
		if err != nil {
			return nil, nil, err
		}
		tag, err := s.resolver.ResolveLatest(ctx, q)
		if err != nil {
			log.Error().Str("upstream", u.Name).Str("repo", u.Repo).Msg("cannot resolve latest release, no file was touched")
			return nil, nil, err
		}
		versions[u.Name] = tag.Version()
		results = append(results, UpstreamResult{
			Name:    u.Name,
			Repo:    u.Repo,
			Tag:     tag.Name,
			Version: tag.Version(),
		})
	}
	return versions, results, nil
}

// Run resolves upstream versions and patches every target file. A file named
// by several targets is patched once with all of their rules. Files are only
// written after all of them were read and patched successfully.
func (s *Synchronizer) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	versions, upstreams, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	targets, err := s.expandTargets()
	if err != nil {
		return nil, err
	}

	jobs, offsets := groupByFile(targets)
	prepared := make([]*patcher.FilePatch, 0, len(jobs))
	byPath := make(map[string]*patcher.FilePatch, len(jobs))
	for _, job := range jobs {
		fp, err := patcher.Prepare(job.path, job.rules, versions)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, fp)
		byPath[job.path] = fp
	}

	for ti, t := range targets {
		for i, rule := range t.rules {
			matched := 0
			for _, file := range t.files {
				matched += byPath[file].Results[offsets[ti][file]+i].Matches()
			}
			if matched == 0 {
				log.Warn().Str("field", rule.Name).Strs("files", t.files).Msg("rule matched no field")
			}
		}
	}

	mode := opts.Mode
	if mode == "" {
		mode = s.cfg.GetWriteMode()
	}
	writeOpts := patcher.Options{Mode: mode, DryRun: opts.DryRun}

	report := &Report{DryRun: opts.DryRun, Upstreams: upstreams}
	for _, fp := range prepared {
		written, err := fp.Write(writeOpts)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, fileResult(s.relPath(fp.Path), fp, written))
	}
	return report, nil
}

// Check compares the current value of every field with the latest release
// without modifying any file.
func (s *Synchronizer) Check(ctx context.Context) (*CheckReport, error) {
	versions, upstreams, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	targets, err := s.expandTargets()
	if err != nil {
		return nil, err
	}

	report := &CheckReport{Upstreams: upstreams}
	for _, t := range targets {
		for _, file := range t.files {
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, patcher.ErrFileIO.MsgErr(fmt.Sprintf("reading %s", file), err)
			}
			for _, rule := range t.rules {
				latest := rule.Render(versions[rule.Upstream])
				current := inspect.CurrentValues(file, content, rule)
				report.Entries = append(report.Entries, CheckEntry{
					Path:     s.relPath(file),
					Rule:     rule.Name,
					Upstream: rule.Upstream,
					Current:  current,
					Latest:   latest,
					Status:   status(current, latest),
				})
			}
		}
	}
	return report, nil
}

type fileJob struct {
	path  string
	rules []patcher.FieldRule
}

// groupByFile merges the rules of every target touching the same file, in
// declaration order, so that each file is patched once. offsets[t][file] is
// the index of target t's first rule within that file's rules.
func groupByFile(targets []target) ([]*fileJob, []map[string]int) {
	var jobs []*fileJob
	byPath := make(map[string]*fileJob)
	offsets := make([]map[string]int, len(targets))
	for ti, t := range targets {
		offsets[ti] = make(map[string]int, len(t.files))
		for _, file := range t.files {
			job, ok := byPath[file]
			if !ok {
				job = &fileJob{path: file}
				byPath[file] = job
				jobs = append(jobs, job)
			}
			offsets[ti][file] = len(job.rules)
			job.rules = append(job.rules, t.rules...)
		}
	}
	return jobs, offsets
}

func status(current []string, latest string) Status {
	if len(current) == 0 {
		return StatusMissing
	}
	for _, c := range current {
		if c != latest {
			return StatusOutdated
		}
	}
	return StatusCurrent
}

// expandTargets compiles rules and resolves target paths. Literal paths are
// kept even when missing so that reading them reports the I/O error; glob
// patterns must match at least one file unless the target is optional.
func (s *Synchronizer) expandTargets() ([]target, error) {
	out := make([]target, 0, len(s.cfg.Targets))
	for _, t := range s.cfg.Targets {
		rules, err := t.FieldRules()
		if err != nil {
			return nil, err
		}

		pattern := t.Path
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(s.workDir, pattern)
		}

		var files []string
		if isGlob(t.Path) {
			if !doublestar.ValidatePathPattern(pattern) {
				return nil, ErrInvalidTarget.Msg(fmt.Sprintf("bad glob pattern %q", t.Path))
			}
			files, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, ErrInvalidTarget.MsgErr(fmt.Sprintf("expanding %q", t.Path), err)
			}
			if len(files) == 0 {
				if t.Optional {
					log.Debug().Str("target", t.Path).Msg("optional target matched no files")
					continue
				}
				return nil, ErrNoTargetFiles.Msg(fmt.Sprintf("target %q matched no files", t.Path))
			}
		} else {
			if t.Optional {
				if _, err := os.Stat(pattern); os.IsNotExist(err) {
					log.Debug().Str("target", t.Path).Msg("optional target missing")
					continue
				}
			}
			files = []string{pattern}
		}
		for i := range files {
			files[i] = filepath.Clean(files[i])
		}
		out = append(out, target{files: files, rules: rules})
	}
	return out, nil
}

func isGlob(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func (s *Synchronizer) relPath(path string) string {
	if rel, err := filepath.Rel(s.workDir, path); err == nil {
		return rel
	}
	return path
}

func fileResult(path string, fp *patcher.FilePatch, written bool) FileResult {
	fr := FileResult{
		Path:    path,
		Changed: fp.Changed(),
		Written: written,
		Fields:  make([]FieldResult, 0, len(fp.Results)),
	}
	for _, res := range fp.Results {
		fr.Fields = append(fr.Fields, FieldResult{
			Rule:     res.Rule,
			Upstream: res.Upstream,
			Previous: res.Previous,
			Value:    res.Value,
			Matches:  res.Matches(),
			Changed:  res.Changed,
		})
	}
	return fr
}

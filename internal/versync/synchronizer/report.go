package synchronizer

// UpstreamResult is the release resolved for one upstream.
type UpstreamResult struct {
	Name    string `json:"name"`
	Repo    string `json:"repo"`
	Tag     string `json:"tag"`
	Version string `json:"version"`
}

// FieldResult describes one rule applied to one file.
type FieldResult struct {
	Rule     string   `json:"rule"`
	Upstream string   `json:"upstream"`
	Previous []string `json:"previous,omitempty"`
	Value    string   `json:"value"`
	Matches  int      `json:"matches"`
	Changed  int      `json:"changed"`
}

// FileResult describes the outcome for one target file.
type FileResult struct {
	Path    string        `json:"path"`
	Changed bool          `json:"changed"`
	Written bool          `json:"written"`
	Fields  []FieldResult `json:"fields"`
}

// Report summarizes a sync run.
type Report struct {
	DryRun    bool             `json:"dry_run"`
	Upstreams []UpstreamResult `json:"upstreams"`
	Files     []FileResult     `json:"files"`
}

// ChangedFiles returns the number of files whose content changed.
func (r *Report) ChangedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Changed {
			n++
		}
	}
	return n
}

// Status of a field compared with the latest upstream release.
type Status string

const (
	StatusCurrent  Status = "up-to-date"
	StatusOutdated Status = "outdated"
	StatusMissing  Status = "missing"
)

// CheckEntry compares one field with the latest release.
type CheckEntry struct {
	Path     string   `json:"path"`
	Rule     string   `json:"rule"`
	Upstream string   `json:"upstream"`
	Current  []string `json:"current"`
	Latest   string   `json:"latest"`
	Status   Status   `json:"status"`
}

// CheckReport is the result of Check.
type CheckReport struct {
	Upstreams []UpstreamResult `json:"upstreams"`
	Entries   []CheckEntry     `json:"entries"`
}

// Outdated returns the number of outdated entries.
func (r *CheckReport) Outdated() int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == StatusOutdated {
			n++
		}
	}
	return n
}

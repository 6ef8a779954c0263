package tags

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

// Query selects the tags of one upstream repository.
type Query struct {
	Repo       string              // "owner/name"
	Prefix     string              // required literal tag prefix, may be empty
	Constraint *semver.Constraints // optional version range, nil accepts all
}

// Resolver finds the newest release of a repository.
type Resolver struct {
	source Source
}

// NewResolver creates a resolver reading tags from source.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// ResolveLatest lists the repository's tags and returns the newest one that
// qualifies. A failed listing aborts with the source error; an empty
// qualifying set returns ErrNoMatchingTag.
func (r *Resolver) ResolveLatest(ctx context.Context, q Query) (Tag, error) {
	names, err := r.source.ListTags(ctx, q.Repo)
	if err != nil {
		return Tag{}, err
	}

	tag, err := Latest(names, q.Prefix, q.Constraint)
	if err != nil {
		return Tag{}, ErrNoMatchingTag.MsgErr(fmt.Sprintf("%s has no release tag with prefix %q", q.Repo, q.Prefix), err)
	}

	log.Info().Str("repo", q.Repo).Str("tag", tag.Name).Str("version", tag.Version()).Msg("resolved latest release")
	return tag, nil
}

package tags

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gear-foundation/versync/internal/common/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Source lists the raw tag names of a repository.
type Source interface {
	ListTags(ctx context.Context, repo string) ([]string, error)
}

const (
	DefaultPerPage  = 100
	DefaultMaxPages = 10
)

// GitHubSource lists tags through the GitHub REST API
// (GET /repos/{owner}/{repo}/tags), one page at a time.
type GitHubSource struct {
	client   httpclient.HTTPClientInterface
	perPage  int
	maxPages int
}

// NewGitHubSource creates a source that reads at most maxPages pages of
// perPage tags. Non-positive values select the defaults.
func NewGitHubSource(client httpclient.HTTPClientInterface, perPage, maxPages int) *GitHubSource {
	if perPage <= 0 || perPage > DefaultPerPage {
		perPage = DefaultPerPage
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &GitHubSource{
		client:   client,
		perPage:  perPage,
		maxPages: maxPages,
	}
}

// SplitRepo validates an "owner/name" repository reference.
func SplitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.Trim(repo, "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", ErrInvalidRepo.Msg(fmt.Sprintf("repository %q must have the form owner/name", repo))
	}
	return owner, name, nil
}

// ListTags returns tag names in the order the API reports them.
func (s *GitHubSource) ListTags(ctx context.Context, repo string) ([]string, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	resource := fmt.Sprintf("repos/%s/%s/tags", owner, name)

	var names []string
	for page := 1; page <= s.maxPages; page++ {
		body, err := s.client.ListResources(ctx, resource, map[string]string{
			"per_page": strconv.Itoa(s.perPage),
			"page":     strconv.Itoa(page),
		})
		if err != nil {
			return nil, fetchError(repo, err)
		}

		if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
			return nil, ErrInvalidResponse.MsgErr(fmt.Sprintf("tag list for %s", repo), fmt.Errorf("expected a JSON array"))
		}
		items := gjson.GetBytes(body, "#.name").Array()
		for _, item := range items {
			if item.Type == gjson.String && item.Str != "" {
				names = append(names, item.Str)
			}
		}
		log.Debug().Str("repo", repo).Int("page", page).Int("count", len(items)).Msg("fetched tag page")

		if len(items) < s.perPage {
			return names, nil
		}
	}

	log.Warn().Str("repo", repo).Int("max_pages", s.maxPages).Msg("tag listing truncated at page limit")
	return names, nil
}

func fetchError(repo string, err error) error {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.RateLimited() {
		msg := fmt.Sprintf("rate limit exceeded while listing tags of %s", repo)
		if !httpErr.ResetAt.IsZero() {
			msg += "; retry after " + httpErr.ResetAt.UTC().Format("15:04:05 MST")
		}
		return ErrRateLimited.MsgErr(msg+" or set GITHUB_TOKEN", err)
	}
	return ErrFetchTags.MsgErr(fmt.Sprintf("listing tags of %s", repo), err)
}

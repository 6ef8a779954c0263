package tags

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gear-foundation/versync/internal/common/httpclient"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

type fakeConfig struct{}

func (fakeConfig) GetServerURL() string      { return "https://api.github.test" }
func (fakeConfig) GetToken() string          { return "" }
func (fakeConfig) GetUserAgent() string      { return "versync/test" }
func (fakeConfig) GetTimeout() time.Duration { return time.Second }

// tagPage renders names as a GitHub tags API page.
func tagPage(t *testing.T, names ...string) []byte {
	t.Helper()
	page := []byte(`[]`)
	for _, name := range names {
		obj, err := sjson.SetBytes([]byte(`{}`), "name", name)
		require.NoError(t, err)
		obj, err = sjson.SetBytes(obj, "commit.sha", "0000000")
		require.NoError(t, err)
		page, err = sjson.SetRawBytes(page, "-1", obj)
		require.NoError(t, err)
	}
	return page
}

// fakeGitHub serves pages[repo][page-1] for /repos/{owner}/{repo}/tags.
func fakeGitHub(t *testing.T, pages map[string][][]string) (http.Handler, *[]string) {
	var requested []string
	r := chi.NewRouter()
	r.Get("/repos/{owner}/{repo}/tags", func(w http.ResponseWriter, r *http.Request) {
		repo := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		requested = append(requested, fmt.Sprintf("%s?page=%d&per_page=%s", repo, page, r.URL.Query().Get("per_page")))

		repoPages, ok := pages[repo]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		var names []string
		if page >= 1 && page <= len(repoPages) {
			names = repoPages[page-1]
		}
		w.Write(tagPage(t, names...))
	})
	return r, &requested
}

func TestGitHubSourceListTags(t *testing.T) {
	ctx := context.Background()

	t.Run("single short page", func(t *testing.T) {
		h, requested := fakeGitHub(t, map[string][][]string{
			"gear-tech/gear": {{"v1.5.0", "v1.4.2", "build"}},
		})
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, h), 0, 0)

		names, err := src.ListTags(ctx, "gear-tech/gear")
		require.NoError(t, err)
		assert.Equal(t, []string{"v1.5.0", "v1.4.2", "build"}, names)
		assert.Equal(t, []string{"gear-tech/gear?page=1&per_page=100"}, *requested)
	})

	t.Run("follows full pages", func(t *testing.T) {
		h, requested := fakeGitHub(t, map[string][][]string{
			"gear-tech/sails": {{"rs/v0.6.0", "js/v0.6.0"}, {"rs/v0.5.0", "rs/v0.4.0"}, {"rs/v0.1.0"}},
		})
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, h), 2, 10)

		names, err := src.ListTags(ctx, "gear-tech/sails")
		require.NoError(t, err)
		assert.Equal(t, []string{"rs/v0.6.0", "js/v0.6.0", "rs/v0.5.0", "rs/v0.4.0", "rs/v0.1.0"}, names)
		assert.Len(t, *requested, 3)
	})

	t.Run("stops at page limit", func(t *testing.T) {
		h, requested := fakeGitHub(t, map[string][][]string{
			"o/r": {{"v3.0.0"}, {"v2.0.0"}, {"v1.0.0"}},
		})
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, h), 1, 2)

		names, err := src.ListTags(ctx, "o/r")
		require.NoError(t, err)
		assert.Equal(t, []string{"v3.0.0", "v2.0.0"}, names)
		assert.Len(t, *requested, 2)
	})

	t.Run("missing repository", func(t *testing.T) {
		h, _ := fakeGitHub(t, nil)
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, h), 0, 0)

		_, err := src.ListTags(ctx, "gear-tech/missing")
		assert.ErrorIs(t, err, ErrFetchTags)
		assert.NotErrorIs(t, err, ErrRateLimited)
		var httpErr *httpclient.HTTPError
		assert.ErrorAs(t, err, &httpErr)
	})

	t.Run("invalid repository reference", func(t *testing.T) {
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, http.NotFoundHandler()), 0, 0)
		for _, repo := range []string{"", "gear", "gear/", "/gear", "a/b/c"} {
			_, err := src.ListTags(ctx, repo)
			assert.ErrorIs(t, err, ErrInvalidRepo, repo)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", "1700000000")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"API rate limit exceeded"}`))
		})
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, h), 0, 0)

		_, err := src.ListTags(ctx, "gear-tech/gear")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.ErrorIs(t, err, ErrFetchTags)
		assert.Contains(t, err.Error(), "retry after")
	})

	t.Run("not an array", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"v1.0.0"}`))
		})
		src := NewGitHubSource(httpclient.NewTestClient(fakeConfig{}, h), 0, 0)

		_, err := src.ListTags(ctx, "gear-tech/gear")
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

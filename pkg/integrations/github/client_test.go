package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

const repoResponseBody = `{
	"full_name": "armoriq/armoriq-sdk",
	"stargazers_count": 1280,
	"forks_count": 94,
	"subscribers_count": 31,
	"watchers_count": 1280,
	"open_issues_count": 17,
	"archived": false
}`

func newTestClient(ts *httptest.Server, token string) *Client {
	c := NewClient(cache.NewNullCache(), token, time.Hour)
	c.baseURL = ts.URL
	return c
}

func TestFetchRepo(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(repoResponseBody))
	}))
	defer ts.Close()

	stats, err := newTestClient(ts, "").FetchRepo(context.Background(), "armoriq", "armoriq-sdk", false)
	if err != nil {
		t.Fatalf("FetchRepo: %v", err)
	}

	if gotPath != "/repos/armoriq/armoriq-sdk" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "" {
		t.Errorf("Authorization sent without token: %q", gotAuth)
	}

	want := RepoStats{
		Owner:      "armoriq",
		Repo:       "armoriq-sdk",
		Stars:      1280,
		Forks:      94,
		Watchers:   31, // subscribers_count, not the legacy watchers_count
		OpenIssues: 17,
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestFetchRepoSendsToken(t *testing.T) {
	var gotAuth, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(repoResponseBody))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts, "ghp_test123").FetchRepo(context.Background(), "armoriq", "armoriq-sdk", false); err != nil {
		t.Fatalf("FetchRepo: %v", err)
	}
	if gotAuth != "Bearer ghp_test123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != "application/vnd.github.v3+json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestFetchRepoNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestClient(ts, "").FetchRepo(context.Background(), "nobody", "nothing", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

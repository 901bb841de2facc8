package enum

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// GitHubConfig configures GitHub API enumeration.
type GitHubConfig struct {
	Token   string // GitHub API token (optional, raises rate limits)
	BaseURL string // GitHub Enterprise API URL (optional)
	Owner   string // Repository owner (for single repo)
	Repo    string // Repository name (for single repo)
	Org     string // Organization name (list all org repos)
	User    string // User name (list all user repos)
	Config         // Embedded base config
}

// GitHubEnumerator enumerates blobs from GitHub via API.
type GitHubEnumerator struct {
	client *github.Client
	config GitHubConfig
}

// NewGitHubEnumerator creates a new GitHub API enumerator.
func NewGitHubEnumerator(cfg GitHubConfig) (*GitHubEnumerator, error) {
	if cfg.Repo == "" && cfg.Org == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify repo (with owner), org, or user")
	}
	if cfg.Repo != "" && cfg.Owner == "" {
		return nil, fmt.Errorf("owner required when repo specified")
	}

	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(hc)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("setting GitHub URL: %w", err)
		}
	}

	return &GitHubEnumerator{client: client, config: cfg}, nil
}

// Enumerate yields the text blobs of each repository's default branch.
func (e *GitHubEnumerator) Enumerate(ctx context.Context, fn BlobFunc) error {
	repos, err := e.listRepos(ctx)
	if err != nil {
		return err
	}
	for _, repo := range repos {
		if err := e.enumerateRepo(ctx, repo, fn); err != nil {
			return fmt.Errorf("enumerating %s: %w", repo.GetFullName(), err)
		}
	}
	return nil
}

// ListRepos returns the repositories matching the configuration.
func (e *GitHubEnumerator) ListRepos(ctx context.Context) ([]RepoInfo, error) {
	repos, err := e.listRepos(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]RepoInfo, 0, len(repos))
	for _, r := range repos {
		infos = append(infos, RepoInfo{
			Name:          r.GetFullName(),
			CloneURL:      r.GetCloneURL(),
			DefaultBranch: r.GetDefaultBranch(),
		})
	}
	return infos, nil
}

func (e *GitHubEnumerator) listRepos(ctx context.Context) ([]*github.Repository, error) {
	switch {
	case e.config.Repo != "":
		repo, _, err := e.client.Repositories.Get(ctx, e.config.Owner, e.config.Repo)
		if err != nil {
			return nil, fmt.Errorf("getting repository: %w", err)
		}
		return []*github.Repository{repo}, nil

	case e.config.Org != "":
		opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: 100}}
		return paginate(ctx, &opts.ListOptions, func() ([]*github.Repository, *github.Response, error) {
			return e.client.Repositories.ListByOrg(ctx, e.config.Org, opts)
		})

	default:
		opts := &github.RepositoryListOptions{ListOptions: github.ListOptions{PerPage: 100}}
		return paginate(ctx, &opts.ListOptions, func() ([]*github.Repository, *github.Response, error) {
			return e.client.Repositories.List(ctx, e.config.User, opts)
		})
	}
}

// paginate calls list until the last page, advancing page between calls.
func paginate[T any](ctx context.Context, page *github.ListOptions, list func() ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	for {
		if err := canceled(ctx); err != nil {
			return nil, err
		}
		items, resp, err := list()
		if err != nil {
			return nil, fmt.Errorf("listing repositories: %w", err)
		}
		all = append(all, items...)
		if resp.NextPage == 0 {
			return all, nil
		}
		page.Page = resp.NextPage
	}
}

func (e *GitHubEnumerator) enumerateRepo(ctx context.Context, repo *github.Repository, fn BlobFunc) error {
	owner, name := repo.GetOwner().GetLogin(), repo.GetName()
	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	tree, _, err := e.client.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		return fmt.Errorf("getting tree: %w", err)
	}
	if tree.GetTruncated() {
		fmt.Fprintf(os.Stderr, "[warn] tree of %s is truncated; clone it and run 'wordscan scan --git' for full coverage\n", repo.GetFullName())
	}

	for _, entry := range tree.Entries {
		if err := canceled(ctx); err != nil {
			return err
		}
		if entry.GetType() != "blob" || e.config.tooLarge(int64(entry.GetSize())) {
			continue
		}
		if !e.config.IncludeHidden && hasHiddenElement(entry.GetPath()) {
			continue
		}

		data, _, err := e.client.Git.GetBlobRaw(ctx, owner, name, entry.GetSHA())
		if err != nil {
			fmt.Fprintf(os.Stderr, "[warn] reading %s/%s: %v\n", repo.GetFullName(), entry.GetPath(), err)
			continue
		}
		if isBinary(data) {
			continue
		}

		prov := types.GitProvenance{RepoPath: repo.GetFullName(), BlobPath: entry.GetPath()}
		if err := fn(data, types.ComputeBlobID(data), prov); err != nil {
			return err
		}
	}
	return nil
}

package enum

import (
	"context"
	"fmt"
	"os"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// GitLabConfig for GitLab API enumeration.
type GitLabConfig struct {
	Token   string
	BaseURL string // Optional, defaults to gitlab.com
	Project string // Single project path (namespace/project) or ID
	Group   string // Group name (optional)
	User    string // User name (optional)
	Config         // Embedded base Config
}

// GitLabEnumerator enumerates blobs from GitLab projects via API.
type GitLabEnumerator struct {
	client *gitlab.Client
	config GitLabConfig
}

// NewGitLabEnumerator creates a new GitLab enumerator.
func NewGitLabEnumerator(cfg GitLabConfig) (*GitLabEnumerator, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("GitLab token is required")
	}
	if cfg.Project == "" && cfg.Group == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify project, group, or user")
	}

	var opts []gitlab.ClientOptionFunc
	if cfg.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(cfg.BaseURL))
	}
	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}
	return &GitLabEnumerator{client: client, config: cfg}, nil
}

// Enumerate yields the text blobs of each project's default branch.
func (e *GitLabEnumerator) Enumerate(ctx context.Context, fn BlobFunc) error {
	projects, err := e.listProjects(ctx)
	if err != nil {
		return err
	}
	for _, project := range projects {
		if err := canceled(ctx); err != nil {
			return err
		}
		if err := e.enumerateProject(ctx, project, fn); err != nil {
			return fmt.Errorf("enumerating %s: %w", project.PathWithNamespace, err)
		}
	}
	return nil
}

// ListProjects returns the projects matching the configuration.
func (e *GitLabEnumerator) ListProjects(ctx context.Context) ([]RepoInfo, error) {
	projects, err := e.listProjects(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]RepoInfo, 0, len(projects))
	for _, p := range projects {
		infos = append(infos, RepoInfo{
			Name:          p.PathWithNamespace,
			CloneURL:      p.HTTPURLToRepo,
			DefaultBranch: p.DefaultBranch,
		})
	}
	return infos, nil
}

func (e *GitLabEnumerator) listProjects(ctx context.Context) ([]*gitlab.Project, error) {
	if e.config.Project != "" {
		project, _, err := e.client.Projects.GetProject(e.config.Project, nil, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("getting project: %w", err)
		}
		return []*gitlab.Project{project}, nil
	}

	var all []*gitlab.Project
	if e.config.Group != "" {
		opts := &gitlab.ListGroupProjectsOptions{ListOptions: gitlab.ListOptions{PerPage: 100}}
		for {
			projects, resp, err := e.client.Groups.ListGroupProjects(e.config.Group, opts, gitlab.WithContext(ctx))
			if err != nil {
				return nil, fmt.Errorf("listing group projects: %w", err)
			}
			all = append(all, projects...)
			if resp.NextPage == 0 {
				return all, nil
			}
			opts.Page = resp.NextPage
		}
	}

	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		Owned:       gitlab.Ptr(true),
	}
	for {
		projects, resp, err := e.client.Projects.ListUserProjects(e.config.User, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing user projects: %w", err)
		}
		all = append(all, projects...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (e *GitLabEnumerator) enumerateProject(ctx context.Context, project *gitlab.Project, fn BlobFunc) error {
	opts := &gitlab.ListTreeOptions{
		Recursive:   gitlab.Ptr(true),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	if project.DefaultBranch != "" {
		opts.Ref = gitlab.Ptr(project.DefaultBranch)
	}

	var nodes []*gitlab.TreeNode
	for {
		page, resp, err := e.client.Repositories.ListTree(project.ID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("listing tree: %w", err)
		}
		nodes = append(nodes, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	fileOpts := &gitlab.GetRawFileOptions{Ref: opts.Ref}
	for _, node := range nodes {
		if err := canceled(ctx); err != nil {
			return err
		}
		if node.Type != "blob" {
			continue
		}
		if !e.config.IncludeHidden && hasHiddenElement(node.Path) {
			continue
		}

		data, _, err := e.client.RepositoryFiles.GetRawFile(project.ID, node.Path, fileOpts, gitlab.WithContext(ctx))
		if err != nil {
			fmt.Fprintf(os.Stderr, "[warn] reading %s/%s: %v\n", project.PathWithNamespace, node.Path, err)
			continue
		}
		if e.config.tooLarge(int64(len(data))) || isBinary(data) {
			continue
		}

		prov := types.GitProvenance{RepoPath: project.PathWithNamespace, BlobPath: node.Path}
		if err := fn(data, types.ComputeBlobID(data), prov); err != nil {
			return err
		}
	}
	return nil
}

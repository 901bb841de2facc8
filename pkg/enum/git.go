package enum

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// GitEnumerator enumerates blobs from a git repository.
type GitEnumerator struct {
	config Config
	// Ref is the revision to enumerate from (defaults to HEAD).
	Ref string
	// History walks every commit reachable from Ref instead of only its tree.
	History bool
}

// NewGitEnumerator creates a new git enumerator.
func NewGitEnumerator(config Config) *GitEnumerator {
	return &GitEnumerator{config: config, Ref: "HEAD"}
}

// Enumerate yields each distinct text blob once, attributed to the oldest
// enumerated commit that contains it.
func (e *GitEnumerator) Enumerate(ctx context.Context, fn BlobFunc) error {
	repo, err := git.PlainOpenWithOptions(e.config.Root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("opening git repository: %w", err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(e.Ref))
	if err != nil {
		return fmt.Errorf("resolving ref %s: %w", e.Ref, err)
	}

	commits, err := e.commits(repo, *hash)
	if err != nil {
		return err
	}

	seen := make(map[plumbing.Hash]bool)
	for _, c := range commits {
		if err := e.enumerateCommit(ctx, c, seen, fn); err != nil {
			return err
		}
	}
	return nil
}

// commits returns the commits to walk, oldest first.
func (e *GitEnumerator) commits(repo *git.Repository, head plumbing.Hash) ([]*object.Commit, error) {
	if !e.History {
		c, err := repo.CommitObject(head)
		if err != nil {
			return nil, fmt.Errorf("reading commit: %w", err)
		}
		return []*object.Commit{c}, nil
	}

	iter, err := repo.Log(&git.LogOptions{From: head, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	var commits []*object.Commit
	for {
		c, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walking log: %w", err)
		}
		commits = append(commits, c)
	}
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

func (e *GitEnumerator) enumerateCommit(ctx context.Context, c *object.Commit, seen map[plumbing.Hash]bool, fn BlobFunc) error {
	tree, err := c.Tree()
	if err != nil {
		return fmt.Errorf("reading tree of %s: %w", c.Hash, err)
	}
	meta := commitMetadata(c)

	return tree.Files().ForEach(func(f *object.File) error {
		if err := canceled(ctx); err != nil {
			return err
		}
		if seen[f.Hash] {
			return nil
		}
		seen[f.Hash] = true

		if e.config.tooLarge(f.Size) {
			return nil
		}
		if !e.config.IncludeHidden && hasHiddenElement(f.Name) {
			return nil
		}

		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
		data := []byte(content)
		if isBinary(data) {
			return nil
		}

		prov := types.GitProvenance{RepoPath: e.config.Root, Commit: meta, BlobPath: f.Name}
		return fn(data, types.ComputeBlobID(data), prov)
	})
}

func commitMetadata(c *object.Commit) *types.CommitMetadata {
	return &types.CommitMetadata{
		CommitID:           c.Hash.String(),
		AuthorName:         c.Author.Name,
		AuthorEmail:        c.Author.Email,
		AuthorTimestamp:    c.Author.When,
		CommitterName:      c.Committer.Name,
		CommitterEmail:     c.Committer.Email,
		CommitterTimestamp: c.Committer.When,
		Message:            c.Message,
	}
}

// hasHiddenElement reports whether any element of a slash-separated path is hidden.
func hasHiddenElement(p string) bool {
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			if isHidden(p[start:i]) {
				return true
			}
			start = i + 1
		}
	}
	return false
}

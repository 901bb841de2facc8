package enum

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// FilesystemEnumerator enumerates files from a filesystem directory.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config}
}

// Enumerate walks the tree to collect eligible paths, then reads them in
// parallel. fn may be called from several goroutines at once.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, fn BlobFunc) error {
	info, err := os.Stat(e.config.Root)
	if err != nil {
		return fmt.Errorf("reading root: %w", err)
	}
	if !info.IsDir() {
		return e.processFile(ctx, e.config.Root, fn)
	}

	paths, err := e.collect(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.workers())
	for _, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return e.processFile(gctx, p, fn)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *FilesystemEnumerator) collect(ctx context.Context) ([]string, error) {
	var ignore *gitignore.GitIgnore
	if _, err := os.Stat(filepath.Join(e.config.Root, ".gitignore")); err == nil {
		ignore, _ = gitignore.CompileIgnoreFile(filepath.Join(e.config.Root, ".gitignore"))
	}

	var paths []string
	err := filepath.WalkDir(e.config.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := canceled(ctx); err != nil {
			return err
		}
		if path == e.config.Root {
			return nil
		}

		if !e.config.IncludeHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore != nil {
			rel, err := filepath.Rel(e.config.Root, path)
			if err != nil {
				return err
			}
			if ignore.MatchesPath(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !e.config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || target.IsDir() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if e.config.tooLarge(info.Size()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// processFile reads one file and yields its text: the file itself, or the
// text extracted from it when it is a supported document.
func (e *FilesystemEnumerator) processFile(ctx context.Context, path string, fn BlobFunc) error {
	if err := canceled(ctx); err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", path, err)
	}

	if ShouldExtract(e.config.Extract, path) {
		extracted, err := ExtractText(path, content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[warn] extracting %s: %v\n", path, err)
			return nil
		}
		for _, ec := range extracted {
			prov := types.ArchiveProvenance{ArchivePath: path, MemberPath: ec.Name}
			if err := fn(ec.Content, types.ComputeBlobID(ec.Content), prov); err != nil {
				return err
			}
		}
		return nil
	}

	if isBinary(content) {
		return nil
	}
	return fn(content, types.ComputeBlobID(content), types.FileProvenance{FilePath: path})
}

package enum

import (
	"bytes"
	"context"
	"runtime"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// BlobFunc receives one blob: its content, its ID and where it came from.
type BlobFunc = func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers content to scan from a source.
type Enumerator interface {
	// Enumerate yields blobs from the source. A non-nil error from fn stops
	// the enumeration and is returned.
	Enumerate(ctx context.Context, fn BlobFunc) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links to files.
	FollowSymlinks bool

	// Extract enables text extraction from documents and archives: a
	// comma-separated list of extensions (pdf,docx,xlsx,pptx,odt,zip,7z) or "all".
	Extract string

	// Workers bounds parallel file reads (0 = one per CPU).
	Workers int
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c Config) tooLarge(size int64) bool {
	return c.MaxFileSize > 0 && size > c.MaxFileSize
}

// RepoInfo describes a remote repository.
type RepoInfo struct {
	Name          string
	CloneURL      string
	DefaultBranch string
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// isBinary detects if content is binary by checking first 8KB for null bytes.
func isBinary(content []byte) bool {
	if len(content) > 8192 {
		content = content[:8192]
	}
	return bytes.IndexByte(content, 0) != -1
}

func canceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

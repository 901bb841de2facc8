package types

import (
	"fmt"
	"time"
)

// Provenance describes where a blob came from.
type Provenance interface {
	Kind() string
	// Path returns a displayable location, or "" if there is none.
	Path() string
}

// FileProvenance is a file on disk.
type FileProvenance struct {
	FilePath string
}

func (f FileProvenance) Kind() string { return "file" }
func (f FileProvenance) Path() string { return f.FilePath }

// GitProvenance is a blob in a git repository.
type GitProvenance struct {
	RepoPath string
	Commit   *CommitMetadata // nil when history is not walked
	BlobPath string
}

func (g GitProvenance) Kind() string { return "git" }
func (g GitProvenance) Path() string { return g.BlobPath }

// CommitMetadata describes the commit a blob was first seen in.
type CommitMetadata struct {
	CommitID           string
	AuthorName         string
	AuthorEmail        string
	AuthorTimestamp    time.Time
	CommitterName      string
	CommitterEmail     string
	CommitterTimestamp time.Time
	Message            string
}

// ArchiveProvenance is text extracted from a document or archive member.
type ArchiveProvenance struct {
	ArchivePath string
	MemberPath  string // e.g., "word/document.xml"
}

func (a ArchiveProvenance) Kind() string { return "archive" }
func (a ArchiveProvenance) Path() string { return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath) }

// MessageProvenance is a chat message or other user-submitted text.
type MessageProvenance struct {
	Channel string
	Sender  string
	SentAt  time.Time
}

func (m MessageProvenance) Kind() string { return "message" }

func (m MessageProvenance) Path() string {
	if m.Sender == "" {
		return m.Channel
	}
	return m.Channel + "/" + m.Sender
}

// ExtendedProvenance carries arbitrary source metadata (S3 objects, API payloads).
type ExtendedProvenance struct {
	Payload map[string]interface{}
}

func (e ExtendedProvenance) Kind() string { return "extended" }
func (e ExtendedProvenance) Path() string { return "" }

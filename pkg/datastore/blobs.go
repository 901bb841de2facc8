package datastore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/klauspost/compress/zstd"
)

const blobExt = ".zst"

// Shared coders; EncodeAll and DecodeAll are safe for concurrent use.
var (
	blobEncoder = mustCoder(zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)))
	blobDecoder = mustCoder(zstd.NewReader(nil))
)

func mustCoder[C any](c C, err error) C {
	if err != nil {
		panic(fmt.Sprintf("datastore: creating zstd coder: %v", err))
	}
	return c
}

// BlobStore keeps scanned content compressed and addressed by blob ID.
type BlobStore struct {
	Root string
}

// Store writes content to blob storage and returns the blob ID.
// Blob ID is SHA-1 hash of content (same as git blob hashing).
func (b *BlobStore) Store(content []byte) (types.BlobID, error) {
	id := types.ComputeBlobID(content)

	path := b.blobPath(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return types.BlobID{}, fmt.Errorf("creating blob directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, blobEncoder.EncodeAll(content, nil), 0644); err != nil {
		return types.BlobID{}, fmt.Errorf("writing blob: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return types.BlobID{}, fmt.Errorf("renaming blob: %w", err)
	}
	return id, nil
}

// Get retrieves content by blob ID.
func (b *BlobStore) Get(id types.BlobID) ([]byte, error) {
	compressed, err := os.ReadFile(b.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", id.Hex())
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}

	content, err := blobDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing blob %s: %w", id.Hex(), err)
	}
	return content, nil
}

// Exists checks if a blob exists in storage.
func (b *BlobStore) Exists(id types.BlobID) bool {
	_, err := os.Stat(b.blobPath(id))
	return err == nil
}

// IDs lists every stored blob.
func (b *BlobStore) IDs() ([]types.BlobID, error) {
	var ids []types.BlobID
	err := filepath.WalkDir(b.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, blobExt) {
			return err
		}
		prefix := filepath.Base(filepath.Dir(path))
		id, err := types.ParseBlobID(prefix + strings.TrimSuffix(d.Name(), blobExt))
		if err != nil {
			return nil // not one of ours
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	return ids, nil
}

// blobPath uses a git-style 2-char prefix: blobs/ab/cdef1234....zst
func (b *BlobStore) blobPath(id types.BlobID) string {
	hexID := id.Hex()
	return filepath.Join(b.Root, hexID[:2], hexID[2:]+blobExt)
}

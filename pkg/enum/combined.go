package enum

import (
	"context"
	"sync"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// CombinedEnumerator runs several enumerators in order and yields each
// distinct blob once across all of them.
type CombinedEnumerator struct {
	enumerators []Enumerator
}

// NewCombinedEnumerator wraps enumerators into one.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

// Enumerate runs each child in sequence. Children may call back concurrently.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, fn BlobFunc) error {
	var (
		mu   sync.Mutex
		seen = make(map[types.BlobID]bool)
	)
	dedup := func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		mu.Lock()
		dup := seen[blobID]
		seen[blobID] = true
		mu.Unlock()
		if dup {
			return nil
		}
		return fn(content, blobID, prov)
	}

	for _, e := range c.enumerators {
		if err := canceled(ctx); err != nil {
			return err
		}
		if err := e.Enumerate(ctx, dedup); err != nil {
			return err
		}
	}
	return nil
}

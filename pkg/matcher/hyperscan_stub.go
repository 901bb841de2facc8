//go:build !cgo || !hyperscan || wasm

package matcher

import (
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// NewHyperscan stub for builds without Hyperscan (non-CGO or missing hyperscan tag).
func NewHyperscan(words []*types.Word, contextLines int) (Matcher, error) {
	return nil, fmt.Errorf("hyperscan engine unavailable (build with CGO_ENABLED=1 and -tags=hyperscan)")
}

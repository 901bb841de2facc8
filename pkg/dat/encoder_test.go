package dat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_CapacityExceeded(t *testing.T) {
	saved := maxArraySize
	maxArraySize = 300
	defer func() { maxArraySize = saved }()

	patterns := map[string]int{}
	for a := 'a'; a < 'a'+20; a++ {
		for b := 'a'; b < 'a'+20; b++ {
			patterns[string([]rune{a, b})] = len(patterns)
		}
	}

	_, err := Build(patterns)
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestEncode_ArcConsistency(t *testing.T) {
	keys := []string{"ab", "abc", "abd", "b", "bcd", "ca"}
	b := newBuilder(len(keys))
	for id, k := range keys {
		b.addKey(k, int32(id))
	}

	e, err := encode(b, len(keys))
	require.NoError(t, err)

	// Every trie edge must be reachable through base/check and land on the
	// child's recorded index.
	for h := range b.nodes {
		n := b.nodes[h]
		for _, ed := range n.children {
			base := e.base[n.index]
			slot := base + int32(ed.label) + 1
			assert.Equal(t, base, e.check[slot], "edge %q from node %d", ed.label, h)
			assert.Equal(t, b.nodes[ed.child].index, slot)
		}
	}

	// Accepting nodes carry a terminal marker holding -(id+1).
	for h := range b.nodes {
		n := b.nodes[h]
		if !n.accepting() {
			continue
		}
		base := e.base[n.index]
		assert.Equal(t, base, e.check[base])
		assert.Equal(t, -(n.key + 1), e.base[base])
	}
}

func TestEncode_TrimKeepsAlphabetAddressable(t *testing.T) {
	trie, err := Build(map[string]int{"\xff\xff": 1})
	require.NoError(t, err)

	for s := range trie.fail {
		if trie.base[s] > 0 {
			assert.Less(t, int(trie.base[s])+alphabetSize, len(trie.check))
		}
	}
}

func TestMergeIDs(t *testing.T) {
	assert.Equal(t, []int32{1, 2, 3, 5}, mergeIDs([]int32{1, 3}, []int32{2, 3, 5}))
	assert.Equal(t, []int32{4}, mergeIDs(nil, []int32{4}))
	assert.Equal(t, []int32{4}, mergeIDs([]int32{4}, nil))
	assert.Empty(t, mergeIDs(nil, nil))
}

func TestLink_OutputClosedUnderFailure(t *testing.T) {
	trie, err := Build(identity("a", "ba", "cba", "dcba", "x"))
	require.NoError(t, err)

	for s, ids := range trie.output {
		if s == 0 {
			continue
		}
		for _, inherited := range trie.output[trie.fail[s]] {
			assert.Contains(t, ids, inherited, "state %d misses id %d from its failure state", s, inherited)
		}
	}
}

package dat

import "slices"

// rootNode is the arena handle of the trie root.
const rootNode int32 = 0

// noNode marks an absent handle (missing child, unset failure link).
const noNode int32 = -1

// node is a build-time trie node. Nodes live in builder.nodes and refer to
// each other by index; the whole arena is dropped once the automaton is linked.
type node struct {
	depth    int32
	key      int32 // id of the key ending here, or -1
	index    int32 // state index in the double array
	failure  int32 // handle of the failure node, noNode until linked
	children []edge
	emits    []int32 // own key id, later merged with the failure chain, ascending
}

type edge struct {
	label byte
	child int32
}

func (n *node) accepting() bool {
	return n.depth > 0 && n.key >= 0
}

// builder holds the ephemeral trie.
type builder struct {
	nodes   []node
	lengths []int32
}

func newBuilder(keyCount int) *builder {
	b := &builder{
		nodes:   make([]node, 1, keyCount+1),
		lengths: make([]int32, keyCount),
	}
	b.nodes[rootNode] = node{key: -1, failure: noNode}
	return b
}

// child returns the handle of h's child on label c, or noNode.
func (b *builder) child(h int32, c byte) int32 {
	children := b.nodes[h].children
	i, ok := slices.BinarySearchFunc(children, c, func(e edge, c byte) int {
		return int(e.label) - int(c)
	})
	if !ok {
		return noNode
	}
	return children[i].child
}

// addChild returns h's child on label c, creating it if needed. Children stay
// sorted by label.
func (b *builder) addChild(h int32, c byte) int32 {
	children := b.nodes[h].children
	i, ok := slices.BinarySearchFunc(children, c, func(e edge, c byte) int {
		return int(e.label) - int(c)
	})
	if ok {
		return children[i].child
	}

	next := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{
		depth:   b.nodes[h].depth + 1,
		key:     -1,
		failure: noNode,
	})
	b.nodes[h].children = slices.Insert(b.nodes[h].children, i, edge{label: c, child: next})
	return next
}

// addKey inserts key under id.
func (b *builder) addKey(key string, id int32) {
	h := rootNode
	for i := 0; i < len(key); i++ {
		h = b.addChild(h, key[i])
	}
	b.nodes[h].key = id
	b.nodes[h].emits = []int32{id}
	b.lengths[id] = int32(len(key))
}

// sibling is one entry of a sibling group handed to the encoder. code is the
// slot offset from the group's base: 0 for the terminal marker of an accepting
// parent, label+1 for a real child.
type sibling struct {
	code int32
	node int32 // child handle, noNode for the terminal marker
	key  int32 // key id carried by the terminal marker
}

// siblings lists the sibling group of h in ascending code order.
func (b *builder) siblings(h int32) []sibling {
	n := &b.nodes[h]
	out := make([]sibling, 0, len(n.children)+1)
	if n.accepting() {
		out = append(out, sibling{code: 0, node: noNode, key: n.key})
	}
	for _, e := range n.children {
		out = append(out, sibling{code: int32(e.label) + 1, node: e.child, key: -1})
	}
	return out
}

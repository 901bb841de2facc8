package dat

// link computes failure links and output sets over the encoded trie. It walks
// the arena breadth-first so a node's failure target is always closed before
// the node itself is processed.
func link(b *builder, size int) (fail []int32, output [][]int32) {
	fail = make([]int32, size+1)
	output = make([][]int32, size+1)

	queue := make([]int32, 0, len(b.nodes))
	for _, e := range b.nodes[rootNode].children {
		n := &b.nodes[e.child]
		n.failure = rootNode
		fail[n.index] = 0
		output[n.index] = n.emits
		queue = append(queue, e.child)
	}

	for head := 0; head < len(queue); head++ {
		h := queue[head]
		for _, e := range b.nodes[h].children {
			queue = append(queue, e.child)

			trace := b.nodes[h].failure
			for trace != noNode && b.child(trace, e.label) == noNode {
				trace = b.nodes[trace].failure
			}
			target := rootNode
			if trace != noNode {
				target = b.child(trace, e.label)
			}

			n := &b.nodes[e.child]
			n.failure = target
			fail[n.index] = b.nodes[target].index
			n.emits = mergeIDs(n.emits, b.nodes[target].emits)
			output[n.index] = n.emits
		}
	}

	return fail, output
}

// mergeIDs returns the sorted union of two ascending id lists. When one side
// is empty the other is returned as is, so output sets may share backing
// arrays and must stay read-only.
func mergeIDs(a, b []int32) []int32 {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]int32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

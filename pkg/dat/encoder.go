package dat

import (
	"fmt"
	"math"
)

const (
	// alphabetSize is the number of distinct code units (bytes).
	alphabetSize = 256

	// trimMargin keeps base[s]+c+1 addressable for every state and code unit
	// after the arrays are trimmed.
	trimMargin = alphabetSize + 1

	initialSize = 1 << 16

	// denseRatio is the occupancy above which the scan cursor jumps ahead.
	denseRatio = 0.95
)

// maxArraySize caps the double array at 95% of the int32 range.
var maxArraySize = math.MaxInt32 / 20 * 19

// encoder places sibling groups into base/check.
type encoder struct {
	base  []int32
	check []int32
	used  []bool // used[begin] is set once a sibling group owns begin

	size         int // one past the highest occupied slot
	nextCheckPos int // scan cursor for placement
	progress     int // keys finalized so far
	keyCount     int
}

type placement struct {
	parent   int32 // state whose base receives the group offset
	siblings []sibling
}

// encode lays the trie held by b into a double array. Every trie node gets
// its final state index written to node.index.
func encode(b *builder, keyCount int) (*encoder, error) {
	e := &encoder{keyCount: keyCount}
	e.resize(min(initialSize, maxArraySize))

	rootSiblings := b.siblings(rootNode)
	if len(rootSiblings) == 0 {
		return nil, ErrEmptyInput
	}

	queue := []placement{{parent: 0, siblings: rootSiblings}}
	for head := 0; head < len(queue); head++ {
		group := queue[head]
		queue[head] = placement{}

		begin, err := e.place(group.siblings)
		if err != nil {
			return nil, err
		}
		e.base[group.parent] = int32(begin)

		for _, s := range group.siblings {
			slot := begin + int(s.code)
			if s.node == noNode {
				// Terminal marker: a childless leaf carrying the key id.
				e.base[slot] = -(s.key + 1)
				e.progress++
				continue
			}
			b.nodes[s.node].index = int32(slot)
			queue = append(queue, placement{parent: int32(slot), siblings: b.siblings(s.node)})
		}
	}

	return e, nil
}

// place finds a free offset for siblings, claims it and returns it.
func (e *encoder) place(siblings []sibling) (int, error) {
	first := int(siblings[0].code)
	last := int(siblings[len(siblings)-1].code)

	pos := max(first+1, e.nextCheckPos) - 1
	nonzero := 0
	cursorSet := false

	var begin int
	for {
		pos++
		if pos >= len(e.check) {
			if err := e.grow(pos + 1); err != nil {
				return 0, err
			}
		}

		if e.check[pos] != 0 {
			nonzero++
			continue
		}
		if !cursorSet {
			e.nextCheckPos = pos
			cursorSet = true
		}

		begin = pos - first
		if begin+last >= len(e.check) {
			if err := e.grow(begin + last + 1); err != nil {
				return 0, err
			}
		}

		if e.used[begin] || e.collides(begin, siblings) {
			continue
		}
		break
	}

	if float64(nonzero)/float64(pos-e.nextCheckPos+1) >= denseRatio {
		e.nextCheckPos = pos
	}

	e.used[begin] = true
	e.size = max(e.size, begin+last+1)
	for _, s := range siblings {
		e.check[begin+int(s.code)] = int32(begin)
	}
	return begin, nil
}

func (e *encoder) collides(begin int, siblings []sibling) bool {
	for _, s := range siblings {
		if e.check[begin+int(s.code)] != 0 {
			return true
		}
	}
	return false
}

// grow enlarges the arrays to hold at least need slots. The new size is
// proportional to how many keys remain unplaced.
func (e *encoder) grow(need int) error {
	if need > maxArraySize {
		return fmt.Errorf("growing double array to %d slots: %w", need, ErrCapacityExceeded)
	}
	factor := max(1.05, float64(e.keyCount)/float64(e.progress+1))
	target := float64(len(e.check)) * factor
	if target > float64(maxArraySize) {
		target = float64(maxArraySize)
	}
	e.resize(max(need, int(target)))
	return nil
}

func (e *encoder) resize(n int) {
	base := make([]int32, n)
	check := make([]int32, n)
	used := make([]bool, n)
	copy(base, e.base)
	copy(check, e.check)
	copy(used, e.used)
	e.base, e.check, e.used = base, check, used
}

// trim shrinks base and check to size+trimMargin and releases the used set.
func (e *encoder) trim() {
	n := e.size + trimMargin
	base := make([]int32, n)
	check := make([]int32, n)
	copy(base, e.base)
	copy(check, e.check)
	e.base, e.check, e.used = base, check, nil
}

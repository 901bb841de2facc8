// Package dat implements an Aho-Corasick automaton over a double-array trie.
//
// A Trie is built once from a set of keys, each bound to a value, and is then
// read-only: every query method may be called concurrently. Text is scanned
// byte by byte, so hit offsets are byte offsets into the input.
//
//	t, err := dat.Build(map[string]string{"he": "he", "she": "she"})
//	hits, err := t.ParseText([]byte("ushers"))
//	// [2:4]=he [1:4]=she
package dat

import (
	"fmt"
	"slices"
)

// Trie is a double-array Aho-Corasick automaton mapping keys to values of type V.
// The zero value is an empty trie; queries on it return ErrNotInitialized until
// Build or Load succeeds.
type Trie[V any] struct {
	base    []int32
	check   []int32
	fail    []int32
	output  [][]int32
	lengths []int32
	values  []V
}

// Build constructs a trie from patterns. Keys are assigned ids in ascending
// byte order, so the same patterns always produce the same automaton.
func Build[V any](patterns map[string]V) (*Trie[V], error) {
	t := &Trie[V]{}
	if err := t.Build(patterns); err != nil {
		return nil, err
	}
	return t, nil
}

// Build replaces the contents of t with an automaton over patterns. On error
// t is left unchanged.
func (t *Trie[V]) Build(patterns map[string]V) error {
	if len(patterns) == 0 {
		return ErrEmptyInput
	}

	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrEmptyInput)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	values := make([]V, len(keys))
	b := newBuilder(len(keys))
	for id, k := range keys {
		b.addKey(k, int32(id))
		values[id] = patterns[k]
	}

	e, err := encode(b, len(keys))
	if err != nil {
		return fmt.Errorf("encoding double array: %w", err)
	}
	fail, output := link(b, e.size)
	e.trim()

	*t = Trie[V]{
		base:    e.base,
		check:   e.check,
		fail:    fail,
		output:  output,
		lengths: b.lengths,
		values:  values,
	}
	return nil
}

func (t *Trie[V]) ready() error {
	if t == nil || len(t.base) == 0 {
		return ErrNotInitialized
	}
	return nil
}

// Size returns the number of keys.
func (t *Trie[V]) Size() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// transition follows the arc from state on c. A missing arc yields the root
// when state is the root and -1 otherwise.
func (t *Trie[V]) transition(state int32, c byte) int32 {
	b := t.base[state]
	p := b + int32(c) + 1
	if b > 0 && int(p) < len(t.check) && t.check[p] == b {
		return p
	}
	if state == 0 {
		return 0
	}
	return -1
}

// step advances the automaton by one byte, following failure links until a
// transition succeeds.
func (t *Trie[V]) step(state int32, c byte) int32 {
	next := t.transition(state, c)
	for next == -1 {
		state = t.fail[state]
		next = t.transition(state, c)
	}
	return next
}

// scan feeds text through the automaton and calls fn for every key id ending
// at each position. Scanning stops as soon as fn returns false.
func (t *Trie[V]) scan(text []byte, fn func(begin, end int, id int32) bool) {
	var state int32
	for pos := 0; pos < len(text); pos++ {
		state = t.step(state, text[pos])
		for _, id := range t.output[state] {
			end := pos + 1
			if !fn(end-int(t.lengths[id]), end, id) {
				return
			}
		}
	}
}

// ParseText returns every hit in text, ordered by end offset and then by key id.
func (t *Trie[V]) ParseText(text []byte) ([]Hit[V], error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	var hits []Hit[V]
	t.scan(text, func(begin, end int, id int32) bool {
		hits = append(hits, Hit[V]{Begin: begin, End: end, Value: t.values[id]})
		return true
	})
	return hits, nil
}

// ProcessText calls fn for every hit in text.
func (t *Trie[V]) ProcessText(text []byte, fn func(Hit[V])) error {
	return t.ProcessTextCancellable(text, func(h Hit[V]) bool {
		fn(h)
		return true
	})
}

// ProcessTextCancellable calls fn for every hit in text until fn returns false,
// at which point scanning stops. fn is consulted once per hit, so a text without
// hits is always scanned to the end.
func (t *Trie[V]) ProcessTextCancellable(text []byte, fn func(Hit[V]) bool) error {
	if err := t.ready(); err != nil {
		return err
	}
	t.scan(text, func(begin, end int, id int32) bool {
		return fn(Hit[V]{Begin: begin, End: end, Value: t.values[id]})
	})
	return nil
}

// FindFirst returns the hit with the smallest end offset. When several keys
// end there, the one with the smallest id (first in byte order) wins.
func (t *Trie[V]) FindFirst(text []byte) (Hit[V], bool, error) {
	var (
		first Hit[V]
		found bool
	)
	err := t.ProcessTextCancellable(text, func(h Hit[V]) bool {
		first, found = h, true
		return false
	})
	return first, found, err
}

// Matches reports whether any key occurs in text.
func (t *Trie[V]) Matches(text []byte) (bool, error) {
	_, found, err := t.FindFirst(text)
	return found, err
}

// ExactMatchSearch returns the id of key, or -1 if key was never inserted.
// Only direct transitions are followed.
func (t *Trie[V]) ExactMatchSearch(key string) int {
	if t.ready() != nil {
		return -1
	}
	b := t.base[0]
	for i := 0; i < len(key); i++ {
		p := b + int32(key[i]) + 1
		if b <= 0 || int(p) >= len(t.check) || t.check[p] != b {
			return -1
		}
		b = t.base[p]
	}

	// The terminal marker sits at offset 0 of the final state's group.
	if b <= 0 || int(b) >= len(t.check) || t.check[b] != b {
		return -1
	}
	id := int(-t.base[b] - 1)
	if id < 0 || id >= len(t.values) {
		return -1
	}
	return id
}

// Get returns the value bound to key.
func (t *Trie[V]) Get(key string) (V, bool, error) {
	var zero V
	if err := t.ready(); err != nil {
		return zero, false, err
	}
	id := t.ExactMatchSearch(key)
	if id < 0 {
		return zero, false, nil
	}
	return t.values[id], true, nil
}

// Set replaces the value bound to an existing key and reports whether the key
// was found. Set is not safe for concurrent use with other Set calls, and
// in-flight queries may observe either value.
func (t *Trie[V]) Set(key string, value V) (bool, error) {
	if err := t.ready(); err != nil {
		return false, err
	}
	id := t.ExactMatchSearch(key)
	if id < 0 {
		return false, nil
	}
	t.values[id] = value
	return true, nil
}

// Value returns the value of key id and reports whether id names a key.
func (t *Trie[V]) Value(id int) (V, bool) {
	if id < 0 || id >= len(t.values) {
		var zero V
		return zero, false
	}
	return t.values[id], true
}

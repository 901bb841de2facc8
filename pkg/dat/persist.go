package dat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

// snapshotMagic prefixes every saved trie; the last byte is the format version.
var snapshotMagic = []byte("WDAT\x01")

// Codec encodes the value table of a trie.
type Codec[V any] interface {
	Encode(w io.Writer, values []V) error
	Decode(r io.Reader) ([]V, error)
}

// JSONCodec stores values as a JSON array.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(w io.Writer, values []V) error {
	return json.NewEncoder(w).Encode(values)
}

func (JSONCodec[V]) Decode(r io.Reader) ([]V, error) {
	var values []V
	if err := json.NewDecoder(r).Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}

// Save writes t to w with values encoded as JSON.
func (t *Trie[V]) Save(w io.Writer) error {
	return t.SaveWith(w, JSONCodec[V]{})
}

// SaveWith writes t to w. The arrays are written in the order base, check,
// fail, output, lengths, values inside a zstd stream.
func (t *Trie[V]) SaveWith(w io.Writer, codec Codec[V]) error {
	if err := t.ready(); err != nil {
		return err
	}
	if _, err := w.Write(snapshotMagic); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	bw := bufio.NewWriter(zw)
	sw := &snapshotWriter{w: bw}

	sw.ints(t.base)
	sw.ints(t.check)
	sw.ints(t.fail)
	sw.uvarint(uint64(len(t.output)))
	for _, ids := range t.output {
		sw.ints(ids)
	}
	sw.ints(t.lengths)

	var vals bytes.Buffer
	if err := codec.Encode(&vals, t.values); err != nil {
		zw.Close()
		return fmt.Errorf("encoding values: %w", err)
	}
	sw.uvarint(uint64(vals.Len()))
	sw.write(vals.Bytes())

	if sw.err != nil {
		zw.Close()
		return fmt.Errorf("writing snapshot: %w", sw.err)
	}
	if err := bw.Flush(); err != nil {
		zw.Close()
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// Load reads a trie saved with Save.
func Load[V any](r io.Reader) (*Trie[V], error) {
	t := &Trie[V]{}
	if err := t.LoadWith(r, JSONCodec[V]{}); err != nil {
		return nil, err
	}
	return t, nil
}

// Load replaces the contents of t with a trie saved with Save.
func (t *Trie[V]) Load(r io.Reader) error {
	return t.LoadWith(r, JSONCodec[V]{})
}

// LoadWith replaces the contents of t with a trie saved with SaveWith. The
// data is fully validated before t is touched; inconsistent data yields
// ErrCorruptData.
func (t *Trie[V]) LoadWith(r io.Reader, codec Codec[V]) error {
	header := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w: %w", ErrCorruptData, err)
	}
	if !bytes.Equal(header, snapshotMagic) {
		return fmt.Errorf("%w: bad header %q", ErrCorruptData, header)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()
	sr := &snapshotReader{r: bufio.NewReader(zr)}

	next := Trie[V]{
		base:  sr.ints(),
		check: sr.ints(),
		fail:  sr.ints(),
	}
	n := sr.count()
	if sr.err == nil {
		next.output = make([][]int32, 0, min(n, readChunk))
		for i := 0; i < n && sr.err == nil; i++ {
			next.output = append(next.output, sr.ints())
		}
	}
	next.lengths = sr.ints()
	raw := sr.bytes()
	if sr.err != nil {
		return fmt.Errorf("reading snapshot: %w: %w", ErrCorruptData, sr.err)
	}

	next.values, err = codec.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decoding values: %w: %w", ErrCorruptData, err)
	}

	if err := next.validate(); err != nil {
		return err
	}
	*t = next
	return nil
}

// validate checks that every index stored in the tables is in range, so a
// loaded trie can never index out of bounds while scanning.
func (t *Trie[V]) validate() error {
	states := len(t.fail)
	switch {
	case len(t.base) == 0:
		return fmt.Errorf("%w: empty base array", ErrCorruptData)
	case len(t.base) != len(t.check):
		return fmt.Errorf("%w: base has %d entries, check has %d", ErrCorruptData, len(t.base), len(t.check))
	case len(t.output) != states:
		return fmt.Errorf("%w: fail has %d entries, output has %d", ErrCorruptData, states, len(t.output))
	case states == 0 || states > len(t.base):
		return fmt.Errorf("%w: %d states for %d slots", ErrCorruptData, states, len(t.base))
	case len(t.lengths) != len(t.values):
		return fmt.Errorf("%w: %d lengths for %d values", ErrCorruptData, len(t.lengths), len(t.values))
	}

	for p, owner := range t.check {
		if owner < 0 || int(owner) >= len(t.base) {
			return fmt.Errorf("%w: check[%d]=%d out of range", ErrCorruptData, p, owner)
		}
		if owner != 0 && p >= states {
			return fmt.Errorf("%w: occupied slot %d beyond %d states", ErrCorruptData, p, states)
		}
	}
	for s, b := range t.base {
		if b > 0 && int(b)+alphabetSize >= len(t.check) {
			return fmt.Errorf("%w: base[%d]=%d out of range", ErrCorruptData, s, b)
		}
	}
	for s, f := range t.fail {
		if f < 0 || int(f) >= states {
			return fmt.Errorf("%w: fail[%d]=%d out of range", ErrCorruptData, s, f)
		}
	}
	if err := t.validateFailure(states); err != nil {
		return err
	}
	for s, ids := range t.output {
		for _, id := range ids {
			if id < 0 || int(id) >= len(t.values) {
				return fmt.Errorf("%w: output[%d] references key %d of %d", ErrCorruptData, s, id, len(t.values))
			}
		}
	}
	for id, n := range t.lengths {
		if n <= 0 {
			return fmt.Errorf("%w: key %d has length %d", ErrCorruptData, id, n)
		}
	}
	return nil
}

// validateFailure checks that every failure chain ends at the root. Depths
// come from a breadth-first walk over the owned arcs; a reachable state must
// fail to a reachable state of smaller depth.
func (t *Trie[V]) validateFailure(states int) error {
	if t.fail[0] != 0 {
		return fmt.Errorf("%w: root fails to %d", ErrCorruptData, t.fail[0])
	}

	depth := make([]int32, states)
	for i := range depth {
		depth[i] = -1
	}
	depth[0] = 0
	queue := []int32{0}
	for head := 0; head < len(queue); head++ {
		s := queue[head]
		b := t.base[s]
		if b <= 0 {
			continue
		}
		for c := int32(0); c < alphabetSize; c++ {
			p := b + c + 1
			if t.check[p] != b {
				continue
			}
			if depth[p] != -1 {
				return fmt.Errorf("%w: state %d reached twice", ErrCorruptData, p)
			}
			depth[p] = depth[s] + 1
			queue = append(queue, p)
		}
	}

	for _, s := range queue[1:] {
		f := t.fail[s]
		if depth[f] == -1 || depth[f] >= depth[s] {
			return fmt.Errorf("%w: fail[%d]=%d does not lead to the root", ErrCorruptData, s, f)
		}
	}
	return nil
}

// snapshotWriter writes varint-framed arrays and keeps the first error.
type snapshotWriter struct {
	w   *bufio.Writer
	buf []byte
	err error
}

func (s *snapshotWriter) write(p []byte) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.Write(p)
}

func (s *snapshotWriter) uvarint(v uint64) {
	s.buf = binary.AppendUvarint(s.buf[:0], v)
	s.write(s.buf)
}

func (s *snapshotWriter) ints(vs []int32) {
	s.uvarint(uint64(len(vs)))
	for _, v := range vs {
		s.buf = binary.AppendVarint(s.buf[:0], int64(v))
		s.write(s.buf)
	}
}

// snapshotReader mirrors snapshotWriter.
type snapshotReader struct {
	r   *bufio.Reader
	err error
}

var (
	errOversized  = errors.New("array length exceeds limit")
	errOutOfRange = errors.New("value outside the int32 range")
)

// readChunk bounds each allocation while reading an array, so a short input
// that declares a huge length fails before the memory is committed.
const readChunk = 1 << 16

func (s *snapshotReader) count() int {
	if s.err != nil {
		return 0
	}
	n, err := binary.ReadUvarint(s.r)
	if err != nil {
		s.err = err
		return 0
	}
	if n > uint64(maxArraySize) {
		s.err = errOversized
		return 0
	}
	return int(n)
}

func (s *snapshotReader) ints() []int32 {
	n := s.count()
	if s.err != nil {
		return nil
	}
	vs := make([]int32, 0, min(n, readChunk))
	for i := 0; i < n; i++ {
		v, err := binary.ReadVarint(s.r)
		if err != nil {
			s.err = err
			return nil
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			s.err = errOutOfRange
			return nil
		}
		vs = append(vs, int32(v))
	}
	return vs
}

func (s *snapshotReader) bytes() []byte {
	n := s.count()
	if s.err != nil {
		return nil
	}
	var buf bytes.Buffer
	buf.Grow(min(n, readChunk))
	if _, err := io.CopyN(&buf, s.r, int64(n)); err != nil {
		s.err = err
		return nil
	}
	return buf.Bytes()
}

package dat

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type word struct {
	Text     string `json:"text"`
	Severity int    `json:"severity"`
}

var roundTripCorpus = []string{
	"",
	"abcde",
	"ushers and his hers",
	"이 문장에는 시발 이라는 단어가 있다",
	strings.Repeat("xyzabc", 1000),
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	patterns := map[string]word{
		"abc":  {Text: "abc", Severity: 1},
		"he":   {Text: "he", Severity: 2},
		"hers": {Text: "hers", Severity: 3},
		"시발":   {Text: "시발", Severity: 9},
	}
	original, err := Build(patterns)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, original.Save(&buf))

	loaded, err := Load[word](&buf)
	require.NoError(t, err)
	assert.Equal(t, original.Size(), loaded.Size())

	for _, text := range roundTripCorpus {
		want, err := original.ParseText([]byte(text))
		require.NoError(t, err)
		got, err := loaded.ParseText([]byte(text))
		require.NoError(t, err)
		assert.Equal(t, want, got, "text %q", text)

		wantOK, _ := original.Matches([]byte(text))
		gotOK, _ := loaded.Matches([]byte(text))
		assert.Equal(t, wantOK, gotOK)
	}

	v, ok, err := loaded.Get("hers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, v.Severity)
}

func TestLoad_BadHeader(t *testing.T) {
	_, err := Load[string](strings.NewReader("not a snapshot at all"))
	require.ErrorIs(t, err, ErrCorruptData)

	_, err = Load[string](strings.NewReader(""))
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestLoad_Truncated(t *testing.T) {
	trie, err := Build(identity("abc", "def"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, trie.Save(&buf))

	data := buf.Bytes()
	_, err = Load[string](bytes.NewReader(data[:len(data)/2]))
	require.Error(t, err)
}

func TestLoad_InconsistentLengths(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(t *Trie[string])
	}{
		{"check shorter than base", func(t *Trie[string]) { t.check = t.check[:len(t.check)-1] }},
		{"output shorter than fail", func(t *Trie[string]) { t.output = t.output[:len(t.output)-1] }},
		{"missing length", func(t *Trie[string]) { t.lengths = t.lengths[:len(t.lengths)-1] }},
		{"fail out of range", func(t *Trie[string]) { t.fail[1] = int32(len(t.fail) + 10) }},
		{"output references unknown key", func(t *Trie[string]) { t.output[len(t.output)-1] = []int32{99} }},
		{"base beyond check", func(t *Trie[string]) { t.base[0] = math.MaxInt32 }},
		{"root fails elsewhere", func(t *Trie[string]) { t.fail[0] = t.transition(0, 'a') }},
		{"failure self loop", func(t *Trie[string]) {
			s := t.transition(0, 'a')
			t.fail[s] = s
		}},
		{"failure to deeper state", func(t *Trie[string]) {
			a := t.transition(0, 'a')
			t.fail[a] = t.transition(a, 'b')
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trie, err := Build(identity("abc", "bcd"))
			require.NoError(t, err)
			tt.tamper(trie)

			var buf bytes.Buffer
			require.NoError(t, trie.Save(&buf))

			target := &Trie[string]{}
			err = target.Load(&buf)
			require.ErrorIs(t, err, ErrCorruptData)

			_, err = target.ParseText([]byte("abc"))
			assert.ErrorIs(t, err, ErrNotInitialized, "corrupt data must not activate the trie")
		})
	}
}

// rawSnapshot frames a single varint array the way Save does.
func rawSnapshot(t *testing.T, count uint64, values ...int64) []byte {
	t.Helper()
	var body []byte
	body = binary.AppendUvarint(body, count)
	for _, v := range values {
		body = binary.AppendVarint(body, v)
	}

	var buf bytes.Buffer
	buf.Write(snapshotMagic)
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoad_ValueOutsideInt32(t *testing.T) {
	data := rawSnapshot(t, 1, math.MaxInt32+1)
	_, err := Load[string](bytes.NewReader(data))
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestLoad_DeclaredLengthWithoutData(t *testing.T) {
	data := rawSnapshot(t, uint64(maxArraySize), 1, 2, 3)
	_, err := Load[string](bytes.NewReader(data))
	require.ErrorIs(t, err, ErrCorruptData)

	data = rawSnapshot(t, uint64(maxArraySize)+1)
	_, err = Load[string](bytes.NewReader(data))
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestSave_NotInitialized(t *testing.T) {
	var trie Trie[string]
	var buf bytes.Buffer
	require.ErrorIs(t, trie.Save(&buf), ErrNotInitialized)
}

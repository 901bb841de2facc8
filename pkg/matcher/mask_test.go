package matcher

import (
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	m, err := NewDAT(testWords(), 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "hangul word", text: "야 시발 뭐해", want: "야 ** 뭐해"},
		{name: "overlapping words merge", text: "ushers", want: "u*****"},
		{name: "adjacent words", text: "병신시발", want: "****"},
		{name: "clean text untouched", text: "안녕하세요", want: "안녕하세요"},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := m.Match([]byte(tt.text))
			require.NoError(t, err)

			assert.Equal(t, tt.want, MaskString(tt.text, matches, DefaultMaskRune))
		})
	}
}

func TestMaskSpans_ClipsAndMerges(t *testing.T) {
	content := []byte("abcdefgh")
	spans := []types.OffsetSpan{
		{Start: 6, End: 20},
		{Start: -3, End: 1},
		{Start: 2, End: 4},
		{Start: 3, End: 5},
		{Start: 5, End: 5},
	}

	assert.Equal(t, "#b###f##", string(MaskSpans(content, spans, '#')))
}

func TestMaskSpans_MultibyteMaskRune(t *testing.T) {
	assert.Equal(t, "●●c", string(MaskSpans([]byte("abc"), []types.OffsetSpan{{Start: 0, End: 2}}, '●')))
}

func TestMaskSpans_DoesNotModifyInput(t *testing.T) {
	content := []byte("hello")
	out := MaskSpans(content, nil, '*')
	out[0] = 'j'
	assert.Equal(t, "hello", string(content))
}

func TestRemoveURLs(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"see https://example.com/a?b=c now", "see  now"},
		{"http://x.y and https://z.w", " and "},
		{"no links here", "no links here"},
		{"ftp://not.removed", "ftp://not.removed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RemoveURLs(tt.in))
	}
}

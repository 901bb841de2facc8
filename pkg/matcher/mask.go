package matcher

import (
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// DefaultMaskRune replaces each rune of a masked word.
const DefaultMaskRune = '*'

var urlPattern = regexp.MustCompile(`https?://\S+`)

// RemoveURLs deletes every http(s) URL from text.
func RemoveURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// Mask returns a copy of content with every rune covered by a match replaced
// by mask. Overlapping and adjacent matches are merged first, so each rune is
// replaced once.
func Mask(content []byte, matches []*types.Match, mask rune) []byte {
	spans := make([]types.OffsetSpan, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m.Location.Offset)
	}
	return MaskSpans(content, spans, mask)
}

// MaskString is Mask over a string.
func MaskString(text string, matches []*types.Match, mask rune) string {
	return string(Mask([]byte(text), matches, mask))
}

// MaskSpans replaces the runes inside spans with mask. Spans outside content
// are clipped.
func MaskSpans(content []byte, spans []types.OffsetSpan, mask rune) []byte {
	merged := mergeSpans(spans, int64(len(content)))
	if len(merged) == 0 {
		return append([]byte(nil), content...)
	}

	out := make([]byte, 0, len(content))
	var prev int64
	for _, s := range merged {
		out = append(out, content[prev:s.Start]...)
		for n := utf8.RuneCount(content[s.Start:s.End]); n > 0; n-- {
			out = utf8.AppendRune(out, mask)
		}
		prev = s.End
	}
	return append(out, content[prev:]...)
}

// mergeSpans clips spans to [0, limit), sorts them and merges overlapping or
// touching ones.
func mergeSpans(spans []types.OffsetSpan, limit int64) []types.OffsetSpan {
	clipped := make([]types.OffsetSpan, 0, len(spans))
	for _, s := range spans {
		s.Start = max(s.Start, 0)
		s.End = min(s.End, limit)
		if s.Start < s.End {
			clipped = append(clipped, s)
		}
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start < clipped[j].Start })

	var merged []types.OffsetSpan
	for _, s := range clipped {
		if n := len(merged); n > 0 && s.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, s.End)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

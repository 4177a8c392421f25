package attribution

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func indexOf(mode Mode, snippets ...string) *Index {
	sources := make([][]string, len(snippets))
	for i, s := range snippets {
		sources[i] = Tokenize(s, mode)
	}
	return BuildIndex(sources)
}

func TestMatchWordMode(t *testing.T) {
	idx := indexOf(WordMode, "cats are cute", "mice love cheese")
	spans, used := Match(Tokenize("cats chase mice", WordMode), idx, WordMode)

	require.Equal(t, []Span{
		{Text: "cats", Source: 0, Tokens: 1},
		{Text: "chase", Source: Unattributed, Tokens: 1},
		{Text: "mice", Source: 1, Tokens: 1},
	}, spans)
	require.Equal(t, []int{0, 1}, used)
}

func TestMatchCharacterMode(t *testing.T) {
	idx := indexOf(CharacterMode, "東京都は雨")
	spans, used := Match(Tokenize("東京都は晴れ", CharacterMode), idx, CharacterMode)

	require.Equal(t, []Span{
		{Text: "東京都は", Source: 0, Tokens: 4},
		{Text: "晴", Source: Unattributed, Tokens: 1},
		{Text: "れ", Source: Unattributed, Tokens: 1},
	}, spans)
	require.Equal(t, []int{0}, used)
}

func TestMatchRunSplitsWhenNoCommonSource(t *testing.T) {
	idx := indexOf(WordMode, "red green", "blue yellow")
	spans, _ := Match(Tokenize("red green blue yellow", WordMode), idx, WordMode)

	require.Equal(t, []Span{
		{Text: "red green", Source: 0, Tokens: 2},
		{Text: "blue yellow", Source: 1, Tokens: 2},
	}, spans)
}

func TestMatchPrefersLowestIndex(t *testing.T) {
	idx := indexOf(WordMode, "alpha", "alpha beta", "alpha beta")
	spans, used := Match(Tokenize("alpha beta", WordMode), idx, WordMode)

	// "alpha" alone is shared by all three; after "beta" sources 1 and 2 remain.
	require.Equal(t, []Span{{Text: "alpha beta", Source: 1, Tokens: 2}}, spans)
	require.Equal(t, []int{1}, used)
}

func TestMatchDelimitersNeverAttributed(t *testing.T) {
	idx := indexOf(CharacterMode, "「東京」")
	spans, _ := Match(Tokenize("「東京」", CharacterMode), idx, CharacterMode)

	require.Equal(t, []Span{
		{Text: "「", Source: Unattributed, Tokens: 1},
		{Text: "東京", Source: 0, Tokens: 2},
		{Text: "」", Source: Unattributed, Tokens: 1},
	}, spans)
}

func TestMatchCandidatesOnlyNarrow(t *testing.T) {
	idx := indexOf(WordMode,
		"the quick brown fox",
		"the quick red fox",
		"the lazy brown dog",
		"quick brown fox jumps",
	)
	var transitions int
	m := &matcher{idx: idx, sep: " ", usedSeen: make(map[int]struct{})}
	m.narrowed = func(prev, next []int) {
		transitions++
		set := make(map[int]bool, len(prev))
		for _, p := range prev {
			set[p] = true
		}
		for _, n := range next {
			require.True(t, set[n], "candidate %d not in previous set %v", n, prev)
		}
		require.LessOrEqual(t, len(next), len(prev))
	}
	m.run(Tokenize("the quick brown fox jumps over the lazy brown dog", WordMode))
	require.Positive(t, transitions)
}

func TestMatchEmptyInputs(t *testing.T) {
	spans, used := Match(nil, BuildIndex(nil), WordMode)
	require.Empty(t, spans)
	require.Empty(t, used)

	spans, used = Match(Tokenize("nothing here", WordMode), BuildIndex(nil), WordMode)
	require.Len(t, spans, 2)
	require.Empty(t, used)
	for _, s := range spans {
		require.False(t, s.Attributed())
	}
}

func TestIntersect(t *testing.T) {
	require.Equal(t, []int{2, 5}, intersect([]int{1, 2, 5, 9}, []int{0, 2, 3, 5}))
	require.Nil(t, intersect([]int{1}, []int{2}))
	require.Nil(t, intersect(nil, []int{2}))
}

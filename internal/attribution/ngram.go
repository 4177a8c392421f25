package attribution

import (
	"strconv"
	"strings"
)

const ngramSep = "\x1f"

// gramKey prefixes the length so ngrams of different sizes never collide.
func gramKey(gram []string) string {
	return strconv.Itoa(len(gram)) + ngramSep + strings.Join(gram, ngramSep)
}

// Index maps ngrams to the ascending list of source indices containing them.
type Index struct {
	sizes map[int]struct{}
	grams map[string][]int
}

// BuildIndex indexes the ngrams of each token sequence. sources[i] belongs to
// source index i. sizes selects the ngram lengths (1 to 3); unigrams are
// indexed when none are given. Ngrams containing a delimiter are skipped.
func BuildIndex(sources [][]string, sizes ...int) *Index {
	if len(sizes) == 0 {
		sizes = []int{1}
	}
	idx := &Index{sizes: make(map[int]struct{}, len(sizes)), grams: make(map[string][]int)}
	for _, n := range sizes {
		if n >= 1 && n <= 3 {
			idx.sizes[n] = struct{}{}
		}
	}
	for i, tokens := range sources {
		seen := make(map[string]struct{})
		for n := range idx.sizes {
			for _, gram := range ngrams(tokens, n) {
				key := gramKey(gram)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				// sources are visited in order, so each list stays sorted
				idx.grams[key] = append(idx.grams[key], i)
			}
		}
	}
	return idx
}

// Lookup returns the sources containing the ngram formed by tokens, or nil.
// The returned slice must not be modified.
func (x *Index) Lookup(tokens ...string) []int {
	if x == nil || len(tokens) == 0 {
		return nil
	}
	if _, ok := x.sizes[len(tokens)]; !ok {
		return nil
	}
	return x.grams[gramKey(tokens)]
}

// Len is the number of distinct ngrams indexed.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.grams)
}

func ngrams(tokens []string, n int) [][]string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	out := make([][]string, 0, len(tokens)-n+1)
outer:
	for i := 0; i+n <= len(tokens); i++ {
		gram := tokens[i : i+n]
		for _, tok := range gram {
			if isDelimiter(tok) {
				continue outer
			}
		}
		out = append(out, gram)
	}
	return out
}

package attribution

import "strings"

// Unattributed marks a span no source explains.
const Unattributed = -1

// Span is a contiguous piece of the output text. Source is the index of the
// supporting source, or Unattributed.
type Span struct {
	Text   string `json:"text"`
	Source int    `json:"source"`
	Tokens int    `json:"tokens"`
}

// Attributed reports whether the span has a supporting source.
func (s Span) Attributed() bool { return s.Source != Unattributed }

// matcher holds the state of one left-to-right scan. A fresh value is used
// per call so matching stays free of shared state.
type matcher struct {
	idx  *Index
	sep  string
	buf  []string
	cand []int

	spans    []Span
	used     []int
	usedSeen map[int]struct{}

	// narrowed, when set, observes each candidate-set transition within a run.
	narrowed func(prev, next []int)
}

// Match scans the output tokens once and groups them into spans. A run keeps
// growing while at least one source contains every token seen so far; its
// attribution is the lowest index among those sources. The second return
// value lists representative sources in first-use order.
func Match(tokens []string, idx *Index, mode Mode) ([]Span, []int) {
	m := &matcher{idx: idx, sep: mode.Separator(), usedSeen: make(map[int]struct{})}
	return m.run(tokens)
}

func (m *matcher) run(tokens []string) ([]Span, []int) {
	for _, tok := range tokens {
		sources := m.idx.Lookup(tok)
		if len(sources) == 0 {
			m.flush()
			m.spans = append(m.spans, Span{Text: tok, Source: Unattributed, Tokens: 1})
			continue
		}
		if len(m.buf) == 0 {
			m.start(tok, sources)
			continue
		}
		if next := intersect(m.cand, sources); len(next) > 0 {
			if m.narrowed != nil {
				m.narrowed(m.cand, next)
			}
			m.buf = append(m.buf, tok)
			m.cand = next
			continue
		}
		m.flush()
		m.start(tok, sources)
	}
	m.flush()
	return m.spans, m.used
}

func (m *matcher) start(tok string, sources []int) {
	m.buf = append(m.buf[:0], tok)
	m.cand = sources
}

func (m *matcher) flush() {
	if len(m.buf) == 0 {
		return
	}
	rep := m.cand[0]
	m.spans = append(m.spans, Span{Text: strings.Join(m.buf, m.sep), Source: rep, Tokens: len(m.buf)})
	if _, ok := m.usedSeen[rep]; !ok {
		m.usedSeen[rep] = struct{}{}
		m.used = append(m.used, rep)
	}
	m.buf = m.buf[:0]
	m.cand = nil
}

// intersect returns the common elements of two ascending lists.
func intersect(a, b []int) []int {
	var out []int
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

package attribution

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mode selects the token granularity used for both the output text and every
// snippet of a single Attribute call.
type Mode int

const (
	// WordMode splits on whitespace; suited to space-delimited languages.
	WordMode Mode = iota
	// CharacterMode treats every code point as a token; suited to CJK text.
	CharacterMode
)

func (m Mode) String() string {
	if m == CharacterMode {
		return "character"
	}
	return "word"
}

// Separator is the string placed between tokens when they are joined back.
func (m Mode) Separator() string {
	if m == CharacterMode {
		return ""
	}
	return " "
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, ok := ParseMode(string(b))
	if !ok {
		return fmt.Errorf("unknown attribution mode %q", b)
	}
	*m = parsed
	return nil
}

// ParseMode maps "word"/"character" (also "char") to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word":
		return WordMode, true
	case "character", "char":
		return CharacterMode, true
	}
	return WordMode, false
}

// DetectMode picks character mode for text containing any non-ASCII byte and
// word mode otherwise. It is caller policy: Attribute never calls it.
func DetectMode(text string) Mode {
	for i := 0; i < len(text); i++ {
		if text[i] > 0x7f {
			return CharacterMode
		}
	}
	return WordMode
}

// Tokenize splits text according to mode. It never yields empty tokens.
func Tokenize(text string, mode Mode) []string {
	if mode == WordMode {
		return strings.Fields(text)
	}
	tokens := make([]string, 0, len(text))
	for i := 0; i < len(text); {
		// invalid bytes are kept as their own one-byte token
		_, size := utf8.DecodeRuneInString(text[i:])
		tokens = append(tokens, text[i:i+size])
		i += size
	}
	return tokens
}

var delimiterTokens = map[string]struct{}{
	"「": {},
	"」": {},
	"…": {},
	"　": {},
}

// isDelimiter reports whether tok is a structural connector that must never
// start or extend an attributed run.
func isDelimiter(tok string) bool {
	if _, ok := delimiterTokens[tok]; ok {
		return true
	}
	return strings.TrimFunc(tok, unicode.IsSpace) == ""
}

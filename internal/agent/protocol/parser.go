package protocol

import (
	"regexp"
	"strings"
)

var (
	actionBlockRe = regexp.MustCompile(`(?s)<Action>\s*(.*?)\s*</Action>\s*<Action Input>\s*(.*)\s*</Action Input>`)
	actionOnlyRe  = regexp.MustCompile(`(?s)<Action>\s*(.*?)\s*</Action>`)
	inputOnlyRe   = regexp.MustCompile(`(?s)\s<Action Input>\s*(.*)\s*</Action Input>`)
)

// Parse turns the raw text of one model turn into an Instruction. Exactly one
// of the returned values is non-nil; the error is always a *ParseError.
func Parse(raw string) (Instruction, error) {
	includesAnswer := strings.Contains(raw, FinalAnswerTag)
	if m := actionBlockRe.FindStringSubmatch(raw); m != nil {
		if includesAnswer {
			return nil, &ParseError{Reason: AmbiguousBothActionAndFinish, Raw: raw}
		}
		input := strings.TrimSpace(m[2])
		input = strings.Trim(input, `"`)
		return Act{Name: strings.TrimSpace(m[1]), Input: input, Log: raw}, nil
	}
	if includesAnswer {
		parts := strings.Split(raw, FinalAnswerTag)
		out := strings.ReplaceAll(parts[len(parts)-1], FinalAnswerCloseTag, "")
		return Finish{Output: strings.TrimSpace(out), Log: raw}, nil
	}

	switch {
	case !actionOnlyRe.MatchString(raw):
		return nil, &ParseError{Reason: MissingAction, Raw: raw}
	case !inputOnlyRe.MatchString(raw):
		return nil, &ParseError{Reason: MissingActionInput, Raw: raw}
	default:
		return nil, &ParseError{Reason: Unparseable, Raw: raw}
	}
}

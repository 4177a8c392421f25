package protocol

import "fmt"

// Tag literals shared with the prompt templates. The model is conditioned on
// these exact strings, so changing any of them breaks the protocol.
const (
	ThoughtTag          = "<Thought>"
	ActionTag           = "<Action>"
	ActionCloseTag      = "</Action>"
	ActionInputTag      = "<Action Input>"
	ActionInputCloseTag = "</Action Input>"
	ObservationTag      = "<Observation>"
	ObservationCloseTag = "</Observation>"
	FinalAnswerTag      = "<Final Answer>"
	FinalAnswerCloseTag = "</Final Answer>"
)

// StopSequence halts generation right before the model would invent its own
// observation.
const StopSequence = "\n" + ObservationTag

// ExceptionAction is the action name recorded in the scratchpad when a turn
// could not be parsed and the parse error was fed back as the observation.
const ExceptionAction = "_Exception"

// Instruction is the result of parsing one model turn: either Act or Finish.
type Instruction interface {
	isInstruction()
}

// Act asks the loop to run a tool and continue.
type Act struct {
	Name  string `json:"name"`
	Input string `json:"input"`
	// Log is the raw model text the action was parsed from. It is replayed
	// verbatim in the scratchpad.
	Log string `json:"log"`
}

// Finish ends the loop with the final output text.
type Finish struct {
	Output string `json:"output"`
	Log    string `json:"log"`
}

func (Act) isInstruction()    {}
func (Finish) isInstruction() {}

// ParseFailure classifies why a turn could not be parsed.
type ParseFailure int

const (
	Unparseable ParseFailure = iota
	MissingAction
	MissingActionInput
	AmbiguousBothActionAndFinish
)

func (f ParseFailure) String() string {
	switch f {
	case MissingAction:
		return "missing_action"
	case MissingActionInput:
		return "missing_action_input"
	case AmbiguousBothActionAndFinish:
		return "ambiguous_action_and_finish"
	default:
		return "unparseable"
	}
}

// observation is the corrective message handed back to the model.
func (f ParseFailure) observation() string {
	switch f {
	case MissingAction:
		return "Invalid Format: Missing '" + ActionTag + "' after '" + ThoughtTag + "'"
	case MissingActionInput:
		return "Invalid Format: Missing '" + ActionInputTag + "' after '" + ActionTag + "'"
	case AmbiguousBothActionAndFinish:
		return "Invalid Format: Output contained both a final answer and a parse-able action. Emit exactly one of them."
	default:
		return "Invalid Format: Use either " + ActionTag + "/" + ActionInputTag + " or " + FinalAnswerTag + "."
	}
}

// ParseError reports a model turn that violates the protocol. It is
// recoverable: callers feed Observation() back to the model.
type ParseError struct {
	Reason ParseFailure
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Reason == AmbiguousBothActionAndFinish {
		return fmt.Sprintf("parsing LLM output produced both a final answer and a parse-able action: `%s`", e.Raw)
	}
	return fmt.Sprintf("could not parse LLM output (%s): `%s`", e.Reason, e.Raw)
}

// Observation is the text to feed back to the model as the next observation.
func (e *ParseError) Observation() string {
	return e.Reason.observation()
}

// Step pairs an action with the observation it produced.
type Step struct {
	Action      Act    `json:"action"`
	Observation string `json:"observation"`
}

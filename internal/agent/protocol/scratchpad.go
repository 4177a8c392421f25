package protocol

import "strings"

// RenderScratchpad serializes prior steps into the continuation text the model
// expects after the opening <Thought> of the prompt.
func RenderScratchpad(steps []Step) string {
	var b strings.Builder
	for _, step := range steps {
		b.WriteString(step.Action.Log)
		b.WriteString("\n")
		b.WriteString(ObservationTag)
		b.WriteString(step.Observation)
		b.WriteString(ObservationCloseTag)
		b.WriteString("\n")
		b.WriteString(ThoughtTag)
	}
	return b.String()
}

package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Assistant profiles.
const (
	ProfileWriting = "writing"
	ProfileIdea    = "idea"
)

// Profile is a prompt template for one kind of assistant. The template uses
// {tools}, {tool_names}, {input} and {agent_scratchpad} placeholders.
type Profile struct {
	Name     string
	Template string
}

var writingTemplate = `Human: As an expert journalist, conduct deep research on the provided <Topic></Topic> and write a news article about it.
The final article should explain the background, the benefits, the pain points and the audience who will be affected.
Write in English if the data sources are English. Otherwise write in the language of the sources.
You can use the following tools.

<Tools>
{tools}
</Tools>

Use the following format:

<output-format>
<Thought>Plan what is required to complete the task</Thought>
<Action>The action to take, should be one of {tool_names}</Action>
<Action Input>the input to the action</Action Input>
<Observation>the result of the action</Observation>
... (repeat Thought/Action/Action Input/Observation N times)
<Thought>State I now know the final answer</Thought>
<Summary>Summary of the research result</Summary>
<Final Answer>Final article as an HTML body</Final Answer>
</output-format>

Begin!

<Topic>
{input}
</Topic>

Assistant:
<Thought>{agent_scratchpad}`

var ideaTemplate = `Human: As an experienced journalist, search only once about the <Topic></Topic> and, based on what you find,
come up with several article ideas likely to perform well.
Pay attention to who the topic is for and what would raise that audience's engagement.

You can use the following tools.

<Tools>
{tools}
</Tools>

Use the following format:

<output-format>
<Thought>Plan what is required to complete the task</Thought>
<Action>The action to take, should be one of {tool_names}</Action>
<Action Input>the input to the action</Action Input>
<Observation>the result of the action</Observation>
<Thought>State I've got enough information</Thought>
<Summary>Summary of the research result</Summary>
<Final Answer>List of ideas in the format [{ "idea": "..." }]</Final Answer>
</output-format>

Begin!

<Topic>
{input}
</Topic>

Assistant:
<Thought>{agent_scratchpad}`

var translateTemplate = `Human: As a seasoned technology reporter, translate the text inside the <input></input> tags into a Japanese news article.

<rules>
Focus on what became possible, the benefits, the affected audience and the problems that existed before.
Keep a professional yet plain style.
On first use, give proper nouns their official name in parentheses (in the Latin alphabet when English).
Output HTML.
</rules>

Output only the translation wrapped in <output></output> tags. Output nothing else.

<input>
{input}
</input>

Assistant:
`

var profiles = map[string]Profile{
	ProfileWriting: {Name: ProfileWriting, Template: writingTemplate},
	ProfileIdea:    {Name: ProfileIdea, Template: ideaTemplate},
}

// LookupProfile resolves an assistant profile by name. Empty means writing.
func LookupProfile(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = ProfileWriting
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown assistant profile %q", name)
	}
	return p, nil
}

// Render fills the template. Placeholders are substituted in a single pass,
// so braces inside the topic or scratchpad are left alone.
func (p Profile) Render(topic string, tools *Registry, scratchpad string) string {
	return strings.NewReplacer(
		"{tools}", tools.Describe(),
		"{tool_names}", tools.Names(),
		"{input}", topic,
		"{agent_scratchpad}", scratchpad,
	).Replace(p.Template)
}

// TranslationPrompt asks the model for a Japanese rendition of text.
func TranslationPrompt(text string) string {
	return strings.NewReplacer("{input}", text).Replace(translateTemplate)
}

var interviewTemplate = `Human: Review the <article></article> and work out whom to interview, and about what, to confirm its facts
or to obtain comments that would improve it. For each person write an appointment email and an interview guide.
Write the email as a news site reporter, politely and formally addressed to the person named in who.

Output only the result wrapped in <output></output> tags, following <output-format></output-format>.

<article>
{article}
</article>

<output-format>
[{ "who": "...", "email_message": "...", "interview_guide": "..." }]
</output-format>

Assistant:
`

var editorialTemplate = `Human: As an experienced news editor-in-chief, read the <article></article> closely and give several strict pieces of feedback on
its factual accuracy, any bias it carries, and whether it offers the reader new findings or deeper insight.
Suggest improvements wherever possible. The material it was written from is in <sources></sources>.

Output only the result wrapped in <output></output> tags, following <output-format></output-format>.

<article>
{article}
</article>

<sources>
{sources}
</sources>

<output-format>
[{ "excerpt": "excerpt from the article", "feedback": "feedback" }]
</output-format>

Assistant:
`

var headlineTemplate = `Human: As an experienced news editor-in-chief, read the <article></article> closely and propose several headlines likely to get a high click-through rate.

Output only the result wrapped in <output></output> tags, following <output-format></output-format>.

<article>
{article}
</article>

<output-format>
[{ "title": "headline" }]
</output-format>

Assistant:
`

var broadcastTitleTemplate = `Human: Shorten the article title so it can be shown on a news programme and the point is clear at a glance.
Output only the title wrapped in <output></output> tags.

<title>
{title}
</title>

<article>
{article}
</article>

<rule>
- At most {max_title} characters
- Summarise the key point so it reads at a glance
</rule>

Assistant:
`

var broadcastScriptTemplate = `Human: Write a broadcast script for a news announcer from the <article></article>, following <rule></rule>.
Output only the script wrapped in <output></output> tags.

<article>
{article}
</article>

<rule>
- Join sentences so they flow and are easy to read aloud
- Keep a polite spoken register throughout
- Summarise to about 400 characters
- Where possible, express dates relative to today ({date}): yesterday, today, tomorrow, this month, next month
- Add HTML ruby readings to place and person names that are hard to read (e.g. <ruby>東京都<rt>とうきょうと</rt></ruby>)
- Spell out abbreviations in full
- Use short sentences that carry the key points
- Use Arabic numerals
- Replace jargon with plain words
- Introduce proper nouns by their full name
- Make people's titles and roles explicit
- State times and dates explicitly
</rule>

Assistant:
`

// InterviewPrompt asks for interview targets for a draft article.
func InterviewPrompt(article string) string {
	return strings.NewReplacer("{article}", article).Replace(interviewTemplate)
}

// EditorialPrompt asks for editor feedback on article given its sources.
func EditorialPrompt(article, sources string) string {
	return strings.NewReplacer("{article}", article, "{sources}", sources).Replace(editorialTemplate)
}

// HeadlinePrompt asks for headline candidates.
func HeadlinePrompt(article string) string {
	return strings.NewReplacer("{article}", article).Replace(headlineTemplate)
}

// BroadcastTitlePrompt asks for an on-screen title of at most
// MaxBroadcastTitle characters.
func BroadcastTitlePrompt(title, article string) string {
	return strings.NewReplacer(
		"{title}", title,
		"{article}", article,
		"{max_title}", strconv.Itoa(MaxBroadcastTitle),
	).Replace(broadcastTitleTemplate)
}

// BroadcastScriptPrompt asks for an announcer script, dated relative to date.
func BroadcastScriptPrompt(article, date string) string {
	return strings.NewReplacer("{article}", article, "{date}", date).Replace(broadcastScriptTemplate)
}

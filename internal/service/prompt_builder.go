package service

import (
	"fmt"
	"strings"
	"time"

	"prism-ai/backend/internal/model"
)

const personaTemplate = `You are Prism, a thoughtful bilingual (Japanese/English) assistant.
Today's date is %s.
Answer in the language the user writes in. Be direct and concrete; prefer
worked examples over abstract advice. Use markdown for structure and fenced
blocks for code.`

const toolPolicyBlock = `Tool usage policy:
- Use web search when the answer depends on current or factual information you are not certain about.
- Use URL fetch when the user provides a link that matters to the answer.
- Cite sources for any claim grounded in a search result.
- Never fabricate a citation or a URL.`

var modeBlocks = map[model.Mode]string{
	model.ModeGeneral: `Response mode: general conversation.
Keep answers focused and conversational. Do not pad with caveats.`,
	model.ModeResearch: `Response mode: research.
Work through the research plan if one is given. Search before answering,
cross-check disagreeing sources, and present findings with citations and a
short synthesis at the end. Distinguish established facts from speculation.`,
	model.ModeCoding: `Response mode: coding.
Produce complete, runnable code. State assumptions about versions and
environment. When using a library, verify the current stable version with a
search if unsure. Explain non-obvious decisions briefly, after the code.`,
}

// PromptBuilder assembles the system prompt for one generation. Block order
// is significant: later blocks refine earlier ones from the model's point of
// view, so the persona comes first and memory injections come last, closest
// to the live conversation.
type PromptBuilder struct {
	now func() time.Time
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{now: time.Now}
}

// BuildInput carries everything the builder may weave into a system prompt.
type BuildInput struct {
	Mode           model.Mode
	LongTermMemory string
	MidTermSummary *model.ConversationSummary
	HasAttachment  bool
}

// Build concatenates, in fixed order: persona → tool policy → mode block →
// user preferences (if any) → conversation context (if any).
func (b *PromptBuilder) Build(in BuildInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, personaTemplate, b.now().Format("2006-01-02"))
	sb.WriteString("\n\n")
	sb.WriteString(toolPolicyBlock)

	block, ok := modeBlocks[in.Mode]
	if !ok {
		block = modeBlocks[model.ModeGeneral]
	}
	sb.WriteString("\n\n")
	sb.WriteString(block)

	if in.LongTermMemory != "" {
		sb.WriteString("\n\nUser preferences:\n")
		sb.WriteString(in.LongTermMemory)
	}

	if s := in.MidTermSummary; s != nil {
		sb.WriteString("\n\nConversation context (summary of earlier turns):\n")
		if s.ProjectContext != "" {
			fmt.Fprintf(&sb, "Project: %s\n", s.ProjectContext)
		}
		for _, d := range s.Decisions {
			fmt.Fprintf(&sb, "Decision: %s\n", d)
		}
		if s.CurrentState != "" {
			fmt.Fprintf(&sb, "Current state: %s\n", s.CurrentState)
		}
	}

	return sb.String()
}

// researchPlanBlock renders the plan appendix added in research mode.
func researchPlanBlock(plan *model.ResearchPlan) string {
	var sb strings.Builder
	sb.WriteString("\n\nResearch plan for this request:\n")
	for i, q := range plan.SearchQueries {
		fmt.Fprintf(&sb, "%d. Search %q (%s): %s\n", i+1, q.Query, q.Language, q.Purpose)
	}
	for _, u := range plan.URLsToAnalyze {
		fmt.Fprintf(&sb, "Analyze URL: %s\n", u)
	}
	if plan.ExpectedSources != "" {
		fmt.Fprintf(&sb, "Expected sources: %s\n", plan.ExpectedSources)
	}
	if plan.FallbackStrategy != "" {
		fmt.Fprintf(&sb, "If searches fail: %s\n", plan.FallbackStrategy)
	}
	return sb.String()
}

// attachmentBlock is appended whenever the request carries any attachment.
const attachmentBlock = `

The user attached one or more files. Ground your answer in the actual file
contents. If a file is unreadable or truncated, say so explicitly instead of
guessing what it contains.`

// recoveryBlock is appended on the degraded no-tool path after retries are
// exhausted.
const recoveryBlock = `

Note: live tools are currently unavailable. Answer from general knowledge,
mention that you could not verify against current sources, and suggest the
user retry later if freshness matters.`

package agent

import (
	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/memory"
	"github.com/attachehq/attache/tool"
)

// Fallback instructions for the specialized agents. Each is a fixed
// system instruction; the per-turn context comes from the session
// history, not from the instruction.
const (
	businessAnalystInstruction = "You are a business analyst. Work with the figures the user provides, " +
		"compute profit, margin and conversion rate when asked, and keep every answer grounded in the numbers at hand."

	communicationInstruction = "You are a communication assistant. Draft clear, professional messages " +
		"and emails on request. Keep the tone businesslike and the wording brief."

	documentationInstruction = "You are a documentation assistant. Summarize documents, answer questions " +
		"about file contents and keep wording factual and concise."

	researchInstruction = "You are a research assistant. Extract structured facts from the material " +
		"provided and answer only with what the text supports."

	generalInstruction = "You are a helpful business assistant. Answer concisely and use the " +
		"conversation history for context."
)

// newSpecialized builds a restricted MainAgent tagged as specialized.
func newSpecialized(config core.AgentConfig, registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	a := NewMainAgent(config, registry, mem, optFns...)
	a.kind = "specialized"

	return a
}

// NewBusinessAnalystAgent returns the agent for KPI and financial
// questions. It dispatches compute_kpi and falls back to the model for
// open-ended analysis.
func NewBusinessAnalystAgent(registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	return newSpecialized(core.AgentConfig{
		Name:        "business_analyst",
		Description: "Computes KPIs and answers financial analysis questions.",
		Instruction: businessAnalystInstruction,
		Tools:       []string{"compute_kpi"},
	}, registry, mem, optFns...)
}

// NewCommunicationAgent returns the agent for outbound messages. It
// dispatches draft_email.
func NewCommunicationAgent(registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	return newSpecialized(core.AgentConfig{
		Name:        "communication",
		Description: "Drafts emails and other outbound messages.",
		Instruction: communicationInstruction,
		Tools:       []string{"draft_email"},
	}, registry, mem, optFns...)
}

// NewDocumentationAgent returns the agent for summaries and document
// questions. It dispatches summarize_text and read_file.
func NewDocumentationAgent(registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	return newSpecialized(core.AgentConfig{
		Name:        "documentation",
		Description: "Summarizes text and reads documents from disk.",
		Instruction: documentationInstruction,
		Tools:       []string{"summarize_text", "read_file"},
	}, registry, mem, optFns...)
}

// NewResearchAgent returns the agent for fact extraction. It dispatches
// extract_json.
func NewResearchAgent(registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	return newSpecialized(core.AgentConfig{
		Name:        "research",
		Description: "Extracts structured data from free-form material.",
		Instruction: researchInstruction,
		Tools:       []string{"extract_json"},
	}, registry, mem, optFns...)
}

// NewGeneralAgent returns the catch-all agent with access to every
// registered tool.
func NewGeneralAgent(registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	return newSpecialized(core.AgentConfig{
		Name:        "general",
		Description: "Handles anything the specialized agents do not cover.",
		Instruction: generalInstruction,
	}, registry, mem, optFns...)
}

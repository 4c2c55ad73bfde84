package pipeline

import (
	"fmt"
	"strings"

	"github.com/arcsys-ai/arcsys/model"
)

// Stage node IDs, in graph order.
const (
	StagePlanner    = "planner"
	StageResearcher = "researcher"
	StageArchitect  = "architect"
	StageVisualizer = "visualizer"
	StageCritic     = "critic"
	StageMetaCritic = "meta_critic"
	StageFinalize   = "finalize"
)

const plannerPrompt = `You are the Planner Agent in a technical research lab.

Your task is to analyze the user query and extract structured system requirements.

User Query:
%s

Please analyze the query and extract:
1. Functional requirements (what the system should do)
2. Non-functional requirements (performance, security, scalability)
3. Technical constraints and considerations
4. Success criteria

Format your response as clear, actionable bullet points using Markdown.
Be specific and technical. Focus on measurable requirements.

Requirements:`

// NewPlanner creates the requirements-extraction stage.
func NewPlanner(gen model.Generator) *Agent {
	return &Agent{
		name:        StagePlanner,
		temperature: 0.1,
		required:    []string{"input"},
		gen:         gen,
		prompt: func(s State) string {
			return fmt.Sprintf(plannerPrompt, s.Input)
		},
		parse: func(raw string) State {
			return State{Requirements: strings.TrimSpace(raw)}
		},
	}
}

const researcherPrompt = `You are the Researcher Agent in a technical research lab.

Your task is to provide deep technical analysis and research based on the requirements.

Requirements:
%s

Please provide comprehensive research covering:

1. **Technology Stack Analysis**: relevant technologies, frameworks, and tools; trade-offs between approaches; industry best practices
2. **Technical Challenges**: known challenges and common pitfalls; performance and security considerations
3. **Implementation Patterns**: proven design, architecture, and data flow patterns
4. **Scalability & Performance**: bottlenecks and optimization strategies; monitoring and observability needs; resource requirements

Provide detailed, technical explanations with specific examples.
Focus on actionable insights that will guide the architecture design.

Research Analysis:`

// NewResearcher creates the technical-research stage. Re-invoked on retry;
// its output overwrites the prior attempt.
func NewResearcher(gen model.Generator) *Agent {
	return &Agent{
		name:        StageResearcher,
		temperature: 0.4,
		required:    []string{"requirements"},
		gen:         gen,
		prompt: func(s State) string {
			return fmt.Sprintf(researcherPrompt, s.Requirements)
		},
		parse: func(raw string) State {
			return State{Research: strings.TrimSpace(raw)}
		},
	}
}

const architectPrompt = `You are the Architect Agent in a technical research lab.

Your task is to design a comprehensive system architecture based on the research.

Research Notes:
%s

Requirements Context:
%s

Please design a detailed system architecture that includes:

1. **System Overview**: high-level description, key architectural decisions and rationale, system boundaries
2. **Component Design**: core components and their responsibilities, interactions, and data flow
3. **Data Architecture**: data models, storage strategy, processing pipelines
4. **Infrastructure & Deployment**: deployment architecture, infrastructure requirements, scalability strategy
5. **Security Architecture**: security controls, authentication and authorization, data protection
6. **Monitoring & Observability**: logging strategy, metrics, error handling and recovery

Provide specific, implementable architectural decisions.
Include technology choices with justification.

Architecture Design:`

// NewArchitect creates the system-design stage.
func NewArchitect(gen model.Generator) *Agent {
	return &Agent{
		name:        StageArchitect,
		temperature: 0.2,
		required:    []string{"research", "requirements"},
		gen:         gen,
		prompt: func(s State) string {
			return fmt.Sprintf(architectPrompt, s.Research, s.Requirements)
		},
		parse: func(raw string) State {
			return State{Architecture: strings.TrimSpace(raw)}
		},
	}
}

const visualizerPrompt = `You are the Visualizer Agent in a technical research lab.

Your task is to create clear visual representations of the system architecture.

Architecture Design:
%s

Create comprehensive visual documentation including:

1. **System Architecture Diagram**: components and their relationships
2. **Data Flow Diagram**: how data flows through the system
3. **Deployment Diagram** (if applicable): deployment architecture and infrastructure
4. **Sequence Diagram**: important interaction sequences

Guidelines:
- Express every diagram as a fenced Mermaid code block with proper Mermaid syntax
- Keep diagrams clear and readable, include all major components
- Use consistent naming and add a brief explanation for each diagram

Focus on creating diagrams that effectively communicate the architecture.

Visual Documentation:`

// NewVisualizer creates the diagramming stage.
func NewVisualizer(gen model.Generator) *Agent {
	return &Agent{
		name:        StageVisualizer,
		temperature: 0.1,
		required:    []string{"architecture"},
		gen:         gen,
		prompt: func(s State) string {
			return fmt.Sprintf(visualizerPrompt, s.Architecture)
		},
		parse: func(raw string) State {
			return State{Visualization: strings.TrimSpace(raw)}
		},
	}
}

const criticPrompt = `You are the Critic Agent in a technical research lab.

Your task is to evaluate the quality and completeness of the system architecture.

Original Requirements:
%s

Research Analysis:
%s

Architecture Design:
%s

Evaluate the architecture against these criteria:

1. **Completeness** (0-10): Does it address all requirements?
2. **Technical Soundness** (0-10): Are the technical decisions appropriate?
3. **Scalability** (0-10): Can it handle growth and load?
4. **Security** (0-10): Are security concerns properly addressed?
5. **Maintainability** (0-10): Is the design maintainable and extensible?
6. **Performance** (0-10): Will it meet performance requirements?
7. **Feasibility** (0-10): Is the design realistic to implement?

Provide your evaluation in this exact JSON format:
{
    "score": [average score 0-10],
    "feedback": "[Detailed feedback explaining the score, highlighting strengths and weaknesses, specific improvement suggestions]"
}

Be constructive but thorough in your evaluation.
Provide specific, actionable feedback for improvements.

Evaluation:`

// NewCritic creates the quality-evaluation stage. Its score drives the
// retry decision out of the critic node.
func NewCritic(gen model.Generator) *Agent {
	return &Agent{
		name:        StageCritic,
		temperature: 0.1,
		required:    []string{"requirements", "research", "architecture"},
		gen:         gen,
		prompt: func(s State) string {
			return fmt.Sprintf(criticPrompt, s.Requirements, s.Research, s.Architecture)
		},
		parse: func(raw string) State {
			c := ParseCritique(raw)
			return State{Score: c.Score, ScoreFeedback: c.Feedback}
		},
	}
}

const metaCriticPrompt = `You are the Meta-Critic Agent in a technical research lab.

Your task is to detect potential hallucinations, overconfidence, or bias in the architecture analysis.

Architecture Design:
%s

Requirements Context:
%s

Analyze the architecture for these potential issues:

1. **Hallucination Detection**: claims about technologies without justification, unrealistic performance claims, references to non-existent capabilities
2. **Overconfidence Analysis**: absolute claims without limitations, insufficient discussion of trade-offs, alternatives dismissed too quickly
3. **Bias Detection**: bias toward specific technologies or vendors, unsupported assumptions, insufficient consideration of diverse use cases
4. **Completeness Check**: significant gaps, unaddressed edge cases, missing error handling

Provide a risk score between 0.0 and 1.0 where:
- 0.0 = No concerning issues detected
- 0.3 = Minor issues that should be noted
- 0.5 = Moderate concerns requiring attention
- 0.7 = Significant issues affecting credibility
- 1.0 = Major hallucinations or bias detected

Return only the numerical risk score (e.g. 0.2) followed by a brief explanation.

Risk Assessment:`

// NewMetaCritic creates the bias/hallucination risk stage.
func NewMetaCritic(gen model.Generator) *Agent {
	return &Agent{
		name:        StageMetaCritic,
		temperature: 0.1,
		required:    []string{"architecture", "requirements"},
		gen:         gen,
		prompt: func(s State) string {
			return fmt.Sprintf(metaCriticPrompt, s.Architecture, s.Requirements)
		},
		parse: func(raw string) State {
			return State{RiskScore: ParseRisk(raw)}
		},
	}
}

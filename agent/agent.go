package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/promptrelay/promptrelay/core"
)

// Agent describes one answering persona.
type Agent struct {
	Name        string
	Description string
	// Triggers are lowercase keywords whose presence in a message
	// routes it to this agent.
	Triggers []string
	// Fallback names the agent to defer to when this one cannot
	// answer. Empty for the orchestrator.
	Fallback string
}

// SystemPrompt builds the role instruction sent to the backend when this
// agent answers.
func (a Agent) SystemPrompt() string {
	return fmt.Sprintf(
		"You are %s, an agent in the PromptRelay system.\nYour role is to %s.\nRespond to the user's message concisely and professionally.",
		a.Name, a.Description,
	)
}

// Registry holds the agent roster. Immutable after construction; safe
// for concurrent reads.
type Registry struct {
	agents       map[string]Agent
	order        []string
	defaultAgent string
}

// NewRegistry builds a registry with a deterministic detection order
// (registration order). The default agent must be part of the roster.
func NewRegistry(defaultAgent string, agents ...Agent) (*Registry, error) {
	r := &Registry{agents: make(map[string]Agent, len(agents)), defaultAgent: defaultAgent}
	for _, a := range agents {
		if a.Name == "" {
			return nil, fmt.Errorf("agent with empty name")
		}
		if _, dup := r.agents[a.Name]; dup {
			return nil, fmt.Errorf("duplicate agent %q", a.Name)
		}
		r.agents[a.Name] = a
		r.order = append(r.order, a.Name)
	}
	if _, ok := r.agents[defaultAgent]; !ok {
		return nil, fmt.Errorf("default agent %q is not registered", defaultAgent)
	}
	return r, nil
}

// DefaultRegistry returns the standard roster: claudia orchestrates,
// the specialists cover voice, knowledge, workflow, QA and system
// operations.
func DefaultRegistry() *Registry {
	r, err := NewRegistry("claudia",
		Agent{
			Name:        "claudia",
			Description: "coordinate work across the system as the primary orchestration agent",
			Triggers:    []string{"organize", "manage", "coordinate", "orchestrate", "plan", "schedule"},
		},
		Agent{
			Name:        "echo",
			Description: "handle voice and perception tasks",
			Triggers:    []string{"listen", "hear", "voice", "transcribe", "record", "audio", "sound"},
			Fallback:    "claudia",
		},
		Agent{
			Name:        "kalaw",
			Description: "research and retrieve knowledge",
			Triggers:    []string{"research", "find", "search", "lookup", "knowledge", "information"},
			Fallback:    "claudia",
		},
		Agent{
			Name:        "maya",
			Description: "design workflows and processes",
			Triggers:    []string{"workflow", "process", "steps", "procedure", "diagram", "design"},
			Fallback:    "claudia",
		},
		Agent{
			Name:        "caca",
			Description: "verify quality and validate results",
			Triggers:    []string{"verify", "check", "test", "quality", "validate", "assessment"},
			Fallback:    "claudia",
		},
		Agent{
			Name:        "basher",
			Description: "perform system operations",
			Triggers:    []string{"terminal", "command", "bash", "script", "run", "execute", "ssh", "docker"},
			Fallback:    "claudia",
		},
	)
	if err != nil {
		// The built-in roster is static; a construction failure is a bug.
		panic(err)
	}
	return r
}

// Get returns the named agent.
func (r *Registry) Get(name string) (Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Default returns the default agent.
func (r *Registry) Default() Agent {
	return r.agents[r.defaultAgent]
}

// Names lists registered agents in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

var (
	taskExecutionRe = regexp.MustCompile(`\b(execute|run|automate)\s+tasks?\b`)
	livenessRe      = regexp.MustCompile(`\bis\s+this\s+live\b`)
)

// Detect decides which agent handles the message. An explicitly
// requested agent wins when registered; a non-empty unknown request is a
// client error. Otherwise the message is scanned for triggers, returning
// the matched keyword alongside the agent for logging. The default agent
// answers when nothing matches.
func (r *Registry) Detect(message, requested string) (Agent, string, error) {
	if requested != "" {
		if a, ok := r.agents[requested]; ok {
			return a, "", nil
		}
		return Agent{}, "", fmt.Errorf("%w: %s", core.ErrUnknownAgent, requested)
	}

	lower := strings.ToLower(message)

	// Task execution and liveness checks are orchestration concerns.
	if taskExecutionRe.MatchString(lower) || livenessRe.MatchString(lower) {
		return r.Default(), "", nil
	}

	for _, name := range r.order {
		a := r.agents[name]
		for _, trigger := range a.Triggers {
			if strings.Contains(lower, trigger) {
				return a, trigger, nil
			}
		}
	}

	return r.Default(), "", nil
}

// IsLivenessCheck reports whether the message is asking whether the
// system is up ("is this live").
func IsLivenessCheck(message string) bool {
	return livenessRe.MatchString(strings.ToLower(message))
}

// IsHelpRequest reports whether the message is asking what the system
// can do.
func IsHelpRequest(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "help") || strings.Contains(lower, "what can you do")
}

// Package graph wires the conversation nodes into a compiled state-machine
// graph and exposes the per-turn entry point. One invocation runs a full turn:
// entry at the message router, node hops until a transition resolves to END.
package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/rentalheights/agent-core/internal/agent/extract"
	"github.com/rentalheights/agent-core/internal/agent/graph/nodes"
	"github.com/rentalheights/agent-core/internal/agent/model"
	"github.com/rentalheights/agent-core/internal/agent/pricing"
	"github.com/rentalheights/agent-core/internal/agent/recommend"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// maxRunSteps bounds node hops within one turn; the gatherer self-loop and the
// advisor-to-calculator chain stay well below it.
const maxRunSteps = 20

// Runner executes one conversation turn against a state.
type Runner interface {
	// ProcessTurn never returns an error: any failure inside the turn is
	// converted into an escalation outcome on the returned state.
	ProcessTurn(ctx context.Context, s *model.ConversationState) *model.ConversationState
	ProcessTurnAsync(ctx context.Context, s *model.ConversationState) <-chan *model.ConversationState
}

// Config holds everything needed to compose the conversation graph end-to-end.
type Config struct {
	Completer model.TextCompleter
	Catalog   model.Catalog

	// Extractor is the optional LLM-assisted field extractor; nil leaves
	// only the pattern pass active.
	Extractor model.FieldExtractor

	Prompt  model.PromptConfig
	Pricing model.PricingConfig
}

// GraphBuilder handles the construction of the conversation graph.
type GraphBuilder struct {
	nodes *nodes.Nodes
	graph *compose.Graph[*model.ConversationState, *model.ConversationState]
}

// BuildConversationGraph wires the node collaborators, builds the graph and
// returns a Runner.
func BuildConversationGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("text completer is nil")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	n := nodes.New(
		extract.NewEngine(cfg.Extractor),
		recommend.New(cfg.Catalog),
		pricing.NewEngine(cfg.Pricing),
		cfg.Completer,
		cfg.Prompt,
	)

	builder := &GraphBuilder{
		nodes: n,
		graph: compose.NewGraph[*model.ConversationState, *model.ConversationState](),
	}

	builder.addNodes()
	builder.addEdges()
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Conversation graph built successfully")
	return &graphRunner{runnable: runnable, prompt: cfg.Prompt}, nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeMessageRouter, compose.InvokableLambda(b.nodes.MessageRouter))
	b.graph.AddLambdaNode(nodes.NodeInformationGatherer, compose.InvokableLambda(b.nodes.InformationGatherer))
	b.graph.AddLambdaNode(nodes.NodeEquipmentAdvisor, compose.InvokableLambda(b.nodes.EquipmentAdvisor))
	b.graph.AddLambdaNode(nodes.NodeQuoteCalculator, compose.InvokableLambda(b.nodes.QuoteCalculator))
	b.graph.AddLambdaNode(nodes.NodeConversationManager, compose.InvokableLambda(b.nodes.ConversationManager))
	b.graph.AddLambdaNode(nodes.NodeEscalationHandler, compose.InvokableLambda(b.nodes.EscalationHandler))
}

// addEdges creates the static connections. Every turn enters at the message
// router; all other routing is conditional.
func (b *GraphBuilder) addEdges() {
	b.graph.AddEdge(compose.START, nodes.NodeMessageRouter)
}

// addBranches attaches each node's transition function, constrained to its
// permitted outgoing set.
func (b *GraphBuilder) addBranches() error {
	conditions := map[string]compose.GraphBranchCondition[*model.ConversationState]{
		nodes.NodeMessageRouter:       nodes.NewMessageRouterCondition(),
		nodes.NodeInformationGatherer: nodes.NewInformationGathererCondition(),
		nodes.NodeEquipmentAdvisor:    nodes.NewEquipmentAdvisorCondition(),
		nodes.NodeQuoteCalculator:     nodes.NewQuoteCalculatorCondition(),
		nodes.NodeConversationManager: nodes.NewConversationManagerCondition(),
		nodes.NodeEscalationHandler:   nodes.NewEscalationHandlerCondition(),
	}

	for node, condition := range conditions {
		branch := compose.NewGraphBranch(condition, nodes.Targets[node])
		if err := b.graph.AddBranch(node, branch); err != nil {
			logx.Error().Err(err).Str("node", node).Msg("Error adding transition branch")
			return fmt.Errorf("error adding transition branch for %s: %w", node, err)
		}
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.ConversationState, *model.ConversationState], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

type graphRunner struct {
	runnable compose.Runnable[*model.ConversationState, *model.ConversationState]
	prompt   model.PromptConfig
}

// ProcessTurn validates state integrity, runs the graph and absorbs any
// failure at the turn boundary: the caller always gets a state back, escalated
// when anything went wrong.
func (r *graphRunner) ProcessTurn(ctx context.Context, s *model.ConversationState) *model.ConversationState {
	if err := s.CheckIntegrity(); err != nil {
		if s == nil {
			return nil
		}
		logx.Warn().Err(err).Str("session_id", s.SessionID).Msg("state failed integrity check")
		return r.escalate(s, fmt.Sprintf("invalid conversation state: %v", err))
	}

	out, err := r.invoke(ctx, s)
	if err != nil {
		logx.Error().Err(err).Str("session_id", s.SessionID).Msg("turn execution failed")
		return r.escalate(s, err.Error())
	}
	return out
}

// ProcessTurnAsync runs the turn on its own goroutine; the channel yields the
// resulting state exactly once and is then closed.
func (r *graphRunner) ProcessTurnAsync(ctx context.Context, s *model.ConversationState) <-chan *model.ConversationState {
	ch := make(chan *model.ConversationState, 1)
	go func() {
		defer close(ch)
		ch <- r.ProcessTurn(ctx, s)
	}()
	return ch
}

// invoke runs the compiled graph, converting node panics into errors so they
// are handled like any other node failure.
func (r *graphRunner) invoke(ctx context.Context, s *model.ConversationState) (out *model.ConversationState, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("panic during node execution: %v", rec)
		}
	}()
	return r.runnable.Invoke(ctx, s)
}

// escalate is the turn-boundary fallback: the failure is recorded on the
// state, a hand-off message is appended and the turn terminates.
func (r *graphRunner) escalate(s *model.ConversationState, reason string) *model.ConversationState {
	s.NeedsHumanIntervention = true
	s.ConversationStage = model.StageEscalated
	s.NextAction = model.ActionEnd
	s.EscalationReason = reason
	s.AppendMessage(model.RoleAssistant, nodes.FormatHandoff(r.prompt), "escalation")
	s.Touch()
	return s
}

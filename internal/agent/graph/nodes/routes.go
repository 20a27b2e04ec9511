package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/rentalheights/agent-core/internal/agent/model"
)

// Targets is each node's permitted outgoing set. A transition resolving to a
// node outside the source's set is a configuration defect; the graph engine
// rejects it at run time instead of guessing a fallback.
var Targets = map[string]map[string]bool{
	NodeMessageRouter: {
		NodeInformationGatherer: true,
		NodeEquipmentAdvisor:    true,
		NodeQuoteCalculator:     true,
		NodeConversationManager: true,
		NodeEscalationHandler:   true,
		compose.END:             true,
	},
	NodeInformationGatherer: {
		NodeInformationGatherer: true,
		NodeEquipmentAdvisor:    true,
		NodeEscalationHandler:   true,
		compose.END:             true,
	},
	NodeEquipmentAdvisor: {
		NodeQuoteCalculator:   true,
		NodeEscalationHandler: true,
		compose.END:           true,
	},
	NodeQuoteCalculator: {
		NodeConversationManager: true,
		NodeEscalationHandler:   true,
		compose.END:             true,
	},
	NodeConversationManager: {
		NodeEscalationHandler: true,
		compose.END:           true,
	},
	NodeEscalationHandler: {
		NodeConversationManager: true,
		compose.END:             true,
	},
}

// overrideTarget applies the universal transition overrides, in precedence
// order: pending human intervention wins, then the end sentinel, then a
// terminal stage. Returns "" when no override applies. The intervention check
// is skipped for the escalation handler itself, whose turn ends through the
// escalated stage instead of bouncing back into itself.
func overrideTarget(current string, s *model.ConversationState) string {
	if s.NeedsHumanIntervention && current != NodeEscalationHandler {
		return NodeEscalationHandler
	}
	if s.NextAction == model.ActionEnd {
		return compose.END
	}
	if s.ConversationStage.Terminal() {
		return compose.END
	}
	return ""
}

// follow resolves the transition for nodes with no extra rules of their own.
func follow(current string, s *model.ConversationState) string {
	if next := overrideTarget(current, s); next != "" {
		return next
	}
	return s.NextAction
}

func NewMessageRouterCondition() compose.GraphBranchCondition[*model.ConversationState] {
	return func(ctx context.Context, s *model.ConversationState) (string, error) {
		return follow(NodeMessageRouter, s), nil
	}
}

// NewInformationGathererCondition ends the turn whenever fields are still
// missing: the contextual question just asked awaits the user's answer.
func NewInformationGathererCondition() compose.GraphBranchCondition[*model.ConversationState] {
	return func(ctx context.Context, s *model.ConversationState) (string, error) {
		if next := overrideTarget(NodeInformationGatherer, s); next != "" {
			return next, nil
		}
		if len(s.MissingInformation) > 0 {
			return compose.END, nil
		}
		return s.NextAction, nil
	}
}

func NewEquipmentAdvisorCondition() compose.GraphBranchCondition[*model.ConversationState] {
	return func(ctx context.Context, s *model.ConversationState) (string, error) {
		return follow(NodeEquipmentAdvisor, s), nil
	}
}

func NewQuoteCalculatorCondition() compose.GraphBranchCondition[*model.ConversationState] {
	return func(ctx context.Context, s *model.ConversationState) (string, error) {
		return follow(NodeQuoteCalculator, s), nil
	}
}

// NewConversationManagerCondition always ends the turn after the free-text
// reply; the recorded next_action is the default route for the next turn.
func NewConversationManagerCondition() compose.GraphBranchCondition[*model.ConversationState] {
	return func(ctx context.Context, s *model.ConversationState) (string, error) {
		if s.NeedsHumanIntervention {
			return NodeEscalationHandler, nil
		}
		return compose.END, nil
	}
}

func NewEscalationHandlerCondition() compose.GraphBranchCondition[*model.ConversationState] {
	return func(ctx context.Context, s *model.ConversationState) (string, error) {
		return follow(NodeEscalationHandler, s), nil
	}
}

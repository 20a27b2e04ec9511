// Package nodes implements the processing units of the conversation graph and
// their per-node transition functions. Every node is a function of state to
// mutated state; the only external calls are the LLM completion, the
// recommender and the pricing engine.
package nodes

import (
	"context"
	"strings"

	"github.com/rentalheights/agent-core/internal/agent/extract"
	"github.com/rentalheights/agent-core/internal/agent/graph/prompts"
	"github.com/rentalheights/agent-core/internal/agent/model"
	"github.com/rentalheights/agent-core/internal/agent/pricing"
	"github.com/rentalheights/agent-core/internal/agent/recommend"
	"github.com/rentalheights/agent-core/internal/agent/validate"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// Node names. These are the values next_action may carry, besides the
// terminating sentinel model.ActionEnd.
const (
	NodeMessageRouter       = "message_router"
	NodeInformationGatherer = "information_gatherer"
	NodeEquipmentAdvisor    = "equipment_advisor"
	NodeQuoteCalculator     = "quote_calculator"
	NodeConversationManager = "conversation_manager"
	NodeEscalationHandler   = "escalation_handler"
)

// stageDefaultNode is the message router's fallback table when no keyword
// family matches and the conversation is past greeting.
var stageDefaultNode = map[model.Stage]string{
	model.StageGatheringBasicInfo:      NodeInformationGatherer,
	model.StageGatheringTechnicalInfo:  NodeInformationGatherer,
	model.StageEquipmentRecommendation: NodeEquipmentAdvisor,
	model.StageQuoteGeneration:         NodeQuoteCalculator,
	model.StageQuoteReview:             NodeConversationManager,
}

// stageManagerNextAction is the conversation manager's fixed stage to node
// table, recorded as the default route for the following turn.
var stageManagerNextAction = map[model.Stage]string{
	model.StageGreeting:                NodeInformationGatherer,
	model.StageGatheringBasicInfo:      NodeInformationGatherer,
	model.StageGatheringTechnicalInfo:  NodeEquipmentAdvisor,
	model.StageEquipmentRecommendation: NodeQuoteCalculator,
	model.StageQuoteGeneration:         NodeConversationManager,
	model.StageQuoteReview:             NodeConversationManager,
}

const defaultEscalationReason = "Usuario solicita escalación"

// Nodes bundles the six node implementations with their wired collaborators.
type Nodes struct {
	extractor   *extract.Engine
	recommender *recommend.Recommender
	pricer      *pricing.Engine
	completer   model.TextCompleter
	prompt      model.PromptConfig
}

func New(
	extractor *extract.Engine,
	recommender *recommend.Recommender,
	pricer *pricing.Engine,
	completer model.TextCompleter,
	prompt model.PromptConfig,
) *Nodes {
	return &Nodes{
		extractor:   extractor,
		recommender: recommender,
		pricer:      pricer,
		completer:   completer,
		prompt:      prompt,
	}
}

// MessageRouter classifies the inbound message against the keyword families
// and fixes both next_action and conversation_stage. It never sets
// needs_human_intervention.
func (n *Nodes) MessageRouter(ctx context.Context, s *model.ConversationState) (*model.ConversationState, error) {
	msg := strings.ToLower(s.LastMessage)
	stage := s.ConversationStage

	switch {
	case containsAny(msg, quoteKeywords):
		s.NextAction = NodeInformationGatherer
		s.ConversationStage = model.StageGatheringTechnicalInfo
	case containsAny(msg, technicalKeywords):
		s.NextAction = NodeEquipmentAdvisor
		s.ConversationStage = model.StageEquipmentRecommendation
	case containsAny(msg, contactKeywords):
		s.NextAction = NodeConversationManager
	case stage == model.StageGreeting:
		// first real turn after the welcome
		s.NextAction = NodeInformationGatherer
		s.ConversationStage = model.StageGatheringBasicInfo
	default:
		next, ok := stageDefaultNode[stage]
		if !ok {
			next = NodeConversationManager
		}
		s.NextAction = next
	}

	logx.Debug().
		Str("session_id", s.SessionID).
		Str("stage", string(s.ConversationStage)).
		Str("next_action", s.NextAction).
		Msg("message routed")

	s.Touch()
	return s, nil
}

// InformationGatherer runs the extraction engine, recomputes the missing-field
// list for the current stage and either asks the next contextual question or
// advances the stage.
func (n *Nodes) InformationGatherer(ctx context.Context, s *model.ConversationState) (*model.ConversationState, error) {
	n.extractor.Apply(ctx, s)

	if errs := validate.CollectErrors(s); len(errs) > 0 {
		logx.Warn().
			Str("session_id", s.SessionID).
			Strs("validation_errors", errs).
			Msg("extracted fields failed validation")
	}

	missing := missingInformation(s)
	if len(missing) > 0 {
		s.AppendMessage(model.RoleAssistant, contextualQuestion(missing[0]), "question")
		s.NextAction = NodeInformationGatherer
	} else if s.ConversationStage == model.StageGatheringBasicInfo {
		s.AppendMessage(model.RoleAssistant, basicInfoCompleteMessage, "")
		s.ConversationStage = model.StageGatheringTechnicalInfo
		s.NextAction = NodeInformationGatherer
	} else {
		s.AppendMessage(model.RoleAssistant, allInfoCompleteMessage, "")
		s.ConversationStage = model.StageEquipmentRecommendation
		s.NextAction = NodeEquipmentAdvisor
	}

	s.MissingInformation = missing
	s.Touch()
	return s, nil
}

// missingInformation lists the fields still required for the current stage, in
// asking order. Absent nested records count as missing fields.
func missingInformation(s *model.ConversationState) []string {
	missing := []string{}

	switch s.ConversationStage {
	case model.StageGatheringBasicInfo:
		if s.ProjectDetails == nil || s.ProjectDetails.ProjectType == "" {
			missing = append(missing, extract.FieldProjectType)
		}
		if s.ProjectDetails == nil || s.ProjectDetails.Location == "" {
			missing = append(missing, extract.FieldLocation)
		}
		if s.ProjectDetails == nil || s.ProjectDetails.DurationDays == 0 {
			missing = append(missing, extract.FieldDuration)
		}
	case model.StageGatheringTechnicalInfo:
		if len(s.EquipmentNeeds) == 0 || s.EquipmentNeeds[0].HeightNeeded == 0 {
			missing = append(missing, extract.FieldHeight)
		}
		if len(s.EquipmentNeeds) == 0 || s.EquipmentNeeds[0].EquipmentType == "" {
			missing = append(missing, extract.FieldEquipmentType)
		}
		if s.SiteConditions == nil || s.SiteConditions.SurfaceType == "" {
			missing = append(missing, extract.FieldSurfaceType)
		}
	}

	return missing
}

// EquipmentAdvisor asks the recommender for candidates. An empty result
// escalates; otherwise the ranked list becomes selected_equipment and the
// conversation advances to quote generation.
func (n *Nodes) EquipmentAdvisor(ctx context.Context, s *model.ConversationState) (*model.ConversationState, error) {
	recs, err := n.recommender.Recommend(ctx, s.EquipmentNeeds, s.SiteConditions, s.ProjectDetails)
	if err != nil {
		return nil, err
	}

	if len(recs) == 0 {
		s.AppendMessage(model.RoleAssistant, noEquipmentMessage, "")
		s.NeedsHumanIntervention = true
		s.EscalationReason = "No equipment available for requirements"
		s.NextAction = NodeEscalationHandler
		s.Touch()
		return s, nil
	}

	s.AppendMessage(model.RoleAssistant, FormatRecommendations(recs), "recommendation")
	s.SelectedEquipment = recs
	s.ConversationStage = model.StageQuoteGeneration
	s.NextAction = NodeQuoteCalculator
	s.Touch()
	return s, nil
}

// QuoteCalculator prices the selected equipment, replaces pricing_info
// wholesale and moves the conversation into quote review.
func (n *Nodes) QuoteCalculator(ctx context.Context, s *model.ConversationState) (*model.ConversationState, error) {
	info := n.pricer.Quote(s.SelectedEquipment, s.ProjectDetails)
	s.PricingInfo = &info

	s.AppendMessage(model.RoleAssistant, FormatQuote(info, s.SelectedEquipment), "quote")
	s.ConversationStage = model.StageQuoteReview
	s.NextAction = NodeConversationManager
	s.Touch()
	return s, nil
}

// ConversationManager delegates the free-text reply to the LLM. The recorded
// next_action comes from the fixed stage table and serves as the default route
// for the following turn; escalation and completion are never decided here.
func (n *Nodes) ConversationManager(ctx context.Context, s *model.ConversationState) (*model.ConversationState, error) {
	system, err := prompts.RenderResponderSystem(n.prompt, s)
	if err != nil {
		return nil, err
	}

	reply, err := n.completer.Complete(ctx, system, s.LastMessage)
	if err != nil {
		return nil, err
	}

	s.AppendMessage(model.RoleAssistant, reply, "")

	next, ok := stageManagerNextAction[s.ConversationStage]
	if !ok {
		next = NodeConversationManager
	}
	s.NextAction = next
	s.Touch()
	return s, nil
}

// EscalationHandler hands the conversation off to a human: stage escalated,
// intervention flag raised, contact details appended. The proposed
// conversation_manager next action only takes effect after the caller clears
// the intervention flag through the session service.
func (n *Nodes) EscalationHandler(ctx context.Context, s *model.ConversationState) (*model.ConversationState, error) {
	if s.EscalationReason == "" {
		s.EscalationReason = defaultEscalationReason
	}

	logx.Info().
		Str("session_id", s.SessionID).
		Str("reason", s.EscalationReason).
		Msg("conversation escalated to human agent")

	s.AppendMessage(model.RoleAssistant, FormatHandoff(n.prompt), "escalation")
	s.ConversationStage = model.StageEscalated
	s.NeedsHumanIntervention = true
	s.NextAction = NodeConversationManager
	s.Touch()
	return s, nil
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stage is the coarse-grained phase of a conversation. Transitions happen only
// through the stage router; nodes other than the terminal handlers must never
// set it ad hoc.
type Stage string

const (
	StageGreeting                Stage = "greeting"
	StageGatheringBasicInfo      Stage = "gathering_basic_info"
	StageGatheringTechnicalInfo  Stage = "gathering_technical_info"
	StageEquipmentRecommendation Stage = "equipment_recommendation"
	StageQuoteGeneration         Stage = "quote_generation"
	StageQuoteReview             Stage = "quote_review"
	StageScheduling              Stage = "scheduling"
	StageCompleted               Stage = "completed"
	StageEscalated               Stage = "escalated"
)

// ActionEnd is the sentinel next_action that terminates a turn.
const ActionEnd = "end"

var knownStages = map[Stage]struct{}{
	StageGreeting:                {},
	StageGatheringBasicInfo:      {},
	StageGatheringTechnicalInfo:  {},
	StageEquipmentRecommendation: {},
	StageQuoteGeneration:         {},
	StageQuoteReview:             {},
	StageScheduling:              {},
	StageCompleted:               {},
	StageEscalated:               {},
}

// Valid reports whether s belongs to the fixed stage enumeration.
func (s Stage) Valid() bool {
	_, ok := knownStages[s]
	return ok
}

// Terminal reports whether the stage ends turn processing.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageEscalated
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one transcript entry. The history is append-only and its insertion
// order is the transcript order.
type Message struct {
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	MessageType string    `json:"message_type,omitempty"`
}

// ClientInfo holds contact data filled in incrementally; empty string means unset.
type ClientInfo struct {
	Name              string `json:"name,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	Company           string `json:"company,omitempty"`
	ContactPreference string `json:"contact_preference,omitempty"`
}

type ProjectDetails struct {
	ProjectType  string     `json:"project_type,omitempty"`
	Location     string     `json:"location,omitempty"`
	Address      string     `json:"address,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// EquipmentNeed describes one requested piece of equipment. The first element of
// ConversationState.EquipmentNeeds is the primary need; recommendation and
// pricing consult only that one.
type EquipmentNeed struct {
	EquipmentType        string   `json:"equipment_type,omitempty"`
	HeightNeeded         float64  `json:"height_needed,omitempty"`
	CapacityNeeded       float64  `json:"capacity_needed,omitempty"`
	Quantity             int      `json:"quantity,omitempty"`
	SpecificRequirements []string `json:"specific_requirements,omitempty"`
}

type SiteConditions struct {
	SurfaceType        string   `json:"surface_type,omitempty"`
	AccessWidth        float64  `json:"access_width,omitempty"`
	AccessRestrictions []string `json:"access_restrictions,omitempty"`
	PowerAvailable     *bool    `json:"power_available,omitempty"`
	Obstacles          []string `json:"obstacles,omitempty"`
}

// SelectedEquipment is a chosen catalog item with its computed line subtotal.
type SelectedEquipment struct {
	EquipmentID      string  `json:"equipment_id"`
	EquipmentName    string  `json:"equipment_name"`
	EquipmentType    string  `json:"equipment_type"`
	MaxHeight        float64 `json:"max_height"`
	MaxCapacity      float64 `json:"max_capacity"`
	DailyRate        float64 `json:"daily_rate"`
	Quantity         int     `json:"quantity"`
	TotalDays        int     `json:"total_days"`
	Subtotal         float64 `json:"subtotal"`
	SuitabilityScore float64 `json:"suitability_score"`
}

// PricingInfo is replaced wholesale each time the quote calculator runs,
// never partially mutated.
type PricingInfo struct {
	EquipmentSubtotal float64    `json:"equipment_subtotal"`
	DeliveryCost      float64    `json:"delivery_cost"`
	SetupCost         float64    `json:"setup_cost"`
	InsuranceCost     float64    `json:"insurance_cost"`
	TaxAmount         float64    `json:"tax_amount"`
	TotalAmount       float64    `json:"total_amount"`
	Currency          string     `json:"currency"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
}

// ConversationState is the unit of work: everything one session has accumulated.
// It is exclusively owned by a single session; nothing here is shared across
// sessions, so no locking is required between them.
type ConversationState struct {
	UserID    string `json:"user_id"`
	ChatID    string `json:"chat_id"`
	SessionID string `json:"session_id"`

	ConversationHistory []Message `json:"conversation_history"`
	LastMessage         string    `json:"last_message"`

	ClientInfo        *ClientInfo         `json:"client_info"`
	ProjectDetails    *ProjectDetails     `json:"project_details"`
	EquipmentNeeds    []*EquipmentNeed    `json:"equipment_needs"`
	SiteConditions    *SiteConditions     `json:"site_conditions"`
	SelectedEquipment []SelectedEquipment `json:"selected_equipment"`
	PricingInfo       *PricingInfo        `json:"pricing_info,omitempty"`

	ConversationStage Stage `json:"conversation_stage"`

	NextAction             string   `json:"next_action,omitempty"`
	NeedsHumanIntervention bool     `json:"needs_human_intervention"`
	EscalationReason       string   `json:"escalation_reason,omitempty"`
	MissingInformation     []string `json:"missing_information"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationState builds the initial greeting-stage state for a session.
func NewConversationState(userID, chatID, sessionID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		UserID:              userID,
		ChatID:              chatID,
		SessionID:           sessionID,
		ConversationHistory: []Message{},
		ClientInfo:          &ClientInfo{},
		ProjectDetails:      &ProjectDetails{},
		EquipmentNeeds:      []*EquipmentNeed{},
		SiteConditions:      &SiteConditions{},
		SelectedEquipment:   []SelectedEquipment{},
		ConversationStage:   StageGreeting,
		MissingInformation:  []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// AppendMessage appends one transcript entry and refreshes UpdatedAt.
func (s *ConversationState) AppendMessage(role Role, content, messageType string) {
	s.ConversationHistory = append(s.ConversationHistory, Message{
		Role:        role,
		Content:     content,
		Timestamp:   time.Now().UTC(),
		MessageType: messageType,
	})
	s.Touch()
}

// PrimaryNeed returns the first equipment need, creating it when absent.
func (s *ConversationState) PrimaryNeed() *EquipmentNeed {
	if len(s.EquipmentNeeds) == 0 {
		s.EquipmentNeeds = append(s.EquipmentNeeds, &EquipmentNeed{})
	}
	return s.EquipmentNeeds[0]
}

// Touch refreshes the updated_at timestamp. Every node that mutates state
// calls this before handing control back to the router.
func (s *ConversationState) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Stale reports whether the conversation is ineligible for resume: no activity
// for longer than maxAge.
func (s *ConversationState) Stale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.UpdatedAt) > maxAge
}

// CheckIntegrity verifies the required top-level fields before a turn runs.
// A failure here short-circuits directly to the escalation fallback without
// executing any node.
func (s *ConversationState) CheckIntegrity() error {
	if s == nil {
		return fmt.Errorf("state is nil")
	}
	if !s.ConversationStage.Valid() {
		return fmt.Errorf("unknown conversation_stage %q", s.ConversationStage)
	}
	if s.ConversationHistory == nil {
		return fmt.Errorf("conversation_history is missing")
	}
	if s.LastMessage == "" {
		return fmt.Errorf("last_message is missing")
	}
	if s.ProjectDetails == nil {
		return fmt.Errorf("project_details is missing")
	}
	if s.ClientInfo == nil {
		return fmt.Errorf("client_info is missing")
	}
	return nil
}

// Serialize renders the full state, nested records included, as JSON. Dates
// round-trip through RFC3339 strings.
func Serialize(s *ConversationState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serialize state: %w", err)
	}
	return b, nil
}

// Deserialize reconstructs a state previously produced by Serialize.
func Deserialize(blob []byte) (*ConversationState, error) {
	var s ConversationState
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("deserialize state: %w", err)
	}
	if !s.ConversationStage.Valid() {
		return nil, fmt.Errorf("deserialize state: unknown conversation_stage %q", s.ConversationStage)
	}
	return &s, nil
}

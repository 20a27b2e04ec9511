package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationState(t *testing.T) {
	s := NewConversationState("user-1", "chat-1", "session-1")

	assert.Equal(t, StageGreeting, s.ConversationStage)
	assert.NotNil(t, s.ConversationHistory)
	assert.NotNil(t, s.ClientInfo)
	assert.NotNil(t, s.ProjectDetails)
	assert.NotNil(t, s.SiteConditions)
	assert.False(t, s.NeedsHumanIntervention)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestStage_Valid(t *testing.T) {
	assert.True(t, StageGreeting.Valid())
	assert.True(t, StageEscalated.Valid())
	assert.False(t, Stage("negotiating").Valid())
	assert.False(t, Stage("").Valid())
}

func TestStage_Terminal(t *testing.T) {
	assert.True(t, StageCompleted.Terminal())
	assert.True(t, StageEscalated.Terminal())
	assert.False(t, StageQuoteReview.Terminal())
}

func TestAppendMessage_PreservesOrder(t *testing.T) {
	s := NewConversationState("user-1", "chat-1", "session-1")

	s.AppendMessage(RoleUser, "hola", "")
	s.AppendMessage(RoleAssistant, "¿Qué tipo de trabajo vas a realizar?", "question")

	require.Len(t, s.ConversationHistory, 2)
	assert.Equal(t, RoleUser, s.ConversationHistory[0].Role)
	assert.Equal(t, RoleAssistant, s.ConversationHistory[1].Role)
	assert.Equal(t, "question", s.ConversationHistory[1].MessageType)
}

func TestPrimaryNeed_CreatesWhenAbsent(t *testing.T) {
	s := NewConversationState("user-1", "chat-1", "session-1")

	need := s.PrimaryNeed()
	need.HeightNeeded = 8

	require.Len(t, s.EquipmentNeeds, 1)
	assert.Equal(t, 8.0, s.EquipmentNeeds[0].HeightNeeded)
	assert.Same(t, need, s.PrimaryNeed())
}

func TestStale(t *testing.T) {
	s := NewConversationState("user-1", "chat-1", "session-1")
	now := time.Now().UTC()

	s.UpdatedAt = now.Add(-25 * time.Hour)
	assert.True(t, s.Stale(now, 24*time.Hour))

	s.UpdatedAt = now.Add(-23 * time.Hour)
	assert.False(t, s.Stale(now, 24*time.Hour))
}

func TestCheckIntegrity(t *testing.T) {
	valid := func() *ConversationState {
		s := NewConversationState("user-1", "chat-1", "session-1")
		s.LastMessage = "hola"
		return s
	}

	assert.NoError(t, valid().CheckIntegrity())

	var nilState *ConversationState
	assert.Error(t, nilState.CheckIntegrity())

	s := valid()
	s.ConversationStage = Stage("bogus")
	assert.Error(t, s.CheckIntegrity())

	s = valid()
	s.ConversationHistory = nil
	assert.Error(t, s.CheckIntegrity())

	s = valid()
	s.LastMessage = ""
	assert.Error(t, s.CheckIntegrity())

	s = valid()
	s.ProjectDetails = nil
	assert.Error(t, s.CheckIntegrity())

	s = valid()
	s.ClientInfo = nil
	assert.Error(t, s.CheckIntegrity())
}

func TestSerializeRoundTrip(t *testing.T) {
	start := time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2025, time.June, 14, 12, 30, 0, 0, time.UTC)
	power := true

	s := NewConversationState("user-1", "chat-1", "session-1")
	s.LastMessage = "necesito un andamio de 8 metros"
	s.AppendMessage(RoleUser, s.LastMessage, "")
	s.ProjectDetails = &ProjectDetails{
		ProjectType:  "mantenimiento",
		Location:     "Bogotá centro",
		DurationDays: 10,
		StartDate:    &start,
	}
	s.EquipmentNeeds = []*EquipmentNeed{{EquipmentType: "andamio", HeightNeeded: 8}}
	s.SiteConditions = &SiteConditions{SurfaceType: "concreto", PowerAvailable: &power}
	s.SelectedEquipment = []SelectedEquipment{{
		EquipmentID: "eq-andamio-multi-10", EquipmentName: "Andamio Multidireccional",
		EquipmentType: "andamio", Quantity: 1, TotalDays: 10, Subtotal: 385.71, SuitabilityScore: 69,
	}}
	s.PricingInfo = &PricingInfo{
		EquipmentSubtotal: 385.71, DeliveryCost: 50, SetupCost: 100,
		InsuranceCost: 19.29, TaxAmount: 101.79, TotalAmount: 656.79,
		Currency: "USD", ValidUntil: &validUntil,
	}
	s.ConversationStage = StageQuoteReview
	s.NextAction = "conversation_manager"
	s.MissingInformation = []string{}

	blob, err := Serialize(s)
	require.NoError(t, err)

	got, err := Deserialize(blob)
	require.NoError(t, err)

	assert.Equal(t, s.SessionID, got.SessionID)
	assert.Equal(t, s.ConversationStage, got.ConversationStage)
	assert.Equal(t, s.ProjectDetails, got.ProjectDetails)
	assert.Equal(t, s.EquipmentNeeds, got.EquipmentNeeds)
	assert.Equal(t, s.SiteConditions, got.SiteConditions)
	assert.Equal(t, s.SelectedEquipment, got.SelectedEquipment)
	assert.Equal(t, s.PricingInfo, got.PricingInfo)
	require.Len(t, got.ConversationHistory, 1)
	assert.True(t, s.ConversationHistory[0].Timestamp.Equal(got.ConversationHistory[0].Timestamp))
}

func TestDeserialize_RejectsUnknownStage(t *testing.T) {
	s := NewConversationState("user-1", "chat-1", "session-1")
	blob, err := Serialize(s)
	require.NoError(t, err)

	_, err = Deserialize([]byte(`{"conversation_stage":"negotiating"}`))
	assert.Error(t, err)

	_, err = Deserialize(blob[:len(blob)/2])
	assert.Error(t, err)
}

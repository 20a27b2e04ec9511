package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalheights/agent-core/internal/agent/model"
)

func TestRenderResponderSystem(t *testing.T) {
	s := model.NewConversationState("user-1", "chat-1", "session-1")
	s.ConversationStage = model.StageQuoteReview
	s.ProjectDetails.ProjectType = "mantenimiento"
	s.ProjectDetails.Location = "Bogotá centro"

	out, err := RenderResponderSystem(model.PromptConfig{CompanyName: "RentalHeights Inc"}, s)
	require.NoError(t, err)

	assert.Contains(t, out, "RentalHeights Inc")
	assert.Contains(t, out, "quote_review")
	assert.Contains(t, out, "mantenimiento")
	assert.Contains(t, out, "Bogotá centro")
}

func TestRenderResponderSystem_UnsetFields(t *testing.T) {
	s := model.NewConversationState("user-1", "chat-1", "session-1")

	out, err := RenderResponderSystem(model.PromptConfig{CompanyName: "RentalHeights Inc"}, s)
	require.NoError(t, err)

	assert.Contains(t, out, "No especificado")
}

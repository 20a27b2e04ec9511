package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalheights/agent-core/internal/agent/model"
	errx "github.com/rentalheights/agent-core/internal/core/error"
)

func TestMemoryStateRepository_SaveAndLoad(t *testing.T) {
	r := NewMemoryStateRepository()
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "session-1", sampleState("session-1")))

	got, err := r.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, model.StageGatheringTechnicalInfo, got.ConversationStage)
}

func TestMemoryStateRepository_LoadNotFound(t *testing.T) {
	r := NewMemoryStateRepository()

	_, err := r.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errx.IsNotFound(err))
}

func TestMemoryStateRepository_LoadDoesNotAlias(t *testing.T) {
	r := NewMemoryStateRepository()
	ctx := context.Background()

	original := sampleState("session-1")
	require.NoError(t, r.Save(ctx, "session-1", original))

	loaded, err := r.Load(ctx, "session-1")
	require.NoError(t, err)
	loaded.ConversationStage = model.StageEscalated

	again, err := r.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StageGatheringTechnicalInfo, again.ConversationStage)
}

func TestMemoryStateRepository_Delete(t *testing.T) {
	r := NewMemoryStateRepository()
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "session-1", sampleState("session-1")))
	require.NoError(t, r.Delete(ctx, "session-1"))

	_, err := r.Load(ctx, "session-1")
	assert.True(t, errx.IsNotFound(err))
}

func TestMemoryStateRepository_ExtendTTLNoOp(t *testing.T) {
	r := NewMemoryStateRepository()
	assert.NoError(t, r.ExtendTTL(context.Background(), "whatever"))
}

func TestMemoryTranscript_AppendAndHistory(t *testing.T) {
	tr := NewMemoryTranscript()
	ctx := context.Background()

	require.NoError(t, tr.Append(ctx, "session-1", model.Message{Role: model.RoleUser, Content: "hola"}))
	require.NoError(t, tr.Append(ctx, "session-1", model.Message{Role: model.RoleAssistant, Content: "buenas"}))

	got, err := tr.History(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hola", got[0].Content)

	// returned slice is a copy
	got[0].Content = "mutated"
	again, err := tr.History(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "hola", again[0].Content)
}

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalheights/agent-core/internal/agent/model"
	errx "github.com/rentalheights/agent-core/internal/core/error"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, mr
}

func sampleState(sessionID string) *model.ConversationState {
	s := model.NewConversationState("user-1", "chat-1", sessionID)
	s.LastMessage = "necesito un andamio"
	s.ConversationStage = model.StageGatheringTechnicalInfo
	s.EquipmentNeeds = []*model.EquipmentNeed{{EquipmentType: "andamio", HeightNeeded: 8}}
	return s
}

func TestRedisStateRepository_SaveAndLoad(t *testing.T) {
	client, _ := setupRedis(t)
	r := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "session-1", sampleState("session-1")))

	got, err := r.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, model.StageGatheringTechnicalInfo, got.ConversationStage)
	require.Len(t, got.EquipmentNeeds, 1)
	assert.Equal(t, 8.0, got.EquipmentNeeds[0].HeightNeeded)
}

func TestRedisStateRepository_LoadNotFound(t *testing.T) {
	client, _ := setupRedis(t)
	r := NewRedisStateRepository(client, time.Hour)

	_, err := r.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errx.IsNotFound(err))
}

func TestRedisStateRepository_SaveSetsTTL(t *testing.T) {
	client, mr := setupRedis(t)
	r := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "session-1", sampleState("session-1")))
	assert.Greater(t, mr.TTL("conversation_state:session-1"), time.Duration(0))

	mr.FastForward(2 * time.Hour)
	_, err := r.Load(ctx, "session-1")
	assert.True(t, errx.IsNotFound(err))
}

func TestRedisStateRepository_ExtendTTL(t *testing.T) {
	client, mr := setupRedis(t)
	r := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "session-1", sampleState("session-1")))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, r.ExtendTTL(ctx, "session-1"))

	assert.Equal(t, time.Hour, mr.TTL("conversation_state:session-1"))
}

func TestRedisStateRepository_Delete(t *testing.T) {
	client, _ := setupRedis(t)
	r := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "session-1", sampleState("session-1")))
	require.NoError(t, r.Delete(ctx, "session-1"))

	_, err := r.Load(ctx, "session-1")
	assert.True(t, errx.IsNotFound(err))
}

func TestRedisTranscript_AppendAndHistory(t *testing.T) {
	client, _ := setupRedis(t)
	tr := NewRedisTranscript(client, time.Hour)
	ctx := context.Background()

	msgs := []model.Message{
		{Role: model.RoleUser, Content: "hola", Timestamp: time.Now().UTC()},
		{Role: model.RoleAssistant, Content: "¿Qué tipo de trabajo vas a realizar?", Timestamp: time.Now().UTC(), MessageType: "question"},
	}
	for _, m := range msgs {
		require.NoError(t, tr.Append(ctx, "session-1", m))
	}

	got, err := tr.History(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hola", got[0].Content)
	assert.Equal(t, model.RoleAssistant, got[1].Role)
	assert.Equal(t, "question", got[1].MessageType)
}

func TestRedisTranscript_EmptyHistory(t *testing.T) {
	client, _ := setupRedis(t)
	tr := NewRedisTranscript(client, time.Hour)

	got, err := tr.History(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

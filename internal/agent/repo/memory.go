package repo

import (
	"context"
	"sync"

	"github.com/rentalheights/agent-core/internal/agent/model"
	errx "github.com/rentalheights/agent-core/internal/core/error"
)

// MemoryStateRepository is the process-local fallback store. It enforces no
// TTL; staleness is still handled by the conversation service's 24h rule.
// Entries are kept serialized so loads never alias a caller's state.
type MemoryStateRepository struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{states: make(map[string][]byte)}
}

func (r *MemoryStateRepository) Save(ctx context.Context, sessionID string, state *model.ConversationState) error {
	b, err := model.Serialize(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[sessionID] = b
	return nil
}

func (r *MemoryStateRepository) Load(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	r.mu.RLock()
	b, ok := r.states[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, errx.New(nil, errx.StatusNotFound, "conversation state not found")
	}
	return model.Deserialize(b)
}

func (r *MemoryStateRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, sessionID)
	return nil
}

func (r *MemoryStateRepository) ExtendTTL(ctx context.Context, sessionID string) error {
	// nothing to extend without TTL enforcement
	return nil
}

var _ model.StateRepository = (*MemoryStateRepository)(nil)

// MemoryTranscript keeps transcripts in process memory.
type MemoryTranscript struct {
	mu       sync.RWMutex
	messages map[string][]model.Message
}

func NewMemoryTranscript() *MemoryTranscript {
	return &MemoryTranscript{messages: make(map[string][]model.Message)}
}

func (t *MemoryTranscript) Append(ctx context.Context, sessionID string, msg model.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[sessionID] = append(t.messages[sessionID], msg)
	return nil
}

func (t *MemoryTranscript) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Message, len(t.messages[sessionID]))
	copy(out, t.messages[sessionID])
	return out, nil
}

var _ model.TranscriptSink = (*MemoryTranscript)(nil)

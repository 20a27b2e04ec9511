package model

import "context"

// StateRepository is the persistence contract for conversation state, keyed by
// session id. Load returns an error satisfying errx.IsNotFound when no state
// exists for the session.
type StateRepository interface {
	// Save serializes and stores the full state under its session id.
	Save(ctx context.Context, sessionID string, state *ConversationState) error

	// Load reconstructs the state for a session.
	Load(ctx context.Context, sessionID string) (*ConversationState, error)

	// Delete removes the stored state for a session.
	Delete(ctx context.Context, sessionID string) error

	// ExtendTTL refreshes the entry's time-to-live where the store enforces one.
	ExtendTTL(ctx context.Context, sessionID string) error
}

// TranscriptSink records transcript entries in durable storage, independently
// of the state snapshot.
type TranscriptSink interface {
	Append(ctx context.Context, sessionID string, msg Message) error
}

// Equipment is one catalog record as returned by the catalog collaborator.
type Equipment struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	EquipmentType     string  `json:"equipment_type"`
	MaxHeight         float64 `json:"max_height"`
	MaxCapacity       float64 `json:"max_capacity"`
	DailyRate         float64 `json:"daily_rate"`
	WeeklyRate        float64 `json:"weekly_rate"`
	MonthlyRate       float64 `json:"monthly_rate"`
	PlatformSize      string  `json:"platform_size"`
	Description       string  `json:"description"`
	QuantityAvailable int     `json:"quantity_available"`
	IsAvailable       bool    `json:"is_available"`
}

// Catalog is the equipment lookup capability.
type Catalog interface {
	// Available lists catalog items currently marked available.
	Available(ctx context.Context) ([]Equipment, error)

	// ByID fetches a single item; errx.IsNotFound-satisfying error when absent.
	ByID(ctx context.Context, id string) (*Equipment, error)
}

// TextCompleter is the opaque LLM text-completion capability: one system
// instruction, one user message, freeform text back.
type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// FieldExtractor recovers a single named field from free text. The second
// return value is false when the field was not found; extraction failures are
// reported the same way and never abort the caller.
type FieldExtractor interface {
	ExtractField(ctx context.Context, field, text string) (string, bool)
}

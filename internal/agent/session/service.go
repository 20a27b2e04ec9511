// Package session is the caller-facing conversation service: it owns the
// load-or-create / run-turn / persist cycle around the graph runner, the
// staleness rule and the rate-limit gate.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentalheights/agent-core/internal/agent/graph"
	"github.com/rentalheights/agent-core/internal/agent/model"
	"github.com/rentalheights/agent-core/internal/agent/ratelimit"
	errx "github.com/rentalheights/agent-core/internal/core/error"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// ErrRateLimited is returned by HandleMessage when the admission gate rejects
// the turn before any state is touched.
var ErrRateLimited = errx.New(nil, errx.StatusTooManyRequests, errx.RateLimitedMessage)

// Service coordinates one conversation turn end-to-end. It assumes at most one
// in-flight turn per session; concurrent turns on the same session id are last
// writer wins.
type Service struct {
	runner     graph.Runner
	states     model.StateRepository
	transcript model.TranscriptSink
	limiter    ratelimit.Limiter

	staleAfter time.Duration
	now        func() time.Time
}

// Config wires the service's collaborators. Transcript and Limiter are
// optional; StaleAfter defaults to 24 hours.
type Config struct {
	States     model.StateRepository
	Transcript model.TranscriptSink
	Limiter    ratelimit.Limiter
	StaleAfter time.Duration
}

func NewService(runner graph.Runner, cfg Config) (*Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("graph runner is nil")
	}
	if cfg.States == nil {
		return nil, fmt.Errorf("state repository is nil")
	}

	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}

	return &Service{
		runner:     runner,
		states:     cfg.States,
		transcript: cfg.Transcript,
		limiter:    cfg.Limiter,
		staleAfter: staleAfter,
		now:        time.Now,
	}, nil
}

// CreateOrResume loads the stored state for a session, or creates a fresh one
// when none exists. A stored conversation with no activity for longer than the
// staleness window is deleted and replaced rather than resumed.
func (s *Service) CreateOrResume(ctx context.Context, userID, chatID, sessionID string) (*model.ConversationState, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state, err := s.states.Load(ctx, sessionID)
	if err != nil {
		if !errx.IsNotFound(err) {
			return nil, err
		}
		return model.NewConversationState(userID, chatID, sessionID), nil
	}

	if state.Stale(s.now().UTC(), s.staleAfter) {
		logx.Info().
			Str("session_id", sessionID).
			Time("updated_at", state.UpdatedAt).
			Msg("conversation stale, starting fresh")
		if err := s.states.Delete(ctx, sessionID); err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete stale conversation")
		}
		return model.NewConversationState(userID, chatID, sessionID), nil
	}

	return state, nil
}

// HandleMessage runs one full turn for an inbound message: admission control,
// state mutation through the graph, persistence and transcript append. The
// returned state is always persisted, escalated outcomes included.
func (s *Service) HandleMessage(ctx context.Context, state *model.ConversationState, message string) (*model.ConversationState, error) {
	if state == nil {
		return nil, fmt.Errorf("conversation state is nil")
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, state.UserID)
		if err != nil {
			logx.Warn().Err(err).Str("user_id", state.UserID).Msg("rate limit check failed, allowing turn")
		} else if !allowed {
			return state, ErrRateLimited
		}
	}

	historyBefore := len(state.ConversationHistory)

	state.LastMessage = message
	state.AppendMessage(model.RoleUser, message, "")

	state = s.runner.ProcessTurn(ctx, state)

	if err := s.states.Save(ctx, state.SessionID, state); err != nil {
		return state, err
	}

	s.appendTranscript(ctx, state, historyBefore)
	return state, nil
}

// appendTranscript forwards this turn's new history entries to the transcript
// sink. Sink failures are logged, never surfaced; the state snapshot already
// holds the full history.
func (s *Service) appendTranscript(ctx context.Context, state *model.ConversationState, from int) {
	if s.transcript == nil {
		return
	}
	for _, msg := range state.ConversationHistory[from:] {
		if err := s.transcript.Append(ctx, state.SessionID, msg); err != nil {
			logx.Warn().Err(err).Str("session_id", state.SessionID).Msg("failed to append transcript entry")
			return
		}
	}
}

// Save persists the state and refreshes its TTL.
func (s *Service) Save(ctx context.Context, state *model.ConversationState) error {
	if err := s.states.Save(ctx, state.SessionID, state); err != nil {
		return err
	}
	return s.states.ExtendTTL(ctx, state.SessionID)
}

// End deletes the stored state for a session.
func (s *Service) End(ctx context.Context, sessionID string) error {
	return s.states.Delete(ctx, sessionID)
}

// ResumeFromEscalation clears the human-intervention flag after an operator
// has handled the conversation, returning it to quote review so the next turn
// routes normally. This is the only place the flag is ever cleared.
func (s *Service) ResumeFromEscalation(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	state, err := s.states.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state.NeedsHumanIntervention = false
	state.EscalationReason = ""
	state.ConversationStage = model.StageQuoteReview
	state.NextAction = ""
	state.AppendMessage(model.RoleSystem, "Conversación retomada tras atención de un especialista.", "resume")

	if err := s.states.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}

	logx.Info().Str("session_id", sessionID).Msg("conversation resumed from escalation")
	return state, nil
}

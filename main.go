package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/rentalheights/agent-core/internal/agent/graph"
	"github.com/rentalheights/agent-core/internal/agent/llm"
	"github.com/rentalheights/agent-core/internal/agent/model"
	"github.com/rentalheights/agent-core/internal/agent/ratelimit"
	"github.com/rentalheights/agent-core/internal/agent/repo"
	"github.com/rentalheights/agent-core/internal/agent/session"
	"github.com/rentalheights/agent-core/internal/catalog"
	logx "github.com/rentalheights/agent-core/pkg/logger"
	pkgredis "github.com/rentalheights/agent-core/pkg/redis"
)

// AppConfig defines all configurable parameters for the rental agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure; an unset REDIS_URL selects the in-process stores.
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Responder    model.ResponderModelConfig
	Extractor    model.ExtractorModelConfig
	Prompt       model.PromptConfig
	Pricing      model.PricingConfig
	Conversation model.ConversationConfig
	RateLimit    model.RateLimitConfig
}

func main() {
	logx.Init()

	fmt.Println("Testing rental agent conversation flow...")
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}
	staleAfter, err := time.ParseDuration(envCfg.Conversation.StaleAfter)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_STALE_AFTER '%s': %v", envCfg.Conversation.StaleAfter, err)
	}

	var (
		states     model.StateRepository
		transcript model.TranscriptSink
		limiter    ratelimit.Limiter
	)
	if envCfg.Redis.Configured() {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()

		fmt.Println("Connected to Redis successfully")
		states = repo.NewRedisStateRepository(rdb, ttl)
		transcript = repo.NewRedisTranscript(rdb, ttl)
		limiter = ratelimit.NewRedisLimiter(rdb, envCfg.RateLimit)
	} else {
		fmt.Println("No REDIS_URL configured, using in-process stores")
		states = repo.NewMemoryStateRepository()
		transcript = repo.NewMemoryTranscript()
		limiter = ratelimit.NewMemoryLimiter(envCfg.RateLimit)
	}

	models, err := llm.NewGeminiModels(ctx, llm.GeminiConfig{
		APIKey:    envCfg.APIKey,
		BaseURL:   envCfg.BaseURL,
		Responder: envCfg.Responder,
		Extractor: envCfg.Extractor,
	})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	runner, err := graph.BuildConversationGraph(ctx, graph.Config{
		Completer: llm.NewChatCompleter(models.Responder),
		Extractor: llm.NewFieldExtractor(llm.NewChatCompleter(models.Extractor)),
		Catalog:   catalog.NewInMemory(nil),
		Prompt:    envCfg.Prompt,
		Pricing:   envCfg.Pricing,
	})
	if err != nil {
		log.Fatalf("Failed to build conversation graph: %v", err)
	}

	svc, err := session.NewService(runner, session.Config{
		States:     states,
		Transcript: transcript,
		Limiter:    limiter,
		StaleAfter: staleAfter,
	})
	if err != nil {
		log.Fatalf("Failed to create conversation service: %v", err)
	}

	testMessages := []struct {
		description string
		message     string
	}{
		{
			description: "Initial greeting",
			message:     "hola, buenos días",
		},
		{
			description: "Project type answer",
			message:     "es un trabajo de mantenimiento",
		},
		{
			description: "Location answer",
			message:     "en Bogotá centro",
		},
		{
			description: "Duration answer",
			message:     "unos 10 dias",
		},
		{
			description: "Technical requirements",
			message:     "necesito llegar a 8 metros con un andamio, el piso es de concreto",
		},
	}

	state, err := svc.CreateOrResume(ctx, "test-user-1", "test-chat-1", "test-session-123451")
	if err != nil {
		log.Fatalf("Failed to create conversation: %v", err)
	}

	for i, test := range testMessages {
		fmt.Printf("\n🚀 Turn %d: %s\n", i+1, test.description)
		fmt.Printf("Message: %q\n", test.message)
		fmt.Println("Processing...")

		state, err = svc.HandleMessage(ctx, state, test.message)
		if err != nil {
			if errors.Is(err, session.ErrRateLimited) {
				fmt.Println("Rate limited, stopping")
				break
			}
			log.Fatalf("Failed to process turn %d: %v", i+1, err)
		}

		if len(state.ConversationHistory) > 0 {
			last := state.ConversationHistory[len(state.ConversationHistory)-1]
			fmt.Printf("✅ Reply %d (%s/%s): %s\n", i+1, state.ConversationStage, state.NextAction, last.Content)
		}
		fmt.Println("─────────────────────────────────────────────")

		// slight delay between turns for readability
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("🎉 Conversation flow completed!")
}

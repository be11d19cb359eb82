package bootstrap

import (
	"context"
	"fmt"

	"insurance-voice-agent/internal/agenttools"
	"insurance-voice-agent/internal/clients/googleai"
	"insurance-voice-agent/internal/clients/mail"
	openaiClient "insurance-voice-agent/internal/clients/openai"
	"insurance-voice-agent/internal/config"
	"insurance-voice-agent/internal/crm"
	"insurance-voice-agent/internal/escalation"
	"insurance-voice-agent/internal/events"
	"insurance-voice-agent/internal/knowledge"
	"insurance-voice-agent/internal/observability"
	"insurance-voice-agent/internal/store"
	"insurance-voice-agent/internal/token"
	"insurance-voice-agent/internal/verification"
	"insurance-voice-agent/internal/webhooks"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  *store.Store
	Logger *observability.Logger

	// Handlers
	TokenHandler token.Handler
	ToolsHandler agenttools.Handler
	EventHandler events.Handler

	// Processors, exposed for the agent runtime
	Verification *verification.Processor
	Knowledge    *knowledge.Processor
	Escalation   *escalation.Processor
	Events       *events.Publisher
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Database store is optional. Without one the CRM directory is served
	// from the embedded seed data and escalations are not persisted.
	if cfg.Database.Enabled {
		dbStore, err := store.New(cfg.Database.ConnectionString(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.Store = &dbStore
	}

	directory, err := buildDirectory(ctx, deps.Store, logger)
	if err != nil {
		return nil, err
	}

	// Initialize clients
	mailClient, err := mail.NewResendClient(cfg.Services.ResendAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create resend client: %w", err)
	}

	embeddingsClient := openaiClient.NewEmbeddingsClient(cfg.Services.OpenAIAPIKey, logger)

	searcher, err := knowledge.NewWeaviateSearcher(cfg.Services.WeaviateHost, cfg.Services.WeaviateScheme)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	// The Gemini credential is optional. Without it escalations still work
	// but carry the degraded fallback verdict.
	var classifier escalation.Classifier
	if cfg.Services.GeminiAPIKey != "" {
		geminiClient, err := googleai.NewGeminiClient(cfg.Services.GeminiAPIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		classifier = geminiClient
	} else {
		logger.Warn(ctx, "GEMINI_API_KEY not set, escalation classification runs in degraded mode")
	}

	// Initialize event stream
	deps.Events = events.NewPublisher(logger)
	deps.EventHandler = events.NewHandler(deps.Events, logger)

	// Initialize verification processor
	deps.Verification = verification.New(directory, mailClient, verification.Config{
		Sender:    cfg.Services.CodeSender,
		Recipient: cfg.Services.CodeRecipient,
	}, logger)

	// Initialize knowledge processor
	deps.Knowledge = knowledge.New(embeddingsClient, searcher, logger)

	// Initialize escalation processor
	webhookService := webhooks.New(logger)
	var escalationStore escalation.EscalationStore
	if deps.Store != nil {
		escalationStore = *deps.Store
	}
	deps.Escalation = escalation.New(
		classifier,
		webhookService,
		deps.Events,
		escalationStore,
		cfg.Services.EscalationWebhookURL,
		logger,
	)

	// Initialize token handler
	tokenProc := token.New(cfg.Media, logger)
	deps.TokenHandler = token.NewHandler(tokenProc, logger)

	// Initialize agent tool registry and handler
	registry := agenttools.NewRegistry()
	registry.Register(agenttools.ToolIdentifyUser, func(ctx context.Context, sessionID string, input string) string {
		result, err := deps.Verification.Issue(ctx, sessionID, input)
		if err != nil {
			logger.Error(ctx, "failed to issue verification code", err)
			return "SYSTEM: Une erreur technique est survenue."
		}
		return result.Message
	})
	registry.Register(agenttools.ToolVerifyCode, func(ctx context.Context, sessionID string, input string) string {
		return deps.Verification.Verify(ctx, sessionID, input).Message
	})
	registry.Register(agenttools.ToolSearchClaims, func(ctx context.Context, sessionID string, input string) string {
		return deps.Knowledge.Search(ctx, input)
	})
	registry.Register(agenttools.ToolTransfer, func(ctx context.Context, sessionID string, input string) string {
		return deps.Escalation.TransferToAdvisor(ctx, sessionID, input)
	})
	deps.ToolsHandler = agenttools.NewHandler(registry, logger)

	return deps, nil
}

// buildDirectory loads customer profiles from the database when one is
// configured, falling back to the embedded seed data.
func buildDirectory(ctx context.Context, dbStore *store.Store, logger *observability.Logger) (*crm.Directory, error) {
	if dbStore == nil {
		logger.Info(ctx, "serving CRM directory from embedded seed data")
		return crm.New(crm.SeedProfiles()), nil
	}

	profiles, err := dbStore.GetCustomerProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer profiles: %w", err)
	}
	if len(profiles) == 0 {
		logger.Warn(ctx, "customer profile table is empty, using embedded seed data")
		return crm.New(crm.SeedProfiles()), nil
	}
	return crm.New(profiles), nil
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Error(context.Background(), "failed to close database connection", err)
		}
	}
}

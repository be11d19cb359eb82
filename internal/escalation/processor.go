package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"insurance-voice-agent/internal/events"
	"insurance-voice-agent/internal/observability"
	"insurance-voice-agent/internal/store"
)

// AckMessage is returned synchronously to the voice agent; the verdict
// arrives later on the session event stream.
const AckMessage = "SYSTEM: Votre demande est en cours d'analyse par notre superviseur IA..."

// Classifications produced by the AI supervisor.
const (
	ClassificationStandard = "STANDARD"
	ClassificationComplexe = "COMPLEXE"
	ClassificationCritique = "CRITIQUE"
)

// Priorities attached to the handover event.
const (
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

const classificationPrompt = `Agis comme un Superviseur Senior en Assurance.
Analyse cette demande client: '%s'
Réponds en JSON unique avec:
{"classification":"STANDARD|COMPLEXE|CRITIQUE",
 "confidence":0-100,
 "reasoning":"explication courte",
 "routing_dept":"Support|Juridique|Expertise|Crise"}`

// Verdict is the structured output of the AI supervision step. It is
// ephemeral: consumed to derive a priority and a handover event, then
// discarded (aside from the best-effort audit row).
type Verdict struct {
	Classification string `json:"classification"`
	Confidence     int    `json:"confidence"`
	Reasoning      string `json:"reasoning"`
	RoutingDept    string `json:"routing_dept"`
}

// HandoverEvent is the payload posted to the escalation webhook.
type HandoverEvent struct {
	Event      string  `json:"event"`
	UserInput  string  `json:"user_input"`
	AIAnalysis Verdict `json:"ai_analysis"`
	Priority   string  `json:"priority"`
}

// Classifier runs the single-turn supervision call.
type Classifier interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// WebhookDeliverer posts the handover event to the external endpoint.
type WebhookDeliverer interface {
	Deliver(ctx context.Context, url string, payload interface{}) error
}

// EventPublisher carries the follow-up message to the live session.
type EventPublisher interface {
	Publish(ctx context.Context, event events.AgentEvent)
}

// EscalationStore records handover verdicts for audit. May be nil.
type EscalationStore interface {
	InsertEscalation(ctx context.Context, record store.EscalationRecord) (store.EscalationRecord, error)
}

// Processor escalates a conversation to a human advisor. The caller-facing
// half is synchronous and instant; classification, webhook delivery and
// follow-up publication run in a detached background task whose failures
// are logged and never surfaced to the caller.
type Processor struct {
	classifier Classifier
	webhooks   WebhookDeliverer
	publisher  EventPublisher
	store      EscalationStore
	webhookURL string
	logger     *observability.Logger
}

// New creates an escalation processor. classifier may be nil when no API
// credential is configured; escalations then carry the degraded verdict.
// escalationStore may be nil when no database is configured.
func New(
	classifier Classifier,
	webhooks WebhookDeliverer,
	publisher EventPublisher,
	escalationStore EscalationStore,
	webhookURL string,
	logger *observability.Logger,
) *Processor {
	return &Processor{
		classifier: classifier,
		webhooks:   webhooks,
		publisher:  publisher,
		store:      escalationStore,
		webhookURL: webhookURL,
		logger:     logger,
	}
}

// TransferToAdvisor acknowledges the handover immediately and forks the
// supervision flow. It never blocks on the classification call.
func (p *Processor) TransferToAdvisor(ctx context.Context, sessionID string, reason string) string {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID},
		observability.Field{Key: "handover_reason", Value: reason},
	)
	p.logger.Info(ctx, "handover requested")

	// Detached context: the background analysis outlives the tool request.
	bgCtx := observability.WithFields(context.Background(),
		observability.Field{Key: "session_id", Value: sessionID},
	)
	go p.analyze(bgCtx, sessionID, reason)

	return AckMessage
}

func (p *Processor) analyze(ctx context.Context, sessionID string, reason string) {
	verdict := p.classify(ctx, reason)
	priority, followUp := routeVerdict(verdict)

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "classification", Value: verdict.Classification},
		observability.Field{Key: "priority", Value: priority},
	)

	payload := HandoverEvent{
		Event:      "ai_supervised_handover",
		UserInput:  reason,
		AIAnalysis: verdict,
		Priority:   priority,
	}
	if err := p.webhooks.Deliver(ctx, p.webhookURL, payload); err != nil {
		p.logger.Error(ctx, "handover webhook delivery failed", err)
	}

	p.publisher.Publish(ctx, events.AgentEvent{
		SessionID: sessionID,
		Type:      events.EventTypeEscalationVerdict,
		Message:   followUp,
		Data: map[string]interface{}{
			"classification": verdict.Classification,
			"confidence":     verdict.Confidence,
			"routing_dept":   verdict.RoutingDept,
			"priority":       priority,
		},
	})

	if p.store != nil {
		_, err := p.store.InsertEscalation(ctx, store.EscalationRecord{
			SessionID:      sessionID,
			Reason:         reason,
			Classification: verdict.Classification,
			Confidence:     verdict.Confidence,
			Reasoning:      verdict.Reasoning,
			RoutingDept:    verdict.RoutingDept,
			Priority:       priority,
		})
		if err != nil {
			p.logger.Error(ctx, "failed to record escalation", err)
		}
	}

	p.logger.Info(ctx, fmt.Sprintf("follow-up message ready: %s", followUp))
}

// classify runs the supervision call and parses its verdict. Every failure
// mode degrades to a conservative "treat as complex" fallback.
func (p *Processor) classify(ctx context.Context, reason string) Verdict {
	if p.classifier == nil {
		p.logger.Warn(ctx, "no classification credential configured, using fallback verdict")
		return Verdict{
			Classification: ClassificationComplexe,
			Reasoning:      "No API Key",
			RoutingDept:    "Support",
		}
	}

	text, err := p.classifier.GenerateText(ctx, fmt.Sprintf(classificationPrompt, reason))
	if err != nil {
		p.logger.Error(ctx, "supervisor classification call failed", err)
		return Verdict{
			Classification: ClassificationComplexe,
			Reasoning:      "AI Error",
			RoutingDept:    "Backup",
		}
	}

	verdict, err := parseVerdict(text)
	if err != nil {
		p.logger.Error(ctx, "failed to parse supervisor verdict", err)
		return Verdict{
			Classification: ClassificationComplexe,
			Reasoning:      "AI Error",
			RoutingDept:    "Backup",
		}
	}
	return verdict
}

// parseVerdict decodes the model response, tolerating fenced code blocks.
func parseVerdict(text string) (Verdict, error) {
	clean := strings.TrimSpace(text)
	clean = strings.ReplaceAll(clean, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var verdict Verdict
	if err := json.Unmarshal([]byte(clean), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}

	if verdict.Classification == "" {
		verdict.Classification = ClassificationStandard
	}
	if verdict.RoutingDept == "" {
		verdict.RoutingDept = "Support"
	}
	if verdict.Reasoning == "" {
		verdict.Reasoning = "N/A"
	}
	return verdict, nil
}

// routeVerdict maps a classification to the handover priority and the
// follow-up message for the live session.
func routeVerdict(verdict Verdict) (priority string, followUp string) {
	switch verdict.Classification {
	case ClassificationCritique:
		return PriorityUrgent, fmt.Sprintf(
			"SYSTEM: ALERTE CRITIQUE (%s). Transférez immédiatement à la cellule de CRISE.", verdict.Reasoning)
	case ClassificationComplexe:
		return PriorityHigh, fmt.Sprintf(
			"SYSTEM: Cas complexe détecté (%s). Transférez à un Spécialiste Senior.", verdict.RoutingDept)
	default:
		return PriorityNormal,
			"SYSTEM: Demande standard, mais le client insiste. Transfert au Support niveau 1."
	}
}

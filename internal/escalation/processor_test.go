package escalation

import (
	"context"
	"testing"
	"time"

	"insurance-voice-agent/internal/events"
	"insurance-voice-agent/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// capturingDeliverer records delivered payloads and signals on a channel so
// tests can wait for the background task without sleeping.
type capturingDeliverer struct {
	delivered chan HandoverEvent
	err       error
}

func newCapturingDeliverer() *capturingDeliverer {
	return &capturingDeliverer{delivered: make(chan HandoverEvent, 1)}
}

func (d *capturingDeliverer) Deliver(ctx context.Context, url string, payload interface{}) error {
	d.delivered <- payload.(HandoverEvent)
	return d.err
}

func waitForEvent(t *testing.T, ch <-chan HandoverEvent) HandoverEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("background analysis did not deliver webhook payload")
		return HandoverEvent{}
	}
}

func newTestProcessor(classifier Classifier, deliverer WebhookDeliverer, publisher *events.Publisher) *Processor {
	logger := observability.NewLogger()
	return New(classifier, deliverer, publisher, nil, "https://hooks.example.com/handover", logger)
}

func TestTransferToAdvisor_ReturnsAckWithoutBlockingOnClassification(t *testing.T) {
	classifier := new(MockClassifier)
	classifier.On("GenerateText", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return(`{"classification":"STANDARD","confidence":50,"reasoning":"ok","routing_dept":"Support"}`, nil)

	deliverer := newCapturingDeliverer()
	publisher := events.NewPublisher(observability.NewLogger())
	processor := newTestProcessor(classifier, deliverer, publisher)

	start := time.Now()
	ack := processor.TransferToAdvisor(context.Background(), "session-1", "mon dossier est bloqué")
	elapsed := time.Since(start)

	assert.Equal(t, AckMessage, ack)
	assert.Less(t, elapsed, 100*time.Millisecond)

	waitForEvent(t, deliverer.delivered)
}

func TestTransferToAdvisor_CritiqueVerdictRoutesUrgent(t *testing.T) {
	classifier := new(MockClassifier)
	classifier.On("GenerateText", mock.Anything, mock.Anything).
		Return(`{"classification":"CRITIQUE","confidence":90,"reasoning":"fraud","routing_dept":"Crise"}`, nil)

	deliverer := newCapturingDeliverer()
	publisher := events.NewPublisher(observability.NewLogger())
	eventCh, cancel := publisher.Subscribe("session-1")
	defer cancel()

	processor := newTestProcessor(classifier, deliverer, publisher)
	processor.TransferToAdvisor(context.Background(), "session-1", "la compagnie refuse de payer")

	payload := waitForEvent(t, deliverer.delivered)
	assert.Equal(t, "ai_supervised_handover", payload.Event)
	assert.Equal(t, "la compagnie refuse de payer", payload.UserInput)
	assert.Equal(t, PriorityUrgent, payload.Priority)
	assert.Equal(t, ClassificationCritique, payload.AIAnalysis.Classification)
	assert.Equal(t, 90, payload.AIAnalysis.Confidence)
	assert.Equal(t, "Crise", payload.AIAnalysis.RoutingDept)

	select {
	case event := <-eventCh:
		assert.Equal(t, events.EventTypeEscalationVerdict, event.Type)
		assert.Contains(t, event.Message, "ALERTE CRITIQUE (fraud)")
		assert.Equal(t, PriorityUrgent, event.Data["priority"])
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up event was not published")
	}
}

func TestTransferToAdvisor_ClassifierFailureUsesFallbackVerdict(t *testing.T) {
	classifier := new(MockClassifier)
	classifier.On("GenerateText", mock.Anything, mock.Anything).Return("", assert.AnError)

	deliverer := newCapturingDeliverer()
	publisher := events.NewPublisher(observability.NewLogger())
	processor := newTestProcessor(classifier, deliverer, publisher)

	ack := processor.TransferToAdvisor(context.Background(), "session-1", "litige")
	assert.Equal(t, AckMessage, ack)

	payload := waitForEvent(t, deliverer.delivered)
	assert.Equal(t, ClassificationComplexe, payload.AIAnalysis.Classification)
	assert.Equal(t, "AI Error", payload.AIAnalysis.Reasoning)
	assert.Equal(t, "Backup", payload.AIAnalysis.RoutingDept)
	assert.Equal(t, PriorityHigh, payload.Priority)
}

func TestTransferToAdvisor_MissingCredentialSkipsClassifierCall(t *testing.T) {
	deliverer := newCapturingDeliverer()
	publisher := events.NewPublisher(observability.NewLogger())
	processor := newTestProcessor(nil, deliverer, publisher)

	processor.TransferToAdvisor(context.Background(), "session-1", "litige")

	payload := waitForEvent(t, deliverer.delivered)
	assert.Equal(t, ClassificationComplexe, payload.AIAnalysis.Classification)
	assert.Equal(t, "No API Key", payload.AIAnalysis.Reasoning)
	assert.Equal(t, "Support", payload.AIAnalysis.RoutingDept)
}

func TestTransferToAdvisor_WebhookFailureIsSwallowed(t *testing.T) {
	classifier := new(MockClassifier)
	classifier.On("GenerateText", mock.Anything, mock.Anything).
		Return(`{"classification":"STANDARD","confidence":40,"reasoning":"routine","routing_dept":"Support"}`, nil)

	deliverer := newCapturingDeliverer()
	deliverer.err = assert.AnError
	publisher := events.NewPublisher(observability.NewLogger())
	eventCh, cancel := publisher.Subscribe("session-1")
	defer cancel()

	processor := newTestProcessor(classifier, deliverer, publisher)
	ack := processor.TransferToAdvisor(context.Background(), "session-1", "question simple")
	assert.Equal(t, AckMessage, ack)

	waitForEvent(t, deliverer.delivered)

	// The follow-up is still published even though the webhook failed.
	select {
	case event := <-eventCh:
		assert.Contains(t, event.Message, "Support niveau 1")
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up event was not published")
	}
}

func TestParseVerdict_StripsCodeFences(t *testing.T) {
	verdict, err := parseVerdict("```json\n{\"classification\":\"CRITIQUE\",\"confidence\":80,\"reasoning\":\"menace légale\",\"routing_dept\":\"Juridique\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, ClassificationCritique, verdict.Classification)
	assert.Equal(t, "Juridique", verdict.RoutingDept)
}

func TestParseVerdict_AppliesDefaults(t *testing.T) {
	verdict, err := parseVerdict(`{"confidence":10}`)
	require.NoError(t, err)
	assert.Equal(t, ClassificationStandard, verdict.Classification)
	assert.Equal(t, "Support", verdict.RoutingDept)
	assert.Equal(t, "N/A", verdict.Reasoning)
}

func TestParseVerdict_RejectsNonJSON(t *testing.T) {
	_, err := parseVerdict("désolé, je ne peux pas répondre")
	assert.Error(t, err)
}

func TestRouteVerdict_Mapping(t *testing.T) {
	priority, msg := routeVerdict(Verdict{Classification: ClassificationCritique, Reasoning: "fraude"})
	assert.Equal(t, PriorityUrgent, priority)
	assert.Contains(t, msg, "cellule de CRISE")

	priority, msg = routeVerdict(Verdict{Classification: ClassificationComplexe, RoutingDept: "Expertise"})
	assert.Equal(t, PriorityHigh, priority)
	assert.Contains(t, msg, "Spécialiste Senior")

	priority, msg = routeVerdict(Verdict{Classification: ClassificationStandard})
	assert.Equal(t, PriorityNormal, priority)
	assert.Contains(t, msg, "Support niveau 1")
}

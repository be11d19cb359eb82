package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"insurance-voice-agent/internal/crm"
	"insurance-voice-agent/internal/observability"
)

const (
	// DefaultCodeTTL bounds how long an issued code stays valid.
	DefaultCodeTTL = 5 * time.Minute
	// DefaultMaxAttempts caps failed read-backs per issued code.
	DefaultMaxAttempts = 3
)

// Directory resolves caller-supplied identifiers to customer profiles.
type Directory interface {
	Lookup(identifier string) (crm.CustomerProfile, bool)
}

// Notifier delivers the one-time code out of band.
type Notifier interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

// Config holds verification settings.
type Config struct {
	CodeTTL     time.Duration
	MaxAttempts int
	Sender      string
	Recipient   string
}

// pendingVerification is the per-session state between issue and verify.
// A code is single-use and valid only until it expires, is consumed, or a
// new issuance for the session overwrites it.
type pendingVerification struct {
	userID   string
	code     string
	issuedAt time.Time
	attempts int
	consumed bool
}

// Processor runs the two-factor identification handshake. Sessions are
// keyed by call session ID so concurrent calls cannot clobber each other's
// pending verification.
type Processor struct {
	directory Directory
	notifier  Notifier
	logger    *observability.Logger
	config    Config

	mu       sync.Mutex
	sessions map[string]*pendingVerification
	now      func() time.Time
}

// New creates a verification processor.
func New(directory Directory, notifier Notifier, config Config, logger *observability.Logger) *Processor {
	if config.CodeTTL <= 0 {
		config.CodeTTL = DefaultCodeTTL
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &Processor{
		directory: directory,
		notifier:  notifier,
		logger:    logger,
		config:    config,
		sessions:  make(map[string]*pendingVerification),
		now:       time.Now,
	}
}

// IssueResult is returned to the voice agent after an issuance attempt.
type IssueResult struct {
	Found   bool
	Code    string
	Message string
}

// VerifyStatus enumerates the outcomes of a code verification.
type VerifyStatus string

const (
	StatusSuccess         VerifyStatus = "success"
	StatusCodeMismatch    VerifyStatus = "code_mismatch"
	StatusNoPending       VerifyStatus = "no_pending"
	StatusExpired         VerifyStatus = "expired"
	StatusTooManyAttempts VerifyStatus = "too_many_attempts"
)

// VerifyResult is returned to the voice agent after a verification attempt.
// Expected and Received are diagnostic values; Message is what the agent
// consumes and, on mismatch, echoes both codes so the agent can coach the
// caller through a misheard digit.
type VerifyResult struct {
	Status   VerifyStatus
	Profile  crm.CustomerProfile
	Message  string
	Expected string
	Received string
}

// Issue resolves the identifier, generates a fresh 4-digit code for the
// session and dispatches it by email. Delivery is best-effort: a failed
// send is logged but the code is still considered issued, since the
// operator can observe it out of band.
func (p *Processor) Issue(ctx context.Context, sessionID string, identifier string) (IssueResult, error) {
	normalized := crm.NormalizeIdentifier(identifier)
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID},
		observability.Field{Key: "customer_id", Value: normalized},
	)

	_, ok := p.directory.Lookup(normalized)
	if !ok {
		p.logger.Info(ctx, "identification requested for unknown customer")
		return IssueResult{Found: false, Message: "SYSTEM: Client non trouvé."}, nil
	}

	code, err := generateCode()
	if err != nil {
		p.logger.Error(ctx, "failed to generate verification code", err)
		return IssueResult{}, fmt.Errorf("failed to generate verification code: %w", err)
	}

	p.mu.Lock()
	p.sessions[sessionID] = &pendingVerification{
		userID:   normalized,
		code:     code,
		issuedAt: p.now(),
	}
	p.mu.Unlock()

	body := fmt.Sprintf("Votre code de sécurité est : %s\n\nNe le partagez pas.", code)
	if _, err := p.notifier.SendText(ctx, p.config.Sender, p.config.Recipient,
		"Code de validation Assurance", body); err != nil {
		p.logger.Error(ctx, "failed to deliver verification code email", err)
	} else {
		p.logger.Info(ctx, "verification code dispatched")
	}

	message := fmt.Sprintf("SYSTEM: Client identifié.\n"+
		"ACTION: Code de sécurité %s généré et envoyé par email à %s.\n"+
		"INSTRUCTION: Dis au client : \"Pour sécuriser l'accès, je viens de vous envoyer "+
		"un code de validation sur votre email. Pouvez-vous me le communiquer ?\"",
		code, p.config.Recipient)

	return IssueResult{Found: true, Code: code, Message: message}, nil
}

// Verify compares a caller-supplied code against the session's pending
// verification. The submitted value is normalized first to tolerate
// spoken-digit transcription artifacts ("1 2 3 4", "1234.").
func (p *Processor) Verify(ctx context.Context, sessionID string, submitted string) VerifyResult {
	received := normalizeCode(submitted)
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID},
	)

	p.mu.Lock()
	defer p.mu.Unlock()

	pending, ok := p.sessions[sessionID]
	if !ok || pending.consumed {
		p.logger.Info(ctx, "verification attempted without a pending code")
		return VerifyResult{
			Status:   StatusNoPending,
			Message:  "SYSTEM: Aucune vérification en cours. Demandez d'abord l'identification du client.",
			Received: received,
		}
	}

	if p.now().Sub(pending.issuedAt) > p.config.CodeTTL {
		p.logger.Info(ctx, "verification code expired")
		return VerifyResult{
			Status:   StatusExpired,
			Message:  "SYSTEM: Code expiré. Relancez l'identification pour générer un nouveau code.",
			Received: received,
		}
	}

	if pending.attempts >= p.config.MaxAttempts {
		p.logger.Warn(ctx, "verification attempt limit reached")
		return VerifyResult{
			Status:   StatusTooManyAttempts,
			Message:  "SYSTEM: Trop de tentatives échouées. Relancez l'identification pour générer un nouveau code.",
			Received: received,
		}
	}

	if received != pending.code {
		pending.attempts++
		p.logger.Info(ctx, "verification code mismatch")
		return VerifyResult{
			Status:   StatusCodeMismatch,
			Message:  fmt.Sprintf("SYSTEM: Code incorrect. Attendu: %s, Reçu: %s.", pending.code, received),
			Expected: pending.code,
			Received: received,
		}
	}

	profile, ok := p.directory.Lookup(pending.userID)
	if !ok {
		p.logger.Error(ctx, "pending verification references unknown customer", nil)
		return VerifyResult{
			Status:   StatusNoPending,
			Message:  "SYSTEM: Client non trouvé.",
			Received: received,
		}
	}

	pending.consumed = true
	p.logger.Info(ctx, "verification succeeded")
	return VerifyResult{
		Status:   StatusSuccess,
		Profile:  profile,
		Message:  fmt.Sprintf("AUTH RÉUSSIE pour %s.\n%s", profile.Identity.Name, profile.Briefing()),
		Expected: pending.code,
		Received: received,
	}
}

// normalizeCode strips whitespace and period characters from a spoken code.
func normalizeCode(code string) string {
	cleaned := strings.TrimSpace(code)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	return cleaned
}

// generateCode returns a uniformly random 4-digit code in [1000, 9999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

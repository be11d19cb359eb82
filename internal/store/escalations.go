package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EscalationRecord is the audit row written for each supervised handover.
type EscalationRecord struct {
	ID             uuid.UUID `db:"id"`
	SessionID      string    `db:"session_id"`
	Reason         string    `db:"reason"`
	Classification string    `db:"classification"`
	Confidence     int       `db:"confidence"`
	Reasoning      string    `db:"reasoning"`
	RoutingDept    string    `db:"routing_dept"`
	Priority       string    `db:"priority"`
	CreatedAt      time.Time `db:"created_at"`
}

// InsertEscalation records a supervised handover verdict. Callers treat
// this as best-effort: a failed insert never reaches the caller-facing flow.
func (s Store) InsertEscalation(ctx context.Context, record EscalationRecord) (EscalationRecord, error) {
	record.ID = uuid.New()
	record.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO escalations (id, session_id, reason, classification,
		                         confidence, reasoning, routing_dept, priority, created_at)
		VALUES (:id, :session_id, :reason, :classification,
		        :confidence, :reasoning, :routing_dept, :priority, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		s.logger.Error(ctx, "failed to insert escalation", err)
		return EscalationRecord{}, fmt.Errorf("failed to insert escalation: %w", err)
	}
	return record, nil
}

package store

import (
	"context"
	"fmt"

	"insurance-voice-agent/internal/crm"
)

type customerProfileRow struct {
	Identifier     string `db:"identifier"`
	Name           string `db:"name"`
	Segment        string `db:"segment"`
	Patience       string `db:"patience"`
	TonePreference string `db:"tone_preference"`
	Claims         int    `db:"claims"`
	HistoryNotes   string `db:"history_notes"`
	AlertType      string `db:"alert_type"`
	AlertMessage   string `db:"alert_message"`
	Strategy       string `db:"strategy"`
}

// GetCustomerProfiles loads the full CRM directory. The directory is
// reference data: it is read once at startup and held in memory.
func (s Store) GetCustomerProfiles(ctx context.Context) ([]crm.CustomerProfile, error) {
	query := `
		SELECT identifier, name, segment, patience, tone_preference,
		       claims, history_notes, alert_type, alert_message, strategy
		FROM customer_profiles`

	var rows []customerProfileRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.Error(ctx, "failed to load customer profiles", err)
		return nil, fmt.Errorf("failed to load customer profiles: %w", err)
	}

	profiles := make([]crm.CustomerProfile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, crm.CustomerProfile{
			Identifier: r.Identifier,
			Identity:   crm.Identity{Name: r.Name, Segment: r.Segment},
			Psychology: crm.Psychology{Patience: r.Patience, TonePreference: r.TonePreference},
			History:    crm.History{Claims: r.Claims, Notes: r.HistoryNotes},
			Alert:      crm.Alert{Type: r.AlertType, Message: r.AlertMessage},
			Strategy:   r.Strategy,
		})
	}
	return profiles, nil
}

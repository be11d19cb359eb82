package store

import (
	"errors"
	"fmt"

	"insurance-voice-agent/internal/observability"

	_ "github.com/jackc/pgx/v5/stdlib" // Import the pgx stdlib for sqlx
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db     *sqlx.DB
	logger *observability.Logger
}

// New connects to the database and verifies the connection.
func New(connectionString string, logger *observability.Logger) (Store, error) {
	db, err := sqlx.Connect("pgx", connectionString)
	if err != nil {
		return Store{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	return Store{db: db, logger: logger}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

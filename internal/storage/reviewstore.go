package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ebetancourt/luna/pkg/models"
)

// ReviewStoreManager persists weekly review sessions in SQLite.
type ReviewStoreManager interface {
	SaveReview(session models.ReviewSession) error
	GetReview(id string) (*models.ReviewSession, error)
	ListReviews(userID string) ([]models.ReviewSession, error)
}

type sqliteReviewStore struct {
	db *sql.DB
}

// NewReviewStoreManager creates a ReviewStoreManager backed by the given
// database handle (see OpenDB).
func NewReviewStoreManager(db *sql.DB) ReviewStoreManager {
	return &sqliteReviewStore{db: db}
}

// SaveReview inserts or replaces a review session by ID.
func (s *sqliteReviewStore) SaveReview(session models.ReviewSession) error {
	if session.ID == "" {
		return fmt.Errorf("saving review: ID must not be empty")
	}

	steps := make([]string, len(session.CompletedSteps))
	for i, st := range session.CompletedSteps {
		steps[i] = string(st)
	}

	var completedAt any
	if session.CompletedAt != nil {
		completedAt = session.CompletedAt.UTC()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO weekly_reviews
			(id, user_id, type, focus_areas, week_start, started_at, completed_at, completed_steps, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		string(session.Type),
		strings.Join(session.FocusAreas, ","),
		session.WeekStart.UTC(),
		session.StartedAt.UTC(),
		completedAt,
		strings.Join(steps, ","),
		session.Notes,
	)
	if err != nil {
		return fmt.Errorf("saving review %s: %w", session.ID, err)
	}
	return nil
}

// GetReview returns one review session by ID.
func (s *sqliteReviewStore) GetReview(id string) (*models.ReviewSession, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, type, focus_areas, week_start, started_at, completed_at, completed_steps, notes
		FROM weekly_reviews WHERE id = ?`, id)

	session, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading review %s: %w", id, err)
	}
	return session, nil
}

// ListReviews returns all review sessions for a user, newest week first.
func (s *sqliteReviewStore) ListReviews(userID string) ([]models.ReviewSession, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, type, focus_areas, week_start, started_at, completed_at, completed_steps, notes
		FROM weekly_reviews WHERE user_id = ? ORDER BY week_start DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []models.ReviewSession
	for rows.Next() {
		session, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review rows: %w", err)
	}
	return sessions, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.ReviewSession, error) {
	var (
		session     models.ReviewSession
		typ         string
		focusAreas  string
		steps       string
		completedAt sql.NullTime
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&typ,
		&focusAreas,
		&session.WeekStart,
		&session.StartedAt,
		&completedAt,
		&steps,
		&session.Notes,
	)
	if err != nil {
		return nil, err
	}

	session.Type = models.ReviewSessionType(typ)
	if focusAreas != "" {
		session.FocusAreas = strings.Split(focusAreas, ",")
	}
	if steps != "" {
		for _, s := range strings.Split(steps, ",") {
			session.CompletedSteps = append(session.CompletedSteps, models.ReviewStep(s))
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	return &session, nil
}

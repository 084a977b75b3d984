package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Zarosk/mythril-core/internal/models"
)

// InsertFeedback persists a new feedback row. Feedback is append-only.
func (db *DB) InsertFeedback(f *models.Feedback) error {
	_, err := db.conn.Exec(`
		INSERT INTO feedback (id, message, user_id, username, guild_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, f.Message, f.UserID, f.Username, f.GuildName, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert feedback: %w", err)
	}
	return nil
}

// FeedbackWindow returns the number of feedback rows for userID created
// strictly after since, and the oldest created_at within that window
// (nil when the window is empty).
func (db *DB) FeedbackWindow(userID string, since time.Time) (int, *time.Time, error) {
	var (
		count  int
		oldest sql.NullTime
	)
	err := db.conn.QueryRow(`
		SELECT COUNT(*), MIN(created_at)
		FROM feedback
		WHERE user_id = ? AND created_at > ?
	`, userID, since).Scan(&count, &oldest)
	if err != nil {
		return 0, nil, fmt.Errorf("store: feedback window: %w", err)
	}
	if !oldest.Valid {
		return count, nil, nil
	}
	ts := oldest.Time
	return count, &ts, nil
}

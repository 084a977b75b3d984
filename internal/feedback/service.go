// Package feedback accepts user feedback submissions and computes the
// advisory sliding-window rate limit from stored row timestamps.
package feedback

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zarosk/mythril-core/internal/apperr"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/store"
)

const (
	// Limit is the number of submissions allowed per rolling window.
	Limit = 2
	// Window is the rolling admission window.
	Window = 86400 * time.Second

	maxMessageLen = 4000
)

// Status is the advisory admission decision for one submitter.
type Status struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetIn   *int64 `json:"reset_in,omitempty"` // seconds until the window frees up
}

// Service reads and appends the feedback collection. It holds no counter
// state: every decision derives from row timestamps.
type Service struct {
	db *store.DB
}

// NewService creates a feedback service.
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// CheckRateLimit counts rows for userID created strictly inside the rolling
// window. The result is advisory only: Submit does not re-check, so callers
// must consult this before writing.
func (s *Service) CheckRateLimit(userID string) (*Status, error) {
	now := time.Now().UTC()
	count, oldest, err := s.db.FeedbackWindow(userID, now.Add(-Window))
	if err != nil {
		return nil, err
	}

	if count < Limit {
		return &Status{Allowed: true, Remaining: Limit - count, Limit: Limit}, nil
	}

	resetIn := int64(0)
	if oldest != nil {
		resetAt := oldest.Add(Window)
		if secs := int64(math.Ceil(resetAt.Sub(now).Seconds())); secs > 0 {
			resetIn = secs
		}
	}
	return &Status{Allowed: false, Remaining: 0, Limit: Limit, ResetIn: &resetIn}, nil
}

// Submit validates and persists a feedback row. It performs no admission
// check of its own.
func (s *Service) Submit(message, userID, username, guildName string) (*models.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Domainf("message is required")
	}
	if len([]rune(message)) > maxMessageLen {
		return nil, apperr.Domainf("message exceeds %d characters", maxMessageLen)
	}
	if userID == "" {
		return nil, apperr.Domainf("user_id is required")
	}

	f := &models.Feedback{
		ID:        uuid.NewString(),
		Message:   message,
		UserID:    userID,
		Username:  username,
		GuildName: guildName,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.InsertFeedback(f); err != nil {
		return nil, err
	}
	return f, nil
}

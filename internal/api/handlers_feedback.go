package api

import (
	"encoding/json"
	"net/http"
)

// SubmitFeedback handles POST /feedback. The rate limiter is consulted
// before the write; a denied submitter answers 429 carrying the advisory
// status so clients can back off until reset_in elapses.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	status, err := h.feedback.CheckRateLimit(req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !status.Allowed {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": "rate limit exceeded",
			"rate":  status,
		})
		return
	}

	fb, err := h.feedback.Submit(req.Message, req.UserID, req.Username, req.GuildName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

// FeedbackLimit handles GET /feedback/limit.
func (h *Handler) FeedbackLimit(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'user_id' is required"))
		return
	}
	status, err := h.feedback.CheckRateLimit(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
	"github.com/pchen41/gauntlet-reel-app/internal/coach"
	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// CoachService is the subset of the coaching service the API depends on.
type CoachService interface {
	Chat(ctx context.Context, userID, message string) (string, error)
	StructuredChat(ctx context.Context, userID, message, imageURL string) (*coach.StructuredReply, error)
	SummarizeLesson(ctx context.Context, lessonID string) (string, error)
}

type chatHandler struct {
	svc    CoachService
	logger log.Logger
}

// chatRequest is the inbound chat payload. Structured selects the
// schema-constrained variant; Image is only used by that variant.
type chatRequest struct {
	Message    string `json:"message"`
	Image      string `json:"image,omitempty"`
	Structured bool   `json:"structured,omitempty"`
}

// chatResponse mirrors coach.ChatOutput at the HTTP boundary.
type chatResponse struct {
	Response      string                    `json:"response"`
	Lessons       []coach.RecommendedLesson `json:"lessons,omitempty"`
	Goals         []coach.ReferencedGoal    `json:"goals,omitempty"`
	ProposedGoals []coach.ProposedGoal      `json:"proposedGoals,omitempty"`
}

// send handles POST /api/v1/chat.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	h.handleChat(w, r, false)
}

// sendStructured handles POST /api/v1/chat/structured. The dedicated route
// behaves exactly like POST /api/v1/chat with the structured flag set.
func (h *chatHandler) sendStructured(w http.ResponseWriter, r *http.Request) {
	h.handleChat(w, r, true)
}

func (h *chatHandler) handleChat(w http.ResponseWriter, r *http.Request, structured bool) {
	uid, ok := userIDFromContext(r.Context())
	if !ok || uid == "" {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "user must be authenticated", h.logger)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", h.logger)
		return
	}

	if structured || req.Structured {
		reply, err := h.svc.StructuredChat(r.Context(), uid, req.Message, req.Image)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, chatResponse{
			Response:      reply.Message,
			Lessons:       reply.Lessons,
			Goals:         reply.Goals,
			ProposedGoals: reply.ProposedGoals,
		}, h.logger)
		return
	}

	reply, err := h.svc.Chat(r.Context(), uid, req.Message)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, chatResponse{Response: reply}, h.logger)
}

// summarize handles POST /api/v1/lessons/{id}/summary.
func (h *chatHandler) summarize(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")

	summary, err := h.svc.SummarizeLesson(r.Context(), lessonID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"response": summary}, h.logger)
}

// writeServiceError maps service errors to HTTP responses. Upstream causes
// are logged but never exposed to the caller.
func (h *chatHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coach.ErrEmptyMessage):
		WriteError(w, http.StatusBadRequest, "message_required", "message is required in request data", h.logger)
	case errors.Is(err, coach.ErrEmptyLessonID):
		WriteError(w, http.StatusBadRequest, "lesson_id_required", "lesson id is required", h.logger)
	case errors.Is(err, coach.ErrEmptyUserID):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "user must be authenticated", h.logger)
	case errors.Is(err, catalog.ErrLessonNotFound):
		WriteError(w, http.StatusNotFound, "lesson_not_found", "lesson not found", h.logger)
	default:
		h.logger.Error("chat request failed", "error", err)
		WriteError(w, http.StatusBadGateway, "upstream_error", "internal server error", h.logger)
	}
}

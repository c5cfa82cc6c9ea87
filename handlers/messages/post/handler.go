package post

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/respond"
)

func New(log *slog.Logger, store chat.Store) Handler {
	return Handler{
		log:   log,
		store: store,
	}
}

type Handler struct {
	log   *slog.Logger
	store chat.Store
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req models.MessagesPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to decode body"}, http.StatusBadRequest)
		return
	}
	switch req.Role {
	case models.ChatRoleUser, models.ChatRoleAssistant, models.ChatRoleError:
	default:
		respond.WithJSON(w, models.ErrorResponse{Error: "invalid role"}, http.StatusBadRequest)
		return
	}
	if req.Role == models.ChatRoleUser && strings.TrimSpace(req.Content) == "" {
		respond.WithJSON(w, models.ErrorResponse{Error: "content is required"}, http.StatusBadRequest)
		return
	}

	err = h.store.MessageAppend(r.Context(), id, req.Role, req.Content)
	if errors.Is(err, chat.ErrNotFound) {
		respond.WithJSON(w, models.ErrorResponse{Error: "conversation not found"}, http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to append message", slog.String("id", id), slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to append message"}, http.StatusInternalServerError)
		return
	}
	respond.WithJSON(w, models.MessagesPostResponse{}, http.StatusCreated)
}

package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/respond"
)

// DefaultTitle is used when neither a title nor a prompt is provided.
const DefaultTitle = "New conversation"

// Titler names a conversation from its first prompt.
type Titler interface {
	Title(ctx context.Context, prompt string) string
}

func New(log *slog.Logger, store chat.Store, titler Titler) Handler {
	return Handler{
		log:    log,
		store:  store,
		titler: titler,
	}
}

type Handler struct {
	log    *slog.Logger
	store  chat.Store
	titler Titler
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.ConversationsPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to decode body"}, http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		respond.WithJSON(w, models.ErrorResponse{Error: "model is required"}, http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" && strings.TrimSpace(req.Prompt) != "" {
		title = h.titler.Title(r.Context(), req.Prompt)
	}
	if title == "" {
		title = DefaultTitle
	}

	id, err := h.store.ConversationCreate(r.Context(), title, req.Model)
	if err != nil {
		h.log.Error("failed to create conversation", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to create conversation"}, http.StatusInternalServerError)
		return
	}
	h.log.Info("created conversation", slog.String("id", id), slog.String("model", req.Model))
	respond.WithJSON(w, models.ConversationsPostResponse{ID: id, Title: title}, http.StatusCreated)
}

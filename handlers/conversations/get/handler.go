package get

import (
	"log/slog"
	"net/http"

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
	conversations, err := h.store.ConversationList(r.Context())
	if err != nil {
		h.log.Error("failed to list conversations", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to list conversations"}, http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	respond.WithJSON(w, models.ConversationsGetResponse{Conversations: conversations}, http.StatusOK)
}

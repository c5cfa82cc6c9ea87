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
	id := r.PathValue("id")
	messages, err := h.store.MessageList(r.Context(), id)
	if err != nil {
		h.log.Error("failed to list messages", slog.String("id", id), slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to list messages"}, http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respond.WithJSON(w, models.MessagesGetResponse{Messages: messages}, http.StatusOK)
}

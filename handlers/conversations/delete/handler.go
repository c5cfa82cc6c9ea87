package delete

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
	if err := h.store.ConversationDelete(r.Context(), id); err != nil {
		h.log.Error("failed to delete conversation", slog.String("id", id), slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Error: "failed to delete conversation"}, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

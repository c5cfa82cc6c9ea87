package get

import (
	"net/http"

	"github.com/a-h/chatrelay/models"
	"github.com/a-h/respond"
)

func New(options []models.ModelOption) Handler {
	if options == nil {
		options = []models.ModelOption{}
	}
	return Handler{
		options: options,
	}
}

type Handler struct {
	options []models.ModelOption
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.WithJSON(w, models.ModelsGetResponse{Models: h.options}, http.StatusOK)
}

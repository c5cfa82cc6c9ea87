package post

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/chatrelay/auth"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/relay"
	"github.com/a-h/chatrelay/upstream"
	"github.com/a-h/respond"
)

func New(log *slog.Logger, r *relay.Relay) Handler {
	return Handler{
		log:   log,
		relay: r,
	}
}

type Handler struct {
	log   *slog.Logger
	relay *relay.Relay
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.ChatPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respondWithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	provider, err := models.ParseProvider(req.Provider)
	if err != nil {
		h.log.Warn("invalid provider", slog.Any("error", err))
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = req.Validate(); err != nil {
		h.log.Warn("invalid request", slog.Any("error", err))
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stream, err := h.relay.Open(r.Context(), provider, req)
	if err != nil {
		h.respondWithOpenError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	enc := json.NewEncoder(w)
	err = stream.Run(r.Context(), func(e models.NormalizedEvent) error {
		if err := enc.Encode(e); err != nil {
			return err
		}
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// The status has been sent, so the client sees a truncated stream.
		h.log.Warn("stream ended with error", slog.Any("error", err))
	}
}

func (h Handler) respondWithOpenError(w http.ResponseWriter, err error) {
	var se *upstream.StatusError
	switch {
	case errors.As(err, &se):
		h.log.Error("upstream returned an error", slog.Int("status", se.Status), slog.String("body", se.Body))
		status := http.StatusBadGateway
		if se.ModelUnavailable() {
			status = http.StatusServiceUnavailable
		}
		respond.WithJSON(w, models.ErrorResponse{
			Error:          "upstream request failed",
			UpstreamStatus: se.Status,
			UpstreamBody:   se.Body,
		}, status)
	case errors.Is(err, relay.ErrUnsupportedProvider):
		h.log.Warn("provider not configured", slog.Any("error", err))
		respondWithError(w, "provider not configured", http.StatusBadRequest)
	case errors.Is(err, auth.ErrAuth):
		h.log.Error("failed to get upstream credentials", slog.Any("error", err))
		respondWithError(w, "failed to get upstream credentials", http.StatusBadGateway)
	default:
		h.log.Error("failed to open upstream", slog.Any("error", err))
		respondWithError(w, "failed to open upstream", http.StatusInternalServerError)
	}
}

func respondWithError(w http.ResponseWriter, msg string, status int) {
	respond.WithJSON(w, models.ErrorResponse{Error: msg}, status)
}

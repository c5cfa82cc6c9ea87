// Package handlers routes the relay's HTTP API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/chatrelay/chat"
	chatpost "github.com/a-h/chatrelay/handlers/chat/post"
	conversationsdelete "github.com/a-h/chatrelay/handlers/conversations/delete"
	conversationsget "github.com/a-h/chatrelay/handlers/conversations/get"
	conversationspost "github.com/a-h/chatrelay/handlers/conversations/post"
	messagesget "github.com/a-h/chatrelay/handlers/messages/get"
	messagespost "github.com/a-h/chatrelay/handlers/messages/post"
	modelsget "github.com/a-h/chatrelay/handlers/models/get"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/relay"
	"github.com/rs/cors"
)

type Config struct {
	Relay  *relay.Relay
	Store  chat.Store
	Titler conversationspost.Titler
	Models []models.ModelOption
}

// New returns the API, open to browsers on any origin.
func New(log *slog.Logger, config Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /chat", chatpost.New(log, config.Relay))
	mux.Handle("GET /models", modelsget.New(config.Models))
	mux.Handle("GET /conversations", conversationsget.New(log, config.Store))
	mux.Handle("POST /conversations", conversationspost.New(log, config.Store, config.Titler))
	mux.Handle("DELETE /conversations/{id}", conversationsdelete.New(log, config.Store))
	mux.Handle("GET /conversations/{id}/messages", messagesget.New(log, config.Store))
	mux.Handle("POST /conversations/{id}/messages", messagespost.New(log, config.Store))
	return cors.AllowAll().Handler(mux)
}

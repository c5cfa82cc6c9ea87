package models

import (
	"errors"
	"time"
)

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           ChatRole  `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ConversationsPostRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
	// Prompt is used to generate a title when Title is empty.
	Prompt string `json:"prompt,omitempty"`
}

type ConversationsPostResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ConversationsGetResponse struct {
	Conversations []Conversation `json:"conversations"`
}

type MessagesPostRequest struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type MessagesGetResponse struct {
	Messages []Message `json:"messages"`
}

type MessagesPostResponse struct{}

var ErrConversationNotFound = errors.New("conversation not found")

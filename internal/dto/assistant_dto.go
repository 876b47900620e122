package dto

import (
	"encoding/json"
	"time"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	LastMode  string     `json:"last_mode,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID       `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Mode      string          `json:"mode,omitempty"`
	Chart     json.RawMessage `json:"chart,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type AskRequest struct {
	ChatSessionId   uuid.UUID `json:"chat_session_id" validate:"required"`
	Message         string    `json:"message" validate:"required"`
	Mode            string    `json:"mode,omitempty"`  // "" or "auto" means infer
	View            string    `json:"view,omitempty"`  // active UI view
	WebSearch       bool      `json:"web_search,omitempty"`
	ImageGeneration bool      `json:"image_generation,omitempty"`
	Stream          bool      `json:"stream,omitempty"`
	FileIds         []string  `json:"file_ids,omitempty" validate:"max=5"`
}

type AskResponse struct {
	ChatSessionId uuid.UUID                 `json:"chat_session_id"`
	SentId        uuid.UUID                 `json:"sent_id"`
	ReplyId       uuid.UUID                 `json:"reply_id"`
	Answer        *assistant.AnswerEnvelope `json:"answer"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type SendLetterRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	ToEmail       string    `json:"to_email" validate:"required,email"`
	Subject       string    `json:"subject,omitempty"`
}

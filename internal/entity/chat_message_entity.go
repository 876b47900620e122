package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	Mode          string
	Streamed      bool
	Rejected      bool
	// Chart holds the rendered visualization payload, if any,
	// exactly as it was sent to the client.
	Chart     json.RawMessage
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

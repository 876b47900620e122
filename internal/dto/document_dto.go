package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	MimeType string `json:"mime_type,omitempty"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllDocumentsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	MimeType  string     `json:"mime_type,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// PublishEmbedDocumentMessage is the payload of one embedding job on the bus
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

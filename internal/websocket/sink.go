package websocket

import (
	"github.com/google/uuid"
)

// SessionSink delivers one answer's tokens to every device of a user. It
// satisfies the pipeline's stream sink contract.
type SessionSink struct {
	hub       *Hub
	userID    uuid.UUID
	sessionID string
}

func NewSessionSink(hub *Hub, userID uuid.UUID, sessionID string) *SessionSink {
	return &SessionSink{
		hub:       hub,
		userID:    userID,
		sessionID: sessionID,
	}
}

func (s *SessionSink) Token(token string) error {
	s.hub.SendToken(s.userID, s.sessionID, token)
	return nil
}

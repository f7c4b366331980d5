package messages

import "encoding/json"

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeSessionFailed  = "SESSION_FAILED"
)

// Message types
const (
	TypeText   = "text"
	TypeStatus = "status"
	TypeError  = "error"
)

// ClientMessage represents a message from the dev chat client
type ClientMessage struct {
	Type    string          `json:"type"` // "text", "control"
	Payload json.RawMessage `json:"payload"`
}

// TextPayload contains the customer's chat line
type TextPayload struct {
	Text string `json:"text"`
}

// ServerMessage represents a message sent to the dev chat client
type ServerMessage struct {
	Type      string      `json:"type"` // "text", "status", "error"
	SessionID string      `json:"sessionId,omitempty"`
	Payload   interface{} `json:"payload"`
}

// StatusPayload contains status updates
type StatusPayload struct {
	Status  string `json:"status"` // "connected", "disconnected"
	Message string `json:"message,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewTextMessage creates a text reply message
func NewTextMessage(sessionID, text string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeText,
		SessionID: sessionID,
		Payload: TextPayload{
			Text: text,
		},
	}
}

// NewStatusMessage creates a status message
func NewStatusMessage(sessionID, status, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeStatus,
		SessionID: sessionID,
		Payload: StatusPayload{
			Status:  status,
			Message: message,
		},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(sessionID, code, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		SessionID: sessionID,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

package agent

import "github.com/richxcame/commuter-agent/internal/commuter"

// Name is the agent name carried on every envelope.
const Name = "commuter-agent"

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope error messages.
const (
	MsgNoMessages     = "No messages provided"
	MsgNoUserMessage  = "No user message found in messages"
	MsgInvalidFormat  = "Invalid message format: "
	MsgTimedOut       = "Request processing timed out"
	MsgInternalPrefix = "Internal error: "
)

const roleUser = "user"

// Message is one chat turn sent by the orchestrator.
type Message struct {
	Role    string `json:"role" validate:"required,chat_role"`
	Content string `json:"content"`
}

// IsUser reports whether the message was written by the end user.
func (m Message) IsUser() bool {
	return m.Role == roleUser
}

// AgentRequest is the body of POST /commuter-agent.
type AgentRequest struct {
	Messages []Message `json:"messages" validate:"required,dive"`
}

// ResponseData wraps the payload under "message".
type ResponseData struct {
	Message commuter.Payload `json:"message"`
}

// AgentResponse is the envelope returned for every agent request. Data is set
// only on success and ErrorMessage only on error.
type AgentResponse struct {
	AgentName    string        `json:"agent_name"`
	Status       string        `json:"status"`
	Data         *ResponseData `json:"data"`
	ErrorMessage *string       `json:"error_message"`
}

// Success wraps a payload in a success envelope.
func Success(payload commuter.Payload) *AgentResponse {
	return &AgentResponse{
		AgentName: Name,
		Status:    StatusSuccess,
		Data:      &ResponseData{Message: payload},
	}
}

// Failure builds an error envelope.
func Failure(message string) *AgentResponse {
	return &AgentResponse{
		AgentName:    Name,
		Status:       StatusError,
		ErrorMessage: &message,
	}
}

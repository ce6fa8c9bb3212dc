package model

// ChatRequest is an incoming chat message from a user.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the agent's reply to a chat message.
type ChatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

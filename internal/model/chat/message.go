package chat

import "time"

// Role identifies who produced a message turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn in a conversation. Correction and Explanation are
// contractually paired: both set when the model flagged a grammar fix,
// both nil otherwise.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Correction  *string   `json:"correction,omitempty"`
	Explanation *string   `json:"explanation,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

package chat

import "time"

// Session is a persisted conversation transcript plus its originating
// role/avatar. A session with zero messages is never written to storage.
type Session struct {
	ID           string    `json:"id"`
	Messages     []Message `json:"messages"`
	SelectedRole string    `json:"selectedRole"`
	AvatarID     string    `json:"avatarId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

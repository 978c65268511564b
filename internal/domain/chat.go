package domain

// ChatRole tags a conversation turn.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatTurn is one prior message of a conversation.
type ChatTurn struct {
	Role  ChatRole `json:"role"`
	Parts string   `json:"parts"`
}

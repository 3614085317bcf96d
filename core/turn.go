// Package core holds the shared value types exchanged between the
// interception framework and the memory gateway.
package core

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged text exchange recorded for later recall.
// Interceptors produce one user and one assistant Turn per logical
// exchange; a Turn is never mutated after it is built.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

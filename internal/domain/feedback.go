package domain

import "time"

const (
	FeedbackPending = "pending"
	FeedbackReplied = "replied"
)

// Feedback es una valoracion de usuario; un admin responde una sola vez.
type Feedback struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	Rating     int        `json:"rating"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	AdminReply string     `json:"admin_reply,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
}

type FAQ struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

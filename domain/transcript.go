package domain

import "time"

// Turn is a single entry in the conversation transcript. IDs are
// assigned monotonically per session. Turns normally alternate
// user/assistant, but consecutive assistant turns appear on error
// paths and are tolerated.
type Turn struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

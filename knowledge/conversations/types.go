package conversations

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

// reserved for future prompt strategies; retrieval ignores it
type Template string

const (
	TemplateShort Template = "short"
	TemplateMid   Template = "mid"
	TemplateLong  Template = "long"
)

const DefaultTitle = "New conversation"

// returns the template for raw, falling back to short
func ParseTemplate(raw string) Template {
	switch t := Template(raw); t {
	case TemplateShort, TemplateMid, TemplateLong:
		return t
	}

	return TemplateShort
}

type Conversation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Template  Template  `json:"template_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// append-only conversation turn
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           string         `json:"role"`
	Content        string         `json:"content"`
	Meta           map[string]any `json:"meta,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

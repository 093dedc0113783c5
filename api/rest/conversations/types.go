package conversations

import (
	"context"
	"encoding/json"

	"codeberg.org/kbase/server/internal/agent"
	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/gin-gonic/gin"
)

type ProjectReader interface {
	Get(ctx context.Context, projectID, ownerID string) (*projects.Project, error)
}

type ConversationStore interface {
	Create(ctx context.Context, projectID, ownerID, title string, template conversations.Template) (*conversations.Conversation, error)
	List(ctx context.Context, projectID, ownerID string) ([]conversations.Conversation, error)
	Get(ctx context.Context, conversationID, ownerID string) (*conversations.Conversation, error)
	ListMessages(ctx context.Context, conversationID, ownerID string) ([]conversations.Message, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, req agent.SendRequest) (*agent.SendResponse, error)
}

type Deps struct {
	Projects      ProjectReader
	Conversations ConversationStore
	Sender        MessageSender

	// applied to message sends only; may be nil
	SendLimiter gin.HandlerFunc
}

type CreateConversationRequest struct {
	Title    string `json:"title"`
	Template string `json:"template_type"`
}

// use_reranker accepts booleans and truthy strings
type SendMessageRequest struct {
	Message     string          `json:"message"`
	UseReranker json.RawMessage `json:"use_reranker"`
}

type ListConversationsResponse struct {
	Conversations []conversations.Conversation `json:"conversations"`
}

type ListMessagesResponse struct {
	ConversationID string                  `json:"conversation_id"`
	Messages       []conversations.Message `json:"messages"`
}

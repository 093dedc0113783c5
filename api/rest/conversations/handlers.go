package conversations

import (
	stderrors "errors"
	"net/http"
	"strings"

	"codeberg.org/kbase/server/internal/agent"
	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/errors"
	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/gin-gonic/gin"
)

// ListConversationsHandler godoc
// @Summary List conversations of a project
// @Tags conversations
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} ListConversationsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/projects/{project_id}/conversations [get]
// @Security BearerAuth
func ListConversationsHandler(projectRepo ProjectReader, convRepo ConversationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, projectID, ok := ownedProject(c, projectRepo)
		if !ok {
			return
		}

		list, err := convRepo.List(c.Request.Context(), projectID, userID)
		if err != nil {
			errors.InternalError(c, "failed to list conversations", err)
			return
		}

		c.JSON(http.StatusOK, ListConversationsResponse{Conversations: list})
	}
}

// CreateConversationHandler godoc
// @Summary Start a conversation in a project
// @Tags conversations
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param request body CreateConversationRequest false "Conversation"
// @Success 201 {object} conversations.Conversation
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/projects/{project_id}/conversations [post]
// @Security BearerAuth
func CreateConversationHandler(projectRepo ProjectReader, convRepo ConversationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, projectID, ok := ownedProject(c, projectRepo)
		if !ok {
			return
		}

		var req CreateConversationRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.ValidationError(c, err)
				return
			}
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			title = conversations.DefaultTitle
		}

		conv, err := convRepo.Create(c.Request.Context(), projectID, userID, title, conversations.ParseTemplate(req.Template))
		if err != nil {
			errors.InternalError(c, "failed to create conversation", err)
			return
		}

		c.JSON(http.StatusCreated, conv)
	}
}

// ListMessagesHandler godoc
// @Summary List messages of a conversation in creation order
// @Tags conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} ListMessagesResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/conversations/{conversation_id}/messages [get]
// @Security BearerAuth
func ListMessagesHandler(convRepo ConversationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		conversationID, ok := errors.ValidatePathUUID(c, "conversation_id", "conversation")
		if !ok {
			return
		}

		if _, err := convRepo.Get(c.Request.Context(), conversationID, userID); err != nil {
			respondConversationError(c, err)
			return
		}

		msgs, err := convRepo.ListMessages(c.Request.Context(), conversationID, userID)
		if err != nil {
			errors.InternalError(c, "failed to list messages", err)
			return
		}

		c.JSON(http.StatusOK, ListMessagesResponse{ConversationID: conversationID, Messages: msgs})
	}
}

// SendMessageHandler godoc
// @Summary Ask a question in a conversation
// @Description Retrieves evidence from the project's knowledge base, optionally reranks it and answers from it
// @Tags conversations
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body SendMessageRequest true "Message"
// @Success 200 {object} agent.SendResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/conversations/{conversation_id}/messages [post]
// @Security BearerAuth
func SendMessageHandler(sender MessageSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		conversationID, ok := errors.ValidatePathUUID(c, "conversation_id", "conversation")
		if !ok {
			return
		}

		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		resp, err := sender.SendMessage(c.Request.Context(), agent.SendRequest{
			ConversationID: conversationID,
			OwnerID:        userID,
			Message:        req.Message,
			UseReranker:    parseBool(req.UseReranker),
		})

		switch {
		case err == nil:
			c.JSON(http.StatusOK, resp)
		case stderrors.Is(err, agent.ErrEmptyMessage):
			errors.BadRequestCode(c, errors.CodeEmptyMessage, "message must not be empty")
		default:
			respondConversationError(c, err)
		}
	}
}

func ownedProject(c *gin.Context, projectRepo ProjectReader) (string, string, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return "", "", false
	}

	projectID, ok := errors.ValidatePathUUID(c, "project_id", "project")
	if !ok {
		return "", "", false
	}

	if _, err := projectRepo.Get(c.Request.Context(), projectID, userID); err != nil {
		if stderrors.Is(err, projects.ErrProjectNotFound) {
			errors.NotFound(c, "project")
		} else {
			errors.InternalError(c, "failed to load project", err)
		}

		return "", "", false
	}

	return userID, projectID, true
}

func respondConversationError(c *gin.Context, err error) {
	if stderrors.Is(err, conversations.ErrConversationNotFound) {
		errors.NotFound(c, "conversation")
		return
	}

	errors.InternalError(c, "failed to process conversation", err)
}

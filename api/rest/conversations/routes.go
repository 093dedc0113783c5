package conversations

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, deps Deps) {
	projects := rg.Group("/projects/:project_id/conversations")
	{
		projects.GET("", ListConversationsHandler(deps.Projects, deps.Conversations))
		projects.POST("", CreateConversationHandler(deps.Projects, deps.Conversations))
	}

	send := []gin.HandlerFunc{}
	if deps.SendLimiter != nil {
		send = append(send, deps.SendLimiter)
	}

	send = append(send, SendMessageHandler(deps.Sender))

	messages := rg.Group("/conversations/:conversation_id/messages")
	{
		messages.GET("", ListMessagesHandler(deps.Conversations))
		messages.POST("", send...)
	}
}

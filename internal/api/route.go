package api

import (
	"net/http"

	"Clanhub/internal/api/middleware"
	"Clanhub/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		// 会话 socket 在查询串里带 token 自行鉴权
		apiGroup.GET("/ws", group.WsHandler.Connect)

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())
		{
			authGroup.GET("/sections", group.SectionHandler.ListSections)
			authGroup.GET("/directory", group.SectionHandler.SearchDirectory)

			sectionGroup := authGroup.Group("/sections/:section")
			{
				sectionGroup.GET("/threads", group.ThreadHandler.ListThreads)
				sectionGroup.POST("/threads", group.ThreadHandler.CreateThread)
				sectionGroup.GET("/threads/:id/comments", group.ThreadHandler.ListComments)
				sectionGroup.POST("/threads/:id/comments", group.ThreadHandler.CreateComment)
				sectionGroup.POST("/threads/:id/view", group.ThreadHandler.RegisterView)
				sectionGroup.PUT("/threads/:id/approve", group.ThreadHandler.ApproveThread)
				sectionGroup.PUT("/threads/:id/reject", group.ThreadHandler.RejectThread)

				sectionGroup.GET("/messages", group.ChatHandler.ListMessages)
				sectionGroup.POST("/messages", group.ChatHandler.SendMessage)
			}

			notificationGroup := authGroup.Group("/notifications")
			{
				notificationGroup.GET("", group.NotificationHandler.List)
				notificationGroup.GET("/unread", group.NotificationHandler.UnreadCount)
				notificationGroup.POST("/read", group.NotificationHandler.MarkRead)
				notificationGroup.POST("/read/all", group.NotificationHandler.MarkAllRead)
			}
		}
	}

	return r
}

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/medreminder/internal/api/handlers/dlq"
	"github.com/aliskhannn/medreminder/internal/api/handlers/reminder"
	"github.com/aliskhannn/medreminder/internal/middlewares"
)

func New(reminderHandler *reminder.Handler, dlqHandler *dlq.Handler) *gin.Engine {
	e := gin.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(gin.Logger())
	e.Use(gin.Recovery())

	reminders := e.Group("/api/reminders")
	{
		reminders.POST("", reminderHandler.Create)
		reminders.GET("/:id", reminderHandler.Get)
		reminders.GET("/:id/status", reminderHandler.GetStatus)
		reminders.GET("/:id/dispatches", reminderHandler.ListDispatches)
		reminders.PUT("/:id/schedule", reminderHandler.Reschedule)
		reminders.POST("/:id/acknowledge", reminderHandler.Acknowledge)
		reminders.DELETE("/:id", reminderHandler.Cancel)
	}

	dead := e.Group("/api/dlq")
	{
		dead.GET("", dlqHandler.List)
		dead.GET("/stats", dlqHandler.Stats)
		dead.POST("/redrive", dlqHandler.Redrive)
	}

	return e
}

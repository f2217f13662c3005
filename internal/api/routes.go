package api

import (
	"github.com/gin-gonic/gin"

	"leadsboard/server/internal/models"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	api.Use(handler.CurrentUser())
	{
		api.POST("/login", handler.Login)
		api.POST("/logout", handler.Logout)
		api.GET("/menu", handler.Menu)

		api.GET("/summary", handler.RequireView(models.ViewOverview), handler.Summary)
		api.GET("/marketing", handler.RequireView(models.ViewMarketing), handler.Marketing)
		api.GET("/property-breakdown", handler.RequireView(models.ViewPropertyBreakdown), handler.PropertyBreakdown)
		api.GET("/geographic", handler.RequireView(models.ViewGeographic), handler.Geographic)
		api.GET("/features", handler.RequireView(models.ViewLeadsFeatures), handler.Features)

		api.GET("/leads/:id", handler.RequireView(models.ViewUpdateLeads), handler.GetLead)
		api.POST("/leads", handler.RequireView(models.ViewUpdateLeads), handler.UpdateLead)
		api.DELETE("/leads/:id", handler.RequireView(models.ViewUpdateLeads), handler.DropLead)
		api.POST("/leads/import", handler.RequireView(models.ViewUpdateLeads), handler.ImportLeads)
	}
}

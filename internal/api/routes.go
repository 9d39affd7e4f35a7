package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the /api/v1 routes. When operatorAuth is non-nil it
// guards every route that changes settings or clears results.
func SetupRoutes(router gin.IRouter, handler *Handler, operatorAuth gin.HandlerFunc, metrics http.Handler) {
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/triage", handler.Triage)
		v1.POST("/triage/batch", handler.TriageBatch)

		v1.GET("/results", handler.ListResults)
		v1.GET("/settings", handler.GetSettings)
		v1.GET("/categories", handler.ListCategories)
		v1.GET("/neighborhoods", handler.ListNeighborhoods)

		operator := v1.Group("")
		if operatorAuth != nil {
			operator.Use(operatorAuth)
		}
		operator.DELETE("/results", handler.ClearResults)
		operator.PUT("/settings", handler.ReplaceSettings)
		operator.PUT("/settings/include-threats", handler.SetIncludeThreats)
		operator.PUT("/settings/categories/:name/keywords", handler.SetCategoryKeywords)
		operator.PUT("/settings/neighborhoods/:name", handler.SetNeighborhoodWeight)
	}
}

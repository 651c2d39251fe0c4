package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts every endpoint on router
func RegisterRoutes(router gin.IRouter, connections *ConnectionController, annotations *AnnotationController, health *HealthController) {
	router.GET("/", health.Index)
	router.GET("/health", health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/connect/:engine", connections.Connect)
	router.DELETE("/connection", connections.ResetAll)

	schema := router.Group("/schema/:id")
	{
		schema.GET("", connections.GetSchema)
		schema.PUT("/global/context", annotations.SetGlobalContext)
		schema.PUT("/table/:table/context", annotations.SetTableContext)
		schema.PUT("/column/:table/:column/description", annotations.SetColumnDescription)
	}
}

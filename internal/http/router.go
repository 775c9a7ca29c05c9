package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware, adminMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api/v1")
	{
		public.POST("/reports", handler.createReport)
		public.GET("/reports", handler.listReports)
		public.GET("/reports/nearby", handler.nearbyReports)
		public.GET("/reports/:id", handler.getReport)
		public.POST("/reports/:id/disputes", handler.submitDispute)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/reports", handler.listReportsAdmin)
		admin.PUT("/reports/:id", handler.updateReport)
		admin.PUT("/reports/:id/review", handler.reviewReport)
		admin.PUT("/reports/:id/handling", handler.setHandlingStatus)
		admin.DELETE("/reports/:id", handler.deleteReport)
		admin.GET("/reports/:id/disputes", handler.listDisputesForReport)

		admin.GET("/disputes", handler.listDisputes)
		admin.GET("/disputes/grouped", handler.groupedDisputes)
		admin.DELETE("/disputes/:id", handler.deleteDispute)
	}

	return router
}

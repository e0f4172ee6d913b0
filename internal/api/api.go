// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/api/handlers"
	"github.com/andresuchdata/purchasing/backend-go/internal/api/middleware"
	"github.com/andresuchdata/purchasing/backend-go/internal/notify"
	"github.com/andresuchdata/purchasing/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	OrderService        *service.OrderService
	NotificationService *service.NotificationService
	ItemStatsService    *service.ItemStatsService
	Hub                 *notify.Hub
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderUserGroups},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.Actor())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.OrderService != nil {
			orderHandler := handlers.NewOrderHandler(services.OrderService)

			apiGroup.GET("/order-default", orderHandler.GetOrderDefaults)
			apiGroup.GET("/order-default-detail", orderHandler.GetOrderDefaultDetail)

			orderGroup := apiGroup.Group("/orders")
			{
				orderGroup.GET("", orderHandler.ListOrders)
				orderGroup.POST("", orderHandler.CreateOrder)
				orderGroup.POST("/reconcile", orderHandler.Reconcile)
				orderGroup.POST("/validate-edit", orderHandler.ValidateEdit)
				orderGroup.POST("/update-status", orderHandler.UpdateStatus)
				orderGroup.GET("/:id", orderHandler.GetOrder)
				orderGroup.PUT("/:id", orderHandler.UpdateOrder)
				orderGroup.DELETE("/:id", orderHandler.DeleteOrder)
				orderGroup.GET("/:id/logs", orderHandler.ListLogs)
				orderGroup.GET("/:id/export-excel", orderHandler.ExportExcel)
			}
		}

		if services.ItemStatsService != nil {
			itemHandler := handlers.NewItemHandler(services.ItemStatsService)
			apiGroup.GET("/items/:code/stats", itemHandler.GetItemStats)
		}

		notificationHandler := handlers.NewNotificationHandler(services.Hub, services.NotificationService)
		if services.Hub != nil {
			apiGroup.GET("/ws/notifications", notificationHandler.Subscribe)
		}
		if services.NotificationService != nil {
			apiGroup.GET("/notifications", notificationHandler.List)
			apiGroup.POST("/notifications/:id/read", notificationHandler.MarkRead)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}

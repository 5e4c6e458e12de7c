package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/pkg/logger"
	"pinemarket/pkg/metrics"
)

// SetupRoutes настраивает маршруты админ-панели: два симметричных экрана
// (товары и категории) и загрузка изображений только для товаров
func SetupRoutes(
	products *ResourceHandler[entity.Product, entity.ProductDraft],
	categories *ResourceHandler[entity.Category, entity.CategoryDraft],
	uploads *UploadHandler[entity.Product, entity.ProductDraft],
	allowedOrigins []string,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinMiddleware("admin-service"))

	// CORS: админ-панель живет на другом origin, чем API
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "admin-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := router.Group("/admin")
	{
		registerResource(admin.Group("/products"), products)
		registerResource(admin.Group("/categories"), categories)

		// Загрузка изображения привязана к открытой форме товара
		admin.POST("/products/session/image", uploads.Upload)
	}

	return router
}

// registerResource вешает одинаковый набор маршрутов на оба экрана
func registerResource[T entity.Record[T], D any](g *gin.RouterGroup, h *ResourceHandler[T, D]) {
	g.GET("/view", h.GetView)
	g.POST("/view", h.UpdateView)
	g.POST("/refresh", h.Refresh)
	g.DELETE("/:id", h.Remove)

	g.POST("/session", h.OpenSession)
	g.GET("/session", h.GetSession)
	g.PUT("/session/draft", h.UpdateDraft)
	g.POST("/session/submit", h.Submit)
	g.DELETE("/session", h.CancelSession)
}

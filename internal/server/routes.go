package server

import (
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/handlers"
)

type routeHandlers struct {
	auth          *handlers.AuthHandler
	expenses      *handlers.ExpenseHandler
	budget        *handlers.BudgetHandler
	assistant     *handlers.AssistantHandler
	stats         *handlers.StatsHandler
	exports       *handlers.ExportHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
	readiness     echo.HandlerFunc
}

type routeMiddleware struct {
	auth               echo.MiddlewareFunc
	admin              echo.MiddlewareFunc
	authRateLimit      echo.MiddlewareFunc
	assistantRateLimit echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", handlers.Health)
	e.GET("/api/health", h.readiness)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", mw.authRateLimit)

	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me, mw.auth)

	expenses := api.Group("/expenses", mw.auth)
	expenses.GET("", h.expenses.List)
	expenses.POST("", h.expenses.Create)
	expenses.GET("/export/json", h.exports.ExportJSON)
	expenses.GET("/export/csv", h.exports.ExportCSV)
	expenses.GET("/:id", h.expenses.Get)
	expenses.PUT("/:id", h.expenses.Update)
	expenses.DELETE("/:id", h.expenses.Delete)

	budget := api.Group("/budget", mw.auth)
	budget.GET("", h.budget.Get)
	budget.POST("", h.budget.Create)
	budget.PUT("", h.budget.Replace)
	budget.DELETE("", h.budget.Delete)
	budget.PUT("/category", h.budget.UpdateCategory)
	budget.DELETE("/category/:category", h.budget.DeleteCategory)

	stats := api.Group("/stats", mw.auth)
	stats.GET("/overview", h.stats.Overview)
	stats.GET("/monthly", h.stats.Monthly)
	stats.GET("/categories", h.stats.ByCategory)

	notifications := api.Group("/notifications", mw.auth)
	notifications.GET("/stream", h.notifications.Stream)

	admin := api.Group("/admin", mw.auth, mw.admin)
	admin.GET("/users", h.admin.ListUsers)
	admin.GET("/ai-requests", h.admin.ListAIRequests)
	admin.GET("/usage", h.admin.Usage)

	assistant := api.Group("/ai", mw.auth, mw.assistantRateLimit)
	assistant.POST("/categorize", h.assistant.Categorize)
	assistant.POST("/insights", h.assistant.Insights)
	assistant.POST("/chat", h.assistant.Chat)
	assistant.POST("/voice", h.assistant.Voice)
	assistant.POST("/search", h.assistant.Search)
	assistant.POST("/predict", h.assistant.Predict)
}

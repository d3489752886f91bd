package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/handlers"
)

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	registerRoutes(e,
		routeHandlers{
			auth:          &handlers.AuthHandler{},
			expenses:      &handlers.ExpenseHandler{},
			budget:        &handlers.BudgetHandler{},
			assistant:     &handlers.AssistantHandler{},
			stats:         &handlers.StatsHandler{},
			exports:       &handlers.ExportHandler{},
			notifications: &handlers.NotificationHandler{},
			admin:         &handlers.AdminHandler{},
			readiness:     handlers.Health,
		},
		routeMiddleware{
			auth:               passThrough,
			admin:              passThrough,
			authRateLimit:      passThrough,
			assistantRateLimit: passThrough,
		},
	)

	registered := make(map[string]bool)
	for _, route := range e.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		http.MethodGet + " /health",
		http.MethodGet + " /api/health",
		http.MethodPost + " /api/v1/auth/register",
		http.MethodGet + " /api/v1/auth/me",
		http.MethodPost + " /api/v1/expenses",
		http.MethodPut + " /api/v1/expenses/:id",
		http.MethodGet + " /api/v1/expenses/export/csv",
		http.MethodPut + " /api/v1/budget/category",
		http.MethodDelete + " /api/v1/budget/category/:category",
		http.MethodGet + " /api/v1/stats/overview",
		http.MethodGet + " /api/v1/notifications/stream",
		http.MethodGet + " /api/v1/admin/usage",
		http.MethodPost + " /api/v1/ai/categorize",
		http.MethodPost + " /api/v1/ai/predict",
	}

	for _, route := range expected {
		if !registered[route] {
			t.Fatalf("route %s is not registered", route)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, rateLimiter(60, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %v", codes)
	}
}

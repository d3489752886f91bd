package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, manager *TokenManager, prepare func(*http.Request)) (uuid.UUID, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	prepare(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	handler := JWTMiddleware(manager)(func(c echo.Context) error {
		seen, _ = UserIDFromContext(c)
		return c.NoContent(http.StatusNoContent)
	})

	err := handler(c)
	return seen, err
}

// TestJWTMiddlewareSources проверяет прием токена из заголовка и из cookie.
func TestJWTMiddlewareSources(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()
	pair, err := manager.NewTokenPair(Identity{UserID: userID, Email: "a@b.c"}, uuid.New())
	require.NoError(t, err)

	seen, err := runMiddleware(t, manager, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	})
	require.NoError(t, err)
	assert.Equal(t, userID, seen)

	seen, err = runMiddleware(t, manager, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: pair.AccessToken})
	})
	require.NoError(t, err)
	assert.Equal(t, userID, seen)
}

// TestJWTMiddlewareRejects проверяет ответы 401.
func TestJWTMiddlewareRejects(t *testing.T) {
	manager := newTestManager()

	cases := map[string]func(*http.Request){
		"missing": func(*http.Request) {},
		"scheme": func(req *http.Request) {
			req.Header.Set("Authorization", "Basic abc")
		},
		"garbage": func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not-a-token")
		},
	}

	for name, prepare := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runMiddleware(t, manager, prepare)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		})
	}
}

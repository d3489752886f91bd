package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

type AuthHandler struct {
	Users        UserStore
	Tokens       RefreshTokenStore
	TokenManager *auth.TokenManager
	CookieSecure bool
	now          func() time.Time
}

// NewAuthHandler создает обработчик авторизации.
func NewAuthHandler(users UserStore, tokens RefreshTokenStore, manager *auth.TokenManager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		Users:        users,
		Tokens:       tokens,
		TokenManager: manager,
		CookieSecure: cookieSecure,
		now:          time.Now,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

type UserResponse struct {
	User AuthUser `json:"user"`
}

// Register регистрирует пользователя и выдает токены.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return badRequest(c, "validation failed")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return serverError(c)
	}

	user, err := h.Users.Create(c.Request().Context(), req.Email, passwordHash, firstName, lastName)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		return serverError(c)
	}

	response, pair, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	auth.SetTokenCookie(c, pair.AccessToken, pair.AccessExpiresAt, h.CookieSecure)
	return c.JSON(http.StatusCreated, response)
}

// Login выполняет вход, выдает токены и ставит cookie с access-токеном.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if err = auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return unauthorized(c)
	}

	response, pair, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	auth.SetTokenCookie(c, pair.AccessToken, pair.AccessExpiresAt, h.CookieSecure)
	return c.JSON(http.StatusOK, response)
}

// Refresh обменивает refresh-токен на новую пару.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	storedToken, err := h.lookupRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, errInvalidRefresh) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	user, err := h.Users.GetByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	newRefreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(auth.Identity{UserID: user.ID, Email: user.Email}, newRefreshID)
	if err != nil {
		return serverError(c)
	}

	newToken := models.RefreshToken{
		ID:        newRefreshID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}

	if err := h.Tokens.Rotate(ctx, storedToken.ID, newToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	auth.SetTokenCookie(c, pair.AccessToken, pair.AccessExpiresAt, h.CookieSecure)
	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toAuthUser(user),
	})
}

// Logout отзывает refresh-токен, если он передан, и очищает cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	auth.ClearTokenCookie(c, h.CookieSecure)

	if strings.TrimSpace(req.RefreshToken) == "" {
		return c.NoContent(http.StatusNoContent)
	}

	claims, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.Tokens.Revoke(c.Request().Context(), refreshID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me возвращает данные текущего пользователя.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

var errInvalidRefresh = errors.New("invalid refresh token")

func (h *AuthHandler) lookupRefreshToken(ctx context.Context, raw string) (models.RefreshToken, error) {
	claims, err := h.TokenManager.ParseRefreshToken(raw)
	if err != nil {
		return models.RefreshToken{}, errInvalidRefresh
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return models.RefreshToken{}, errInvalidRefresh
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.RefreshToken{}, errInvalidRefresh
	}

	stored, err := h.Tokens.GetByID(ctx, refreshID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return stored, errInvalidRefresh
		}
		return stored, err
	}

	switch {
	case stored.RevokedAt != nil,
		h.now().After(stored.ExpiresAt),
		stored.UserID != userID,
		!auth.CompareTokenHash(stored.TokenHash, raw):
		return stored, errInvalidRefresh
	}

	return stored, nil
}

func (h *AuthHandler) issueTokens(ctx context.Context, user models.User) (AuthResponse, auth.TokenPair, error) {
	refreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(auth.Identity{UserID: user.ID, Email: user.Email}, refreshID)
	if err != nil {
		return AuthResponse{}, pair, err
	}

	refreshToken := models.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}

	if err := h.Tokens.Create(ctx, refreshToken); err != nil {
		return AuthResponse{}, pair, err
	}

	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toAuthUser(user),
	}, pair, nil
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

const (
	adminPageSize    = 50
	adminMaxPageSize = 200
	usageDefaultDays = 7
	usageMaxDays     = 30
)

type AdminHandler struct {
	Repo AdminStore
}

// NewAdminHandler создает обработчик админских эндпоинтов.
func NewAdminHandler(repo AdminStore) *AdminHandler {
	return &AdminHandler{Repo: repo}
}

type AdminUserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	ExpenseCount int       `json:"expense_count"`
	CreatedAt    string    `json:"created_at"`
}

type AdminUsersResponse struct {
	Total int                 `json:"total"`
	Users []AdminUserResponse `json:"users"`
}

type AdminAIRequestsResponse struct {
	Total    int                `json:"total"`
	Requests []models.AIRequest `json:"requests"`
}

type AdminUsageType struct {
	RequestType string `json:"request_type"`
	Count       int    `json:"count"`
	Failed      int    `json:"failed"`
}

type AdminUsageDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AdminUsageResponse struct {
	Users            int              `json:"users"`
	Expenses         int              `json:"expenses"`
	Budgets          int              `json:"budgets"`
	AIRequests       int              `json:"ai_requests"`
	AISuccess        int              `json:"ai_success"`
	AIFail           int              `json:"ai_fail"`
	AIRequestsByType []AdminUsageType `json:"ai_requests_by_type"`
	AIRequestsByDay  []AdminUsageDay  `json:"ai_requests_by_day"`
}

// ListUsers возвращает пользователей с числом их расходов.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	users, err := h.Repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return serverError(c)
	}

	total, err := h.Repo.CountUsers(ctx)
	if err != nil {
		return serverError(c)
	}

	response := AdminUsersResponse{Total: total, Users: make([]AdminUserResponse, 0, len(users))}
	for _, user := range users {
		response.Users = append(response.Users, AdminUserResponse{
			ID:           user.ID,
			Email:        user.Email,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			ExpenseCount: user.ExpenseCount,
			CreatedAt:    user.CreatedAt.Format(timeLayout),
		})
	}

	return c.JSON(http.StatusOK, response)
}

// ListAIRequests возвращает журнал вызовов помощника. Фильтры: user_id,
// success, request_type; тела запросов и ответов только при include_payloads=true.
func (h *AdminHandler) ListAIRequests(c echo.Context) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	filter, err := parseAIRequestFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	includePayloads, err := queryBool(c, "include_payloads")
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	requests, err := h.Repo.ListAIRequests(ctx, filter, limit, offset, includePayloads != nil && *includePayloads)
	if err != nil {
		return serverError(c)
	}

	total, err := h.Repo.CountAIRequests(ctx, filter)
	if err != nil {
		return serverError(c)
	}

	if requests == nil {
		requests = []models.AIRequest{}
	}
	return c.JSON(http.StatusOK, AdminAIRequestsResponse{Total: total, Requests: requests})
}

// Usage возвращает счетчики пользователей, расходов и вызовов помощника за days дней.
func (h *AdminHandler) Usage(c echo.Context) error {
	days, err := queryInt(c, "days", usageDefaultDays, 1, usageMaxDays)
	if err != nil {
		return badRequest(c, err.Error())
	}

	stats, err := h.Repo.UsageStats(c.Request().Context(), days)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid days")
		}
		return serverError(c)
	}

	response := AdminUsageResponse{
		Users:            stats.Users,
		Expenses:         stats.Expenses,
		Budgets:          stats.Budgets,
		AIRequests:       stats.AIRequests,
		AISuccess:        stats.AISuccess,
		AIFail:           stats.AIFail,
		AIRequestsByType: make([]AdminUsageType, 0, len(stats.AIRequestsByType)),
		AIRequestsByDay:  make([]AdminUsageDay, 0, len(stats.AIRequestsByDay)),
	}
	for _, item := range stats.AIRequestsByType {
		response.AIRequestsByType = append(response.AIRequestsByType, AdminUsageType(item))
	}
	for _, day := range stats.AIRequestsByDay {
		response.AIRequestsByDay = append(response.AIRequestsByDay, AdminUsageDay{
			Date:  day.Day.Format(dateLayout),
			Count: day.Count,
		})
	}

	return c.JSON(http.StatusOK, response)
}

// AdminMiddleware пускает к админским роутам только пользователей из ADMIN_EMAILS.
// Email из токена сверяется с текущим email пользователя в базе.
func AdminMiddleware(users UserStore, emails []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if normalized := normalizeEmail(email); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := currentUserID(c)
			if !ok {
				return unauthorized(c)
			}

			if _, ok := allowed[normalizeEmail(auth.EmailFromContext(c))]; !ok {
				return forbidden(c)
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return forbidden(c)
				}
				return serverError(c)
			}

			if _, ok := allowed[normalizeEmail(user.Email)]; !ok {
				return forbidden(c)
			}

			return next(c)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseAIRequestFilter(c echo.Context) (repository.AIRequestFilter, error) {
	var filter repository.AIRequestFilter

	if raw := strings.TrimSpace(c.QueryParam("user_id")); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid user_id")
		}
		filter.UserID = &userID
	}

	success, err := queryBool(c, "success")
	if err != nil {
		return filter, err
	}
	filter.Success = success

	if raw := strings.TrimSpace(c.QueryParam("request_type")); raw != "" {
		filter.RequestType = &raw
	}

	return filter, nil
}

func parsePagination(c echo.Context) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit", adminPageSize, 1, adminMaxPageSize); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(c, "offset", 0, 0, -1); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// queryInt читает целый параметр. Значения меньше minValue отклоняются,
// больше maxValue урезаются; maxValue < 0 снимает верхнюю границу.
func queryInt(c echo.Context, key string, fallback, minValue, maxValue int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < minValue {
		return 0, errors.New("invalid " + key)
	}
	if maxValue >= 0 && value > maxValue {
		value = maxValue
	}
	return value, nil
}

func queryBool(c echo.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &value, nil
}

package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-tracker/backend/internal/handlers"
	"example.com/finance-tracker/backend/internal/notifications"
)

type closedSubscriber struct {
	events       []notifications.Event
	subscribedTo uuid.UUID
	unsubscribed bool
}

func (s *closedSubscriber) Subscribe(userID uuid.UUID) (<-chan notifications.Event, func()) {
	s.subscribedTo = userID
	ch := make(chan notifications.Event, len(s.events))
	for _, event := range s.events {
		ch <- event
	}
	close(ch)
	return ch, func() { s.unsubscribed = true }
}

// TestNotificationStream проверяет формат SSE и завершение при закрытии канала.
func TestNotificationStream(t *testing.T) {
	e := newTestEcho()
	userID := uuid.New()
	subscriber := &closedSubscriber{events: []notifications.Event{{
		Type: notifications.EventBudgetAlert,
		Data: notifications.BudgetAlert{Level: notifications.AlertWarning, Category: "food", Percentage: 80},
	}}}
	handler := handlers.NewNotificationHandler(subscriber)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/notifications/stream", "", userID)
	require.NoError(t, handler.Stream(c))

	assert.Equal(t, userID, subscriber.subscribedTo)
	assert.True(t, subscriber.unsubscribed)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	require.Len(t, frames, 2)
	assert.True(t, strings.HasPrefix(frames[0], "event: connected\ndata: "))
	assert.Contains(t, frames[0], userID.String())
	assert.True(t, strings.HasPrefix(frames[1], "event: budget_alert\ndata: "))
	assert.Contains(t, frames[1], `"level":"warning"`)
	assert.Contains(t, frames[1], `"percentage":80`)
}

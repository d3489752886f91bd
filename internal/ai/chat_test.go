package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleChatContext() ChatContext {
	return ChatContext{
		Expenses: sampleExpenses(),
		Budget: Budget{
			TotalBudget: 5000,
			BudgetCategories: map[string]BudgetCategory{
				"food": {Allocated: 3000, Spent: 500},
			},
		},
	}
}

// TestRespondIntents проверяет порядок и ответы намерений чата.
func TestRespondIntents(t *testing.T) {
	service := newTestService(day(2024, time.January, 15), scriptedRandom{index: 1})
	chat := sampleChatContext()

	cases := []struct {
		name    string
		message string
		want    string
	}{
		{"top category", "Where do I spend the MOST?", "Your highest spending category is food with $180.50 spent."},
		{"highest wins over greeting", "hi, what is my highest category", "Your highest spending category is food with $180.50 spent."},
		{"saving tip", "How can I save money?", savingTips[1]},
		{"remaining budget", "How much budget left do I have", "You have $4734.50 remaining in your total budget this month."},
		{"food budget", "what about my food budget", "You have $2819.50 remaining in your food budget."},
		{"greeting", "Hello there", greetingReply},
		{"total", "What's my total?", "You've spent $265.50 in total across all categories."},
		{"default", "tell me a joke", defaultReplies[1]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.Respond(tc.message, chat))
		})
	}
}

// TestRespondWithoutExpenses проверяет значения по умолчанию при пустом контексте.
func TestRespondWithoutExpenses(t *testing.T) {
	service := newTestService(day(2024, time.January, 15), scriptedRandom{})

	assert.Equal(t, "Your highest spending category is other with $0.00 spent.", service.Respond("highest?", ChatContext{}))
	assert.Equal(t, "You have $0.00 remaining in your total budget this month.", service.Respond("remaining", ChatContext{}))
	assert.Equal(t, "You have $0.00 remaining in your food budget.", service.Respond("food budget", ChatContext{}))
}

// TestMatchIntent проверяет определение имени намерения.
func TestMatchIntent(t *testing.T) {
	assert.Equal(t, "top_category", MatchIntent("highest"))
	assert.Equal(t, "saving_tip", MatchIntent("reduce costs"))
	assert.Equal(t, "budget_remaining", MatchIntent("remaining"))
	assert.Equal(t, "food_budget", MatchIntent("Food Budget"))
	assert.Equal(t, "greeting", MatchIntent("hello"))
	assert.Equal(t, "total_spent", MatchIntent("total"))
	assert.Equal(t, "default", MatchIntent("weather"))
}

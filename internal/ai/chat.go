package ai

import (
	"fmt"
	"strings"

	"example.com/finance-tracker/backend/internal/models"
)

const greetingReply = "Hello! I'm your AI financial assistant. I can help you understand your spending patterns, suggest ways to save money, and answer questions about your budget. What would you like to know?"

var savingTips = []string{
	"Try the 50/30/20 rule: 50% needs, 30% wants, 20% savings.",
	"Consider meal planning to reduce food expenses.",
	"Look for subscription services you're not using regularly.",
	"Set up automatic transfers to your savings account.",
	"Use the 24-hour rule before making non-essential purchases.",
}

var defaultReplies = []string{
	"I'm here to help you manage your finances better. You can ask me about your spending patterns, budget remaining, or tips to save money.",
	"Let me analyze your spending data to provide better insights. Try asking about your highest spending category or remaining budget.",
	"I can help you understand where your money goes and suggest ways to optimize your spending. What specific area would you like to focus on?",
}

type intent struct {
	name    string
	matches func(message string) bool
	reply   func(s *Service, chat ChatContext, spending Spending) string
}

// intents проверяются по порядку, срабатывает первое совпадение.
var intents = []intent{
	{
		name:    "top_category",
		matches: containsAny("highest", "most"),
		reply: func(_ *Service, _ ChatContext, spending Spending) string {
			top, ok := spending.Top()
			if !ok {
				top = CategoryAmount{Category: models.CategoryOther}
			}
			return fmt.Sprintf("Your highest spending category is %s with $%.2f spent.", top.Category, top.Amount)
		},
	},
	{
		name:    "saving_tip",
		matches: containsAny("reduce", "save"),
		reply: func(s *Service, _ ChatContext, _ Spending) string {
			return s.pick(savingTips)
		},
	},
	{
		name:    "budget_remaining",
		matches: containsAny("budget left", "remaining"),
		reply: func(_ *Service, chat ChatContext, spending Spending) string {
			remaining := chat.Budget.TotalBudget - spending.Total
			return fmt.Sprintf("You have $%.2f remaining in your total budget this month.", remaining)
		},
	},
	{
		name:    "food_budget",
		matches: containsAll("food", "budget"),
		reply: func(_ *Service, chat ChatContext, spending Spending) string {
			allocated := chat.Budget.BudgetCategories[string(models.CategoryFood)].Allocated
			remaining := allocated - spending.ByCategory[models.CategoryFood]
			return fmt.Sprintf("You have $%.2f remaining in your food budget.", remaining)
		},
	},
	{
		name:    "greeting",
		matches: containsAny("hello", "hi"),
		reply: func(_ *Service, _ ChatContext, _ Spending) string {
			return greetingReply
		},
	},
	{
		name:    "total_spent",
		matches: containsAny("total", "spent"),
		reply: func(_ *Service, _ ChatContext, spending Spending) string {
			return fmt.Sprintf("You've spent $%.2f in total across all categories.", spending.Total)
		},
	},
}

// Respond отвечает на сообщение пользователя по фиксированному набору намерений.
// Суммы считаются по всем переданным расходам, без фильтра по месяцу.
func (s *Service) Respond(message string, chat ChatContext) string {
	lower := strings.ToLower(message)
	spending := Summarize(chat.Expenses, nil)

	for _, candidate := range intents {
		if candidate.matches(lower) {
			return candidate.reply(s, chat, spending)
		}
	}

	return s.pick(defaultReplies)
}

// MatchIntent возвращает имя сработавшего намерения или "default".
func MatchIntent(message string) string {
	lower := strings.ToLower(message)
	for _, candidate := range intents {
		if candidate.matches(lower) {
			return candidate.name
		}
	}
	return "default"
}

func containsAny(words ...string) func(string) bool {
	return func(message string) bool {
		for _, word := range words {
			if strings.Contains(message, word) {
				return true
			}
		}
		return false
	}
}

func containsAll(words ...string) func(string) bool {
	return func(message string) bool {
		for _, word := range words {
			if !strings.Contains(message, word) {
				return false
			}
		}
		return true
	}
}

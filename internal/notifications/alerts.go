package notifications

import (
	"fmt"
	"math"
)

const (
	AlertWarning = "warning"
	AlertDanger  = "danger"

	warningPercent = 75
	dangerPercent  = 90
)

// BudgetAlert описывает превышение порога расходов по категории.
type BudgetAlert struct {
	Level      string  `json:"level"`
	Category   string  `json:"category"`
	Percentage int     `json:"percentage"`
	Spent      float64 `json:"spent"`
	Allocated  float64 `json:"allocated"`
	Message    string  `json:"message"`
}

// ExpenseChange описывает изменение расхода.
type ExpenseChange struct {
	Action    string `json:"action"`
	ExpenseID string `json:"expenseId"`
	Category  string `json:"category,omitempty"`
}

// CheckBudget возвращает предупреждение при использовании 75% и более,
// и тревогу при 90% и более. Без лимита категории предупреждений нет.
func CheckBudget(category string, spent, allocated float64) (BudgetAlert, bool) {
	if allocated <= 0 {
		return BudgetAlert{}, false
	}

	percentage := spent / allocated * 100
	alert := BudgetAlert{
		Category:   category,
		Percentage: int(math.Round(percentage)),
		Spent:      spent,
		Allocated:  allocated,
	}

	switch {
	case percentage >= dangerPercent:
		alert.Level = AlertDanger
		alert.Message = fmt.Sprintf("You've spent %d%% of your %s budget!", alert.Percentage, category)
	case percentage >= warningPercent:
		alert.Level = AlertWarning
		alert.Message = fmt.Sprintf("You've spent %d%% of your %s budget.", alert.Percentage, category)
	default:
		return BudgetAlert{}, false
	}

	return alert, true
}

package ai

import (
	"bytes"
	"encoding/json"

	"example.com/finance-tracker/backend/internal/models"
)

const dateLayout = "2006-01-02"

// ExpenseID непрозрачный идентификатор расхода: принимает строку или число.
type ExpenseID string

func (id *ExpenseID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*id = ExpenseID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}

	*id = ExpenseID(number.String())
	return nil
}

type Expense struct {
	ID          ExpenseID       `json:"id,omitempty"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Date        string          `json:"date"`
	AIGenerated bool            `json:"aiGenerated"`
}

type BudgetCategory struct {
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
}

type Budget struct {
	TotalBudget      float64                   `json:"totalBudget"`
	BudgetCategories map[string]BudgetCategory `json:"budgetCategories"`
}

type ChatContext struct {
	Expenses []Expense `json:"expenses"`
	Budget   Budget    `json:"budget"`
}

type CategoryResult struct {
	Category   models.Category `json:"category"`
	Confidence float64         `json:"confidence"`
}

type VoiceResult struct {
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Success     bool            `json:"success"`
}

type Forecast struct {
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"byCategory"`
	Confidence float64            `json:"confidence"`
}

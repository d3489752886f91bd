package ai

import (
	"time"

	"example.com/finance-tracker/backend/internal/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type scriptedRandom struct {
	float float64
	index int
}

func (r scriptedRandom) Float64() float64 {
	return r.float
}

func (r scriptedRandom) Intn(n int) int {
	if r.index >= n {
		return n - 1
	}
	return r.index
}

func newTestService(now time.Time, random Random) *Service {
	return NewService(fixedClock{now: now}, random)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 14, 30, 0, 0, time.UTC)
}

func sampleExpenses() []Expense {
	return []Expense{
		{ID: "1", Amount: 45.50, Description: "Lunch at Italian restaurant", Category: models.CategoryFood, Date: "2024-01-15", AIGenerated: true},
		{ID: "2", Amount: 120, Description: "Grocery shopping at Whole Foods", Category: models.CategoryFood, Date: "2024-01-14"},
		{ID: "3", Amount: 25, Description: "Gas station fill-up", Category: models.CategoryTransportation, Date: "2024-01-14", AIGenerated: true},
		{ID: "4", Amount: 60, Description: "Concert tickets", Category: models.CategoryEntertainment, Date: "2023-12-20"},
		{ID: "5", Amount: 15, Description: "Coffee", Category: models.CategoryFood, Date: "2023-11-02"},
	}
}

func expenseIDs(expenses []Expense) []ExpenseID {
	ids := make([]ExpenseID, 0, len(expenses))
	for _, expense := range expenses {
		ids = append(ids, expense.ID)
	}
	return ids
}

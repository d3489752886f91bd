package repository

import (
	"testing"

	"example.com/finance-tracker/backend/internal/models"
)

// TestEncodeCategoriesNil проверяет, что пустой набор пишется как объект.
func TestEncodeCategoriesNil(t *testing.T) {
	payload, err := encodeCategories(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "{}" {
		t.Fatalf("expected {}, got %s", payload)
	}
}

// TestCategoriesRoundTrip проверяет разбор JSONB-карты категорий.
func TestCategoriesRoundTrip(t *testing.T) {
	payload, err := encodeCategories(map[string]models.BudgetCategory{
		"food": {Allocated: 3000, Spent: 1250.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	categories, err := decodeCategories([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	food, ok := categories["food"]
	if !ok {
		t.Fatalf("expected food category")
	}
	if food.Allocated != 3000 || food.Spent != 1250.5 {
		t.Fatalf("unexpected food category: %+v", food)
	}
}

// TestDecodeCategoriesEmpty проверяет пустые и null значения.
func TestDecodeCategoriesEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("null")} {
		categories, err := decodeCategories(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if categories == nil || len(categories) != 0 {
			t.Fatalf("expected empty map, got %v", categories)
		}
	}
}

package ai

import (
	"math"
	"sort"
)

const (
	forecastVariance      = 0.10
	forecastMaxConfidence = 0.9
	forecastFullHistory   = 3.0
	monthKeyLength        = len("2006-01")
)

type monthBucket struct {
	total      float64
	categories map[string]float64
}

// Predict прогнозирует расходы следующего периода по средним месячным суммам.
// timeframe пока не влияет на расчет и оставлен для будущих периодов.
func (s *Service) Predict(expenses []Expense, timeframe string) Forecast {
	if len(expenses) == 0 {
		return Forecast{ByCategory: map[string]float64{}}
	}

	buckets := make(map[string]*monthBucket)
	categories := make([]string, 0)
	seenCategory := make(map[string]struct{})

	for _, expense := range expenses {
		key := monthKey(expense.Date)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &monthBucket{categories: make(map[string]float64)}
			buckets[key] = bucket
		}

		category := string(expense.Category)
		bucket.total += expense.Amount
		bucket.categories[category] += expense.Amount

		if _, ok := seenCategory[category]; !ok {
			seenCategory[category] = struct{}{}
			categories = append(categories, category)
		}
	}

	months := make([]string, 0, len(buckets))
	for key := range buckets {
		months = append(months, key)
	}
	sort.Strings(months)
	monthCount := float64(len(months))

	var sumTotal float64
	for _, key := range months {
		sumTotal += buckets[key].total
	}
	avgTotal := sumTotal / monthCount

	multiplier := 1 + (s.random.Float64()-0.5)*forecastVariance

	byCategory := make(map[string]float64, len(categories))
	for _, category := range categories {
		var sum float64
		for _, key := range months {
			sum += buckets[key].categories[category]
		}
		byCategory[category] = sum / monthCount * multiplier
	}

	return Forecast{
		Total:      avgTotal * multiplier,
		ByCategory: byCategory,
		Confidence: math.Min(forecastMaxConfidence, monthCount/forecastFullHistory),
	}
}

func monthKey(date string) string {
	if len(date) < monthKeyLength {
		return date
	}
	return date[:monthKeyLength]
}

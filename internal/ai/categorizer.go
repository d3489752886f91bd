package ai

import (
	"math"
	"strings"

	"example.com/finance-tracker/backend/internal/models"
)

const (
	fallbackConfidence = 0.3
	baseConfidence     = 0.7
	confidenceStep     = 0.1
	maxConfidence      = 0.95
)

type lexiconEntry struct {
	Category models.Category
	Keywords []string
}

// lexicon проверяется строго по порядку: при равной уверенности побеждает первая категория.
var lexicon = []lexiconEntry{
	{Category: models.CategoryFood, Keywords: []string{"lunch", "dinner", "restaurant", "coffee", "grocery", "pizza", "burger", "meal", "breakfast", "snack", "food", "cafe", "mcdonalds", "starbucks", "whole foods"}},
	{Category: models.CategoryTransportation, Keywords: []string{"gas", "fuel", "uber", "taxi", "bus", "train", "parking", "metro", "flight", "car", "bike", "ride", "transport"}},
	{Category: models.CategoryEntertainment, Keywords: []string{"movie", "cinema", "game", "concert", "theater", "streaming", "netflix", "spotify", "youtube", "entertainment", "show"}},
	{Category: models.CategoryShopping, Keywords: []string{"store", "mall", "amazon", "clothes", "shoes", "book", "shopping", "target", "walmart", "clothing", "electronics"}},
	{Category: models.CategoryUtilities, Keywords: []string{"electricity", "water", "internet", "phone", "utility", "bill", "wifi", "cellular", "power", "heating"}},
	{Category: models.CategoryHealthcare, Keywords: []string{"doctor", "medicine", "pharmacy", "hospital", "clinic", "medical", "health", "prescription", "dentist"}},
}

// Categorize определяет категорию расхода по ключевым словам в описании.
func (s *Service) Categorize(description string) CategoryResult {
	lower := strings.ToLower(description)
	best := CategoryResult{Category: models.CategoryOther, Confidence: fallbackConfidence}

	for _, entry := range lexicon {
		matches := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(lower, keyword) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		confidence := keywordConfidence(matches)
		if confidence > best.Confidence {
			best = CategoryResult{Category: entry.Category, Confidence: confidence}
		}
	}

	return best
}

func keywordConfidence(matches int) float64 {
	confidence := math.Min(maxConfidence, baseConfidence+confidenceStep*float64(matches))
	// 0.7 + 0.1*n в float64 дает хвосты вроде 0.7999999999999999.
	return math.Round(confidence*100) / 100
}

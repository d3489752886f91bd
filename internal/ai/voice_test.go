package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"example.com/finance-tracker/backend/internal/models"
)

// TestProcessVoiceInput проверяет извлечение суммы и очистку описания.
func TestProcessVoiceInput(t *testing.T) {
	service := NewService(nil, nil)

	cases := []struct {
		name       string
		transcript string
		want       VoiceResult
	}{
		{
			name:       "spent dollars",
			transcript: "I spent 45 dollars on lunch",
			want:       VoiceResult{Amount: 45, Description: "on lunch", Category: models.CategoryFood, Success: true},
		},
		{
			name:       "decimal amount",
			transcript: "Paid 12.50 bucks for uber ride",
			want:       VoiceResult{Amount: 12.5, Description: "for uber ride", Category: models.CategoryTransportation, Success: true},
		},
		{
			name:       "placeholder description",
			transcript: "$5",
			want:       VoiceResult{Amount: 5, Description: "Voice expense", Category: models.CategoryOther, Success: true},
		},
		{
			name:       "no amount",
			transcript: "movie night",
			want:       VoiceResult{Amount: 0, Description: "movie night", Category: models.CategoryEntertainment, Success: false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.ProcessVoiceInput(tc.transcript))
		})
	}
}

package ai

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	voicePlaceholder      = "Voice expense"
	minVoiceDescriptionLn = 3
)

var (
	voiceAmountRegex = regexp.MustCompile(`(\d+(?:\.\d{2})?)`)
	voiceFillerRegex = regexp.MustCompile(`(?i)i spent|i paid|i bought|spent|paid|dollars?|bucks?|\$`)
	voiceNumberRegex = regexp.MustCompile(`\d+(?:\.\d{2})?`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// ProcessVoiceInput извлекает сумму и описание из расшифровки речи и определяет категорию.
func (s *Service) ProcessVoiceInput(transcript string) VoiceResult {
	amount := 0.0
	if match := voiceAmountRegex.FindStringSubmatch(transcript); len(match) > 1 {
		if parsed, err := strconv.ParseFloat(match[1], 64); err == nil {
			amount = parsed
		}
	}

	description := voiceFillerRegex.ReplaceAllString(transcript, "")
	description = voiceNumberRegex.ReplaceAllString(description, "")
	description = whitespaceRegex.ReplaceAllString(description, " ")
	description = strings.TrimSpace(description)

	if utf8.RuneCountInString(description) < minVoiceDescriptionLn {
		description = voicePlaceholder
	}

	result := s.Categorize(description)

	return VoiceResult{
		Amount:      amount,
		Description: description,
		Category:    result.Category,
		Success:     amount > 0 && description != "",
	}
}

package journal

import (
	"strings"
	"unicode/utf8"

	"github.com/beaverbuddy/server/internal/apperr"
)

const (
	// MinAnswerLength is the minimum trimmed length of an accepted answer,
	// in characters.
	MinAnswerLength = 10
	// MaxAnswerLength is the hard cap applied to persisted answers, in
	// characters.
	MaxAnswerLength = 5000
)

// ValidateAnswer rejects answers that are empty, too short after trimming,
// or too long in raw form. Lengths count characters, not bytes, so multibyte
// text is measured the same as ASCII. It never mutates its input.
func ValidateAnswer(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return apperr.Validation("Answer is required")
	}
	if utf8.RuneCountInString(trimmed) < MinAnswerLength {
		return apperr.Validation("Answer must be at least 10 characters long")
	}
	if utf8.RuneCountInString(raw) > MaxAnswerLength {
		return apperr.Validation("Answer is too long (maximum 5000 characters)")
	}
	return nil
}

// SanitizeAnswer trims the answer, strips angle brackets to block markup
// injection, and enforces the maximum length on a character boundary.
func SanitizeAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	if utf8.RuneCountInString(s) > MaxAnswerLength {
		s = string([]rune(s)[:MaxAnswerLength])
	}
	return s
}

// ValidatePromptIndex rejects negative indexes. A nil pointer means the
// field was absent from the request entirely.
func ValidatePromptIndex(idx *int) error {
	if idx == nil {
		return apperr.Validation("promptIndex is required")
	}
	if *idx < 0 {
		return apperr.Validation("Invalid promptIndex format")
	}
	return nil
}

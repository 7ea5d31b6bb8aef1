package text

import (
	"fmt"
	"unicode"
)

// meaningfulRatio is the share of minLength that must be letters or digits.
const meaningfulRatio = 0.5

// ValidationResult is the outcome of Validate. Errors is empty when IsValid.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// Validate checks the cleaned text against the length bounds and requires
// enough letters and digits to be worth summarizing.
func Validate(text string, minLength, maxLength int) ValidationResult {
	if text == "" {
		return ValidationResult{Errors: []string{"Text must be a non-empty string"}}
	}

	var errs []string
	length := CountRunes(text)
	if length < minLength {
		errs = append(errs, fmt.Sprintf("Text must be at least %d characters long", minLength))
	}
	if length > maxLength {
		errs = append(errs, fmt.Sprintf("Text must be no more than %d characters long", maxLength))
	}
	if float64(countMeaningful(text)) < float64(minLength)*meaningfulRatio {
		errs = append(errs, "Text must contain meaningful content")
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func countMeaningful(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			n++
		}
	}
	return n
}

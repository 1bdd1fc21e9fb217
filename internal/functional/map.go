package functional

import (
	"github.com/agext/levenshtein"
)

func Map[T any, U any](slice []T, f func(T) U) []U {
	result := make([]U, len(slice))
	for i, t := range slice {
		result[i] = f(t)
	}
	return result
}

// Suggest the option closest to text. Options further away than half of the
// text length are not considered a typo of it
func Suggest(text string, options []string) (string, bool) {
	suggestion := ""
	bestDistance := len(text)/2 + 1
	for _, option := range options {
		dist := levenshtein.Distance(text, option, nil)
		if dist < bestDistance {
			suggestion = option
			bestDistance = dist
		}
	}

	return suggestion, suggestion != ""
}

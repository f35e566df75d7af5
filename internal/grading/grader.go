// Package grading decides answer correctness for questions whose correct
// answer is stored either as the exact option text or as a letter A-D.
//
// Exact text always wins over the letter reading, so an option whose text is
// itself a single letter is only reachable by its text.
package grading

import "strings"

// letterIndex resolves a letter encoding to a zero-based option index. It
// reports false for anything that is not a single letter A-D.
func letterIndex(correctAnswer string) (int, bool) {
	s := strings.TrimSpace(correctAnswer)
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	switch {
	case c >= 'A' && c <= 'D':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'd':
		return int(c - 'a'), true
	}
	return 0, false
}

// resolve returns the option a letter encoding points at, if it is in range.
func resolve(correctAnswer string, options []string) (string, bool) {
	idx, ok := letterIndex(correctAnswer)
	if !ok || idx >= len(options) {
		return "", false
	}
	return options[idx], true
}

// IsCorrect reports whether selected satisfies correctAnswer.
func IsCorrect(selected, correctAnswer string, options []string) bool {
	sel := strings.TrimSpace(selected)
	if sel == strings.TrimSpace(correctAnswer) {
		return true
	}
	option, ok := resolve(correctAnswer, options)
	if !ok {
		return false
	}
	return sel == strings.TrimSpace(option)
}

// DisplayAnswer is the human-readable correct answer. It is never used for grading.
func DisplayAnswer(correctAnswer string, options []string) string {
	if option, ok := resolve(correctAnswer, options); ok {
		return option
	}
	return correctAnswer
}

// IsCorrectOption reports whether the option at idx should be marked correct.
func IsCorrectOption(idx int, option, correctAnswer string) bool {
	if strings.TrimSpace(option) == strings.TrimSpace(correctAnswer) {
		return true
	}
	letter, ok := letterIndex(correctAnswer)
	return ok && letter == idx
}

// OptionLabel is the letter shown next to the option at idx.
func OptionLabel(idx int) string {
	return string(rune('A' + idx))
}

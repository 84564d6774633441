package calculator

import (
	"fmt"
	"strconv"
	"strings"
)

func errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// classGrade extracts the numeric grade from a race class string. Providers
// send shapes like "5", "Class 5", "G1" or "Grade 1"; the first integer in
// the string is the grade. Ungraded classes ("Maiden", "") report !ok.
func classGrade(class *string) (float64, bool) {
	if class == nil {
		return 0, false
	}
	s := strings.TrimSpace(*class)
	if s == "" {
		return 0, false
	}

	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start == -1 {
		return 0, false
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	grade, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return float64(grade), true
}

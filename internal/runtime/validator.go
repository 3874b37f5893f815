package runtime

import "strings"

// ValidGraduationYear reports whether s is exactly four ASCII digits.
func ValidGraduationYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidPhone only requires some visible content; the format is checked by HR.
func ValidPhone(s string) bool {
	return strings.TrimSpace(s) != ""
}

package http

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation constants
const (
	MaxUsernameLength  = 64
	MaxNameLength      = 256
	MaxQuestionLength  = 4000
	MaxConfigKeyLength = 64
	MaxConfigValLength = 50000 // Prompt overrides can be long
	MaxUploadBytes     = 15 << 20
)

var (
	usernameRe  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	configKeyRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	dniRe       = regexp.MustCompile(`^[0-9]{6,10}$`)
)

// ValidUsername checks if a username is safe (alphanumeric + underscore + hyphen)
func ValidUsername(s string) bool {
	return s != "" && len(s) <= MaxUsernameLength && usernameRe.MatchString(s)
}

// ValidConfigKey checks if a settings key is safe
func ValidConfigKey(s string) bool {
	return s != "" && len(s) <= MaxConfigKeyLength && configKeyRe.MatchString(s)
}

// ValidDNI checks the national id format (digits only, 6-10 long)
func ValidDNI(s string) bool {
	return s == "" || dniRe.MatchString(s)
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// ValidateLength checks if string is within bounds
func ValidateLength(s string, min, max int) bool {
	l := len(s)
	return l >= min && l <= max
}

package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCPF strips everything but digits from a CPF.
func NormalizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// ValidCPF reports whether a normalized CPF has the expected length.
func ValidCPF(cpf string) bool {
	return len(cpf) == 11
}

// LooksLikeCPF reports whether an identifier should be treated as a CPF
// rather than an email address.
func LooksLikeCPF(identifier string) bool {
	return !strings.Contains(identifier, "@")
}

package services

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ValidationError collects every problem found in an input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// ErrInvalidCredentials is returned for an unknown login or a wrong password.
var ErrInvalidCredentials = errors.New("invalid login or password")

type problems []string

func (p *problems) add(ok bool, message string) {
	if !ok {
		*p = append(*p, message)
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: p}
}

func nonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}

const (
	minPasswordLength = 4
	maxPasswordLength = 16
)

var (
	forbiddenPasswordChars = "*&{}|+"
	uppercaseLetter        = regexp.MustCompile(`[A-ZА-Я]`)
	digit                  = regexp.MustCompile(`\d`)
)

// cleanPassword is applied to every clear-text password before it is
// checked, hashed or compared.
func cleanPassword(password string) string {
	return strings.TrimSpace(password)
}

// CheckPassword returns the password policy violations of password, or nil
// when it is acceptable.
func CheckPassword(password string) []string {
	var p problems
	n := utf8.RuneCountInString(password)
	p.add(n >= minPasswordLength && n <= maxPasswordLength, "password must be 4 to 16 characters long")
	p.add(!strings.ContainsAny(password, forbiddenPasswordChars), "password must not contain * & { } | +")
	p.add(uppercaseLetter.MatchString(password), "password must contain an uppercase letter")
	p.add(digit.MatchString(password), "password must contain a digit")
	return p
}

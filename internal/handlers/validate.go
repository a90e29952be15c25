package handlers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validation limits for API inputs.
const (
	maxEmailLen    = 254
	maxPasswordLen = 256

	// maxTreeBodySize bounds a saved Related Links document (5 MB).
	maxTreeBodySize = 5 << 20

	defaultRevisionLimit = 20
	maxRevisionLimit     = 100
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login fields. Errors are keyed by JSON field name.
func (l loginRequest) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email,
			validation.Required.Error("email is required"),
			validation.Length(3, maxEmailLen),
			validation.Match(emailPattern).Error("must be a valid email address"),
		),
		validation.Field(&l.Password,
			validation.Required.Error("password is required"),
			validation.Length(1, maxPasswordLen),
		),
	)
}

// fieldErrors flattens ozzo validation errors into a field -> message map.
// It reports false when err is not a field validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return nil, false
	}
	fields := make(map[string]string, len(ve))
	for name, fe := range ve {
		fields[name] = fe.Error()
	}
	return fields, true
}

// parseLimit reads a positive list limit, clamped to maxRevisionLimit.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRevisionLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("must be a positive integer")
	}
	return min(n, maxRevisionLimit), nil
}

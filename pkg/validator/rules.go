package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// Required validates that a string is not empty or whitespace-only.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "is required",
		},
	}
}

// RequiredWithMessage is Required with a custom user-facing message.
func RequiredWithMessage(field, value, message string) Rule {
	r := Required(field, value)
	r.Error.Message = message
	return r
}

// ValidEmail validates that a string is a valid email address using RFC 5322.
func ValidEmail(field, value string) Rule {
	return ValidEmailWithMessage(field, value, "must be a valid email address")
}

// ValidEmailWithMessage is ValidEmail with a custom user-facing message.
func ValidEmailWithMessage(field, value, message string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}

			// Parse with Go's mail parser first
			addr, err := mail.ParseAddress(value)
			if err != nil {
				return false
			}

			// Additional validation for typical web use
			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 {
				return false
			}

			localPart := parts[0]
			domain := parts[1]

			if localPart == "" {
				return false
			}

			// Domain must contain at least one dot and cannot start/end with dot
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}

			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}

			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: message,
		},
	}
}

// Matches validates against a pre-compiled pattern.
func Matches(field, value string, pattern *regexp.Regexp, description string) Rule {
	return MatchesWithMessage(field, value, pattern, fmt.Sprintf("must match %s pattern", description))
}

// MatchesWithMessage is Matches with a custom user-facing message.
func MatchesWithMessage(field, value string, pattern *regexp.Regexp, message string) Rule {
	return Rule{
		Check: func() bool {
			return pattern.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: message,
		},
	}
}

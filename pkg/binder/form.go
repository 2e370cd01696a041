package binder

import (
	"fmt"
	"net/http"
	"strings"
)

// Form creates a binder for application/x-www-form-urlencoded request bodies.
//
// It supports struct tags for custom field names:
//   - `form:"name"` - binds to form field "name"
//   - `form:"-"` - skips the field
//
// Supported types: string, ints, uints, floats, bool, slices of those, and
// pointers for optional fields. Requests without a body (GET) are skipped so
// the same binder chain can serve both phases of a form.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		// Form data only travels on body-carrying methods
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			return nil
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/x-www-form-urlencoded", ErrMissingContentType)
		}

		mediaType := contentType
		if idx := strings.Index(contentType, ";"); idx != -1 {
			mediaType = strings.TrimSpace(contentType[:idx])
		}

		if mediaType != "application/x-www-form-urlencoded" {
			return fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded", ErrUnsupportedMediaType, mediaType)
		}

		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}

		return bindToStruct(v, "form", r.PostForm, ErrInvalidForm)
	}
}

// Package validator provides composable validation rules for form input.
//
// Rules are plain values combining a predicate with the field-level error to
// report when it fails; Apply runs a set of rules and collects failures into
// a ValidationErrors value that implements error. Handlers map those field
// errors back onto the submitted form.
//
//	err := validator.Apply(
//		validator.ValidEmail("email", req.Email),
//		validator.Matches("otp", req.OTP, otpRegex, "six digits"),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil { ... }
package validator

// Package binder parses HTTP request data into typed structs using struct
// tags, one binder per source: Form for urlencoded bodies and Query for URL
// parameters.
//
// Binders are plain func(r *http.Request, v any) error values so handlers can
// chain them over the same request struct, which is how the login form binds
// both its query-string deep-link parameters and its posted fields:
//
//	type loginRequest struct {
//		Email  string `form:"email" query:"email"`
//		OTP    string `form:"otp" query:"otp"`
//		Intent string `form:"intent"`
//	}
//
//	var req loginRequest
//	for _, bind := range []func(*http.Request, any) error{binder.Query(), binder.Form()} {
//		if err := bind(r, &req); err != nil { ... }
//	}
package binder

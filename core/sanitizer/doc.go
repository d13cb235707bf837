// Package sanitizer normalizes user input before it is validated or sent on.
//
// The string helpers can be called directly, or applied to a struct through
// sanitize tags:
//
//	type Request struct {
//		Email string `sanitize:"email"`
//		Notes string `sanitize:"text,max:500"`
//	}
//
//	if err := sanitizer.Struct(&req); err != nil {
//		return err
//	}
//
// Available rules: trim, lower, email, single_line, text, no_control,
// filename and max:N. An unknown rule is an error, so a typo in a tag fails
// loudly instead of leaving input untouched.
package sanitizer

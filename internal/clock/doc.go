// Package clock provides a tiny time abstraction.
//
// TOTP code generation and validation depend on the Clocker interface rather
// than calling time.Now directly, so tests can pin "now" to a known moving
// factor.
package clock

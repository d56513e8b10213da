// Package otpcode computes and validates one-time passwords.
//
// HOTP (RFC 4226) is counter-driven and validated over a forward
// resynchronization window; TOTP (RFC 6238) derives its moving factor from an
// injected clock and is validated over a window around "now". Both engines are
// pure with respect to storage: validation returns the new counter instead of
// writing it, and the caller persists it through the credential store.
//
// Each account selects one of two encodings. The compatible encoding keys
// the HMAC with the secret's Base32 text, uses a 4-byte HOTP counter and
// always reads the truncation offset from digest byte 19; this is what every
// code generated by earlier versions of the tool was computed with. The RFC
// encoding delegates to github.com/pquerna/otp and matches standard
// authenticator apps.
package otpcode

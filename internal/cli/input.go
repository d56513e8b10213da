package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrPinMismatch is returned when the confirmation differs from the new PIN.
var ErrPinMismatch = errors.New("pins do not match")

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// stdinFd returns the descriptor readPassword reads from.
var stdinFd = func() int { return int(os.Stdin.Fd()) }

// GetPin prints prompt to w and reads a PIN from the terminal without echo.
// A newline is printed after the read to keep the output tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPin(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pin, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read pin: %w", err)
	}
	return pin, nil
}

// suppliedPin returns the PIN from --pin or OTP_PIN, or nil.
func (a *App) suppliedPin() []byte {
	if a.pin != "" {
		return []byte(a.pin)
	}
	if v := a.getenv(PinEnv); v != "" {
		return []byte(v)
	}
	return nil
}

// currentPin returns the supplied PIN or prompts for it on stderr.
func (a *App) currentPin(cmd *cobra.Command, prompt string) ([]byte, error) {
	if pin := a.suppliedPin(); pin != nil {
		return pin, nil
	}
	return GetPin(cmd.ErrOrStderr(), prompt)
}

// confirmedPin prompts twice and requires both entries to match.
func confirmedPin(w io.Writer) ([]byte, error) {
	first, err := GetPin(w, "New PIN")
	if err != nil {
		return nil, err
	}
	second, err := GetPin(w, "Confirm PIN")
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, ErrPinMismatch
	}
	return first, nil
}

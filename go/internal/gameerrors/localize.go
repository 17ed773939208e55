package gameerrors

import "github.com/mcdev12/sleuth/go/internal/gameerrors/i18n"

// Localize returns the user-facing message for code in locale.
func Localize(locale string, code Code) string {
	return i18n.Message(locale, string(code))
}

// UserMessage returns the user-facing message for the error in locale.
func (e *Error) UserMessage(locale string) string {
	return Localize(locale, e.Code)
}

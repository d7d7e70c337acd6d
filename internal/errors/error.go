package errors

import (
	"fmt"
)

// Category groups errors by where they arise.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryEvent   Category = "event"
	CategoryCodec   Category = "codec"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryState   Category = "state"
)

// PlopError is a coded error with an optional hint for the user.
type PlopError struct {
	// Code is a unique identifier such as "E101".
	Code string

	// Category is the area the error comes from.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL links to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PlopError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PlopError) Unwrap() error {
	return e.Wrapped
}

// Is matches any PlopError carrying the same code, so the sentinels below
// work with errors.Is after details have been attached.
func (e *PlopError) Is(target error) bool {
	t, ok := target.(*PlopError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PlopError) WithSuggestion(s string) *PlopError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *PlopError) WithDetail(d string) *PlopError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *PlopError) WithDetailf(format string, args ...any) *PlopError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *PlopError) Wrap(err error) *PlopError {
	e.Wrapped = err
	return e
}

// New creates a PlopError from a registered error code.
func New(code string) *PlopError {
	template, ok := registry[code]
	if !ok {
		return &PlopError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PlopError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded PlopError with a formatted message.
func Newf(category Category, format string, args ...any) *PlopError {
	return &PlopError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a PlopError with the given code. A PlopError is
// returned unchanged.
func FromError(err error, code string) *PlopError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PlopError); ok {
		return pe
	}
	return New(code).Wrap(err)
}

// Sentinels for errors.Is. Never modify them; call New for a fresh value.
var (
	ErrNotInteractive   = New("E100")
	ErrElementNotFound  = New("E101")
	ErrEventDecode      = New("E110")
	ErrMessageType      = New("E111")
	ErrConfigInvalid    = New("E120")
	ErrConfigRead       = New("E121")
	ErrCodecMalformed   = New("E130")
	ErrCodecUnsupported = New("E131")
)

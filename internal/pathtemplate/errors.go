// Package pathtemplate implements the bidirectional path
// parse/solve engine adjacent to the orchestration engine (spec §8):
// named tokens with optional full-name/abbreviation option sets, and
// named templates whose `{token}` patterns solve into concrete path
// strings and parse concrete paths back into token values.
package pathtemplate

import "fmt"

// TokenError is raised by a Token's Solve/Parse when a required value
// is missing or an option name/abbreviation isn't recognized.
type TokenError struct{ msg string }

func (e *TokenError) Error() string { return e.msg }

func tokenErrorf(format string, args ...any) error {
	return &TokenError{msg: fmt.Sprintf(format, args...)}
}

// TemplateError is raised when a template references an unknown nested
// template or a reference cycle, or when a repo's files cannot be read.
// A `{token}` with no registered Token is not an error.
type TemplateError struct{ msg string }

func (e *TemplateError) Error() string { return e.msg }

func templateErrorf(format string, args ...any) error {
	return &TemplateError{msg: fmt.Sprintf(format, args...)}
}

// ParsingError is raised when a path does not match a template's
// pattern.
type ParsingError struct{ msg string }

func (e *ParsingError) Error() string { return e.msg }

func parsingErrorf(format string, args ...any) error {
	return &ParsingError{msg: fmt.Sprintf(format, args...)}
}

// SolvingError is raised when a template's required fields don't
// fully cover the values passed to Solve.
type SolvingError struct{ msg string }

func (e *SolvingError) Error() string { return e.msg }

func solvingErrorf(format string, args ...any) error {
	return &SolvingError{msg: fmt.Sprintf(format, args...)}
}

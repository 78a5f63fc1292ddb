// Package validation holds the bound checks shared by Check, Context
// and Action setters: one function per rule (name length, description
// length, priority range), all in this file.
package validation

import (
	"unicode/utf8"

	"github.com/sanitycheck/engine/internal/apperror"
)

const (
	// NameCharLimit is the max length of a Check/Context/Action name.
	NameCharLimit = 50
	// DescriptionCharLimit is the max length of a description.
	DescriptionCharLimit = 140
	// PriorityMin is the minimum allowed Check priority.
	PriorityMin = 0
	// PriorityMax is the maximum allowed Check priority.
	PriorityMax = 100
)

// Name validates a Check/Context/Action name.
func Name(n string) error {
	if n := utf8.RuneCountInString(n); n > NameCharLimit {
		return apperror.Implementationf("name must be %d characters or fewer, got %d", NameCharLimit, n)
	}
	return nil
}

// Description validates a Check/Context/Action description.
func Description(d string) error {
	if n := utf8.RuneCountInString(d); n > DescriptionCharLimit {
		return apperror.Implementationf("description must be %d characters or fewer, got %d", DescriptionCharLimit, n)
	}
	return nil
}

// Priority validates a Check priority.
func Priority(p int) error {
	if p < PriorityMin || p > PriorityMax {
		return apperror.Implementationf("priority must be between %d and %d, got %d", PriorityMin, PriorityMax, p)
	}
	return nil
}

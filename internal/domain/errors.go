package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned for plans that fail validation before a run starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnresolvedRetirementAge is returned when an atRetirement timepoint is resolved
	// before the retirement age is known.
	ErrUnresolvedRetirementAge = errors.New("retirement age is not yet resolved")
	// ErrNegativeBalance signals an internal invariant violation: an account, debt or
	// asset was about to go below zero.
	ErrNegativeBalance = errors.New("negative balance attempt")
)

// ValidationError describes a single invalid field in a plan
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// ValidationErrors collects every problem found in one validation pass
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (ve ValidationErrors) Unwrap() error { return ErrInvalidInput }

// NegativeBalanceError records which entity tripped the balance invariant
type NegativeBalanceError struct {
	Entity string
	ID     string
	Amount string
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("%s %q would go negative (%s)", e.Entity, e.ID, e.Amount)
}

func (e *NegativeBalanceError) Unwrap() error { return ErrNegativeBalance }

package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fireplan/internal/domain"
)

// TimeContext is the evolving state that symbolic timepoints are resolved against
type TimeContext struct {
	CurrentAge     float64
	BirthMonth     int
	BirthYear      int
	LifeExpectancy float64

	// RetirementAge is nil until the household has retired (or, for a fixed-age
	// strategy, is known up front).
	RetirementAge *float64
}

// Retired reports whether the household is retired at the given age
func (c TimeContext) Retired(age float64) bool {
	return c.RetirementAge != nil && age >= *c.RetirementAge
}

// ResolveTimepoint converts a symbolic timepoint into a concrete age
func ResolveTimepoint(tp domain.Timepoint, ctx TimeContext) (float64, error) {
	switch tp.Type {
	case domain.TimepointNow:
		return ctx.CurrentAge, nil
	case domain.TimepointCustomAge:
		if tp.Age == nil {
			return 0, fmt.Errorf("customAge timepoint has no age: %w", domain.ErrInvalidInput)
		}
		return *tp.Age, nil
	case domain.TimepointCustomDate:
		age := float64(tp.Year-ctx.BirthYear) + float64(tp.Month-ctx.BirthMonth)/12
		if age < 0 {
			return 0, nil
		}
		return age, nil
	case domain.TimepointAtLifeExpectancy:
		return ctx.LifeExpectancy, nil
	case domain.TimepointAtRetirement:
		if ctx.RetirementAge == nil {
			return 0, domain.ErrUnresolvedRetirementAge
		}
		return *ctx.RetirementAge, nil
	default:
		return 0, fmt.Errorf("unknown timepoint type %q: %w", tp.Type, domain.ErrInvalidInput)
	}
}

// TimeframeActive reports whether a start/end window covers the step that begins at age.
// An atRetirement start is active once retired; an atRetirement end is active until then.
// The end bound is exclusive.
func TimeframeActive(tf domain.Timeframe, ctx TimeContext, age float64) (bool, error) {
	if tf.Start.Type == domain.TimepointAtRetirement {
		if !ctx.Retired(age) {
			return false, nil
		}
	} else {
		start, err := ResolveTimepoint(tf.Start, ctx)
		if err != nil {
			return false, fmt.Errorf("resolving start: %w", err)
		}
		if age < start {
			return false, nil
		}
	}

	if tf.End == nil {
		return true, nil
	}
	if tf.End.Type == domain.TimepointAtRetirement {
		return !ctx.Retired(age), nil
	}
	end, err := ResolveTimepoint(*tf.End, ctx)
	if err != nil {
		return false, fmt.Errorf("resolving end: %w", err)
	}
	return age < end, nil
}

// TimepointReached reports whether the step that begins at age has reached tp.
// Used for one-shot events such as asset purchases and sales.
func TimepointReached(tp domain.Timepoint, ctx TimeContext, age float64) (bool, error) {
	if tp.Type == domain.TimepointAtRetirement {
		return ctx.Retired(age), nil
	}
	at, err := ResolveTimepoint(tp, ctx)
	if err != nil {
		return false, err
	}
	return age >= at, nil
}

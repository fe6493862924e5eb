package domain

// TimepointType enumerates the symbolic time references a plan may use
type TimepointType string

const (
	TimepointNow              TimepointType = "now"
	TimepointAtRetirement     TimepointType = "atRetirement"
	TimepointAtLifeExpectancy TimepointType = "atLifeExpectancy"
	TimepointCustomAge        TimepointType = "customAge"
	TimepointCustomDate       TimepointType = "customDate"
)

// Timepoint is a tagged variant. Age is set for customAge; Month and Year for customDate.
type Timepoint struct {
	Type  TimepointType `yaml:"type" json:"type"`
	Age   *float64      `yaml:"age,omitempty" json:"age,omitempty"`
	Month int           `yaml:"month,omitempty" json:"month,omitempty"`
	Year  int           `yaml:"year,omitempty" json:"year,omitempty"`
}

// Now returns the `now` timepoint
func Now() Timepoint { return Timepoint{Type: TimepointNow} }

// AtRetirement returns the `atRetirement` timepoint
func AtRetirement() Timepoint { return Timepoint{Type: TimepointAtRetirement} }

// AtLifeExpectancy returns the `atLifeExpectancy` timepoint
func AtLifeExpectancy() Timepoint { return Timepoint{Type: TimepointAtLifeExpectancy} }

// AtAge returns a customAge timepoint
func AtAge(age float64) Timepoint {
	return Timepoint{Type: TimepointCustomAge, Age: &age}
}

// AtDate returns a customDate timepoint (month is 1-12)
func AtDate(month, year int) Timepoint {
	return Timepoint{Type: TimepointCustomDate, Month: month, Year: year}
}

// Timeframe bounds the activity of an income, expense or debt. A nil End means open-ended.
type Timeframe struct {
	Start Timepoint  `yaml:"start" json:"start"`
	End   *Timepoint `yaml:"end,omitempty" json:"end,omitempty"`
}

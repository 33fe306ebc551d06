// Package streaming implements the host columnar engine's group-operator
// contract: a per-group accumulate/finalize buffer, frequency grammar
// parsing, and gap-fill / fill-forward reconstruction. Grounded on
// original_source/src/ts_fill_gaps_function.cpp's ParseFrequency /
// GenerateDateRange / GenerateIntegerRange and
// original_source/src/include/ts_fill_gaps_native.hpp's ParsedFrequency.
package streaming

import (
	"fmt"
	"strings"

	"tsforecast/tserr"
)

// FrequencyKind classifies a parsed frequency: a fixed wall-clock duration,
// an integer step (for integer-indexed series), or a calendar-aware unit
// whose length in seconds varies (month/quarter/year).
type FrequencyKind int

const (
	FrequencyFixed FrequencyKind = iota
	FrequencyInteger
	FrequencyCalendarMonth
	FrequencyCalendarQuarter
	FrequencyCalendarYear
)

// Frequency is the parsed result of a frequency grammar string or integer
// step value.
type Frequency struct {
	Kind           FrequencyKind
	Seconds        int64 // meaningful when Kind == FrequencyFixed
	IntegerStep    int64 // meaningful when Kind == FrequencyInteger
	CalendarUnits  int64 // meaningful for calendar kinds (e.g. 1 month, 3 months for a quarter)
	OriginalString string
}

// ParseFrequencyString parses the grammar the source's ParseIntervalString
// recognizes: 1d/1day, 30m/30min/30minute(s), 1h/1hour(s), 1w/1week(s),
// 1mo/1month(s), 1q/1quarter(s), 1y/1year(s). Unlike the source (which
// silently defaults unrecognized strings to 1 day), an unrecognized string
// is an error — silent misinterpretation of a user-supplied frequency is
// worse than failing loudly.
func ParseFrequencyString(freqStr string) (Frequency, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(freqStr))
	if trimmed == "" {
		return Frequency{}, fmt.Errorf("%w: frequency string cannot be empty", tserr.ErrInvalidInput)
	}

	switch trimmed {
	case "1D", "1DAY":
		return Frequency{Kind: FrequencyFixed, Seconds: 24 * 3600, OriginalString: freqStr}, nil
	case "30M", "30MIN", "30MINUTE", "30MINUTES":
		return Frequency{Kind: FrequencyFixed, Seconds: 30 * 60, OriginalString: freqStr}, nil
	case "1H", "1HOUR", "1HOURS":
		return Frequency{Kind: FrequencyFixed, Seconds: 3600, OriginalString: freqStr}, nil
	case "1W", "1WEEK", "1WEEKS":
		return Frequency{Kind: FrequencyFixed, Seconds: 7 * 24 * 3600, OriginalString: freqStr}, nil
	case "1MO", "1MONTH", "1MONTHS":
		return Frequency{Kind: FrequencyCalendarMonth, CalendarUnits: 1, OriginalString: freqStr}, nil
	case "1Q", "1QUARTER", "1QUARTERS":
		return Frequency{Kind: FrequencyCalendarQuarter, CalendarUnits: 3, OriginalString: freqStr}, nil
	case "1Y", "1YEAR", "1YEARS":
		return Frequency{Kind: FrequencyCalendarYear, CalendarUnits: 12, OriginalString: freqStr}, nil
	default:
		return Frequency{}, fmt.Errorf("%w: unrecognized frequency %q", tserr.ErrInvalidInput, freqStr)
	}
}

// ParseIntegerFrequency validates a positive integer step, for integer-
// indexed series.
func ParseIntegerFrequency(step int64) (Frequency, error) {
	if step <= 0 {
		return Frequency{}, fmt.Errorf("%w: integer frequency must be positive, got %d", tserr.ErrInvalidInput, step)
	}
	return Frequency{Kind: FrequencyInteger, IntegerStep: step}, nil
}

// ValidateCompatibility enforces the bind-time type/frequency pairing the
// source checks: an integer-indexed series may only use an integer
// frequency, and a calendar/fixed-duration-indexed series may only use a
// string frequency.
func ValidateCompatibility(integerIndexed bool, freq Frequency) error {
	if integerIndexed && freq.Kind != FrequencyInteger {
		return fmt.Errorf("%w: an integer-indexed series requires an integer frequency, not %q", tserr.ErrInvalidInput, freq.OriginalString)
	}
	if !integerIndexed && freq.Kind == FrequencyInteger {
		return fmt.Errorf("%w: a timestamp-indexed series requires a string frequency, not an integer step", tserr.ErrInvalidInput)
	}
	return nil
}

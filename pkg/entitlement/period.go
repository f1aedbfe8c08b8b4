package entitlement

import (
	"errors"
	"fmt"
	"time"
)

// Period identifies the calendar-month bucket a usage counter belongs to.
// The wire format is a fixed 6-character string: 4-digit year followed by
// a zero-padded 2-digit month, e.g. "202507". Periods are always derived
// from UTC so that components running in different local timezones agree
// on month boundaries.
type Period string

// PeriodOf returns the period containing the given instant, computed in UTC.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format("200601"))
}

// CurrentPeriod returns the period containing the current wall-clock time.
// Rollover is implicit: once the UTC month changes, counters for the new
// period start from zero without any explicit reset.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// ParsePeriod validates a caller-supplied period string. Malformed input is
// rejected with ErrInvalidPeriod, never silently coerced.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks the YYYYMM shape and month range.
func (p Period) Validate() error {
	if len(p) != 6 {
		return errors.Join(ErrInvalidPeriod, fmt.Errorf("period %q: want 6 characters, got %d", string(p), len(p)))
	}
	for _, c := range p {
		if c < '0' || c > '9' {
			return errors.Join(ErrInvalidPeriod, fmt.Errorf("period %q: non-digit character", string(p)))
		}
	}
	month := (p[4]-'0')*10 + (p[5] - '0')
	if month < 1 || month > 12 {
		return errors.Join(ErrInvalidPeriod, fmt.Errorf("period %q: month out of range", string(p)))
	}
	return nil
}

// Next returns the period immediately following p. Assumes p is valid.
func (p Period) Next() Period {
	t, _ := time.Parse("200601", string(p))
	return PeriodOf(t.AddDate(0, 1, 0))
}

// Start returns the first instant of the period in UTC. Assumes p is valid.
func (p Period) Start() time.Time {
	t, _ := time.Parse("200601", string(p))
	return t
}

// Before reports whether p is an earlier month than other. Lexicographic
// comparison is correct because the format is fixed-width big-endian.
func (p Period) Before(other Period) bool {
	return p < other
}

func (p Period) String() string {
	return string(p)
}

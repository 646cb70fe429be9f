package media

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"

	"github.com/Taichi-iskw/enki/internal/errors"
)

const (
	secondsPerDay   = 24 * 60 * 60
	secondsPerYear  = 365.2425 * secondsPerDay
	secondsPerMonth = secondsPerYear / 12
)

// ParseDuration converts an ISO-8601 duration ("PT2H5M30S") or a plain seconds value
// ("212", "61.5") into whole seconds. Blank input yields nil.
func ParseDuration(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var seconds float64
	if strings.HasPrefix(s, "P") {
		// "P" and "PT" parse without error but carry no component
		if !strings.ContainsAny(s, "0123456789") {
			return nil, errors.New(errors.CodeInvalidArg, "invalid duration: "+s)
		}
		d, err := duration.Parse(s)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidArg, "invalid duration: "+s)
		}
		seconds = isoSeconds(d)
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New(errors.CodeInvalidArg, "invalid duration: "+s)
		}
		seconds = f
	}

	if seconds < 0 {
		return nil, errors.New(errors.CodeInvalidArg, "duration must not be negative: "+s)
	}
	if seconds > float64(math.MaxInt32) {
		return nil, errors.New(errors.CodeInvalidArg, "duration is too long: "+s)
	}

	n := int(time.Duration(seconds * float64(time.Second)) / time.Second)
	return &n, nil
}

// isoSeconds sums the components in float64; time.Duration overflows past ~292 years
func isoSeconds(d *duration.Duration) float64 {
	total := d.Years*secondsPerYear +
		d.Months*secondsPerMonth +
		d.Weeks*7*secondsPerDay +
		d.Days*secondsPerDay +
		d.Hours*60*60 +
		d.Minutes*60 +
		d.Seconds
	if d.Negative {
		return -total
	}
	return total
}

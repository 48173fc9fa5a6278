package core

import (
	"fmt"
	"time"
)

// DateLayout is the wire format the backend uses for all dates.
const DateLayout = "2006-01-02"

// Schedule computes the (start, next-payment) date pair for a
// subscription. today carries the reference date; callers outside tests
// pass time.Now().
//
//   - Neither date given: both default to today.
//   - Only start given: next-payment is start advanced by whole cycle
//     increments until strictly after today; start is left untouched.
//   - Only next given: start defaults to the same value.
//   - Both given: used verbatim, relative order not validated.
func Schedule(start, next string, cycle Cycle, frequency int, today time.Time) (string, string, error) {
	if frequency < 1 {
		frequency = 1
	}
	today = truncateDay(today)

	switch {
	case start == "" && next == "":
		d := today.Format(DateLayout)
		return d, d, nil
	case start != "" && next == "":
		from, err := parseDay(start)
		if err != nil {
			return "", "", err
		}
		return start, nextAfter(from, cycle, frequency, today).Format(DateLayout), nil
	case start == "" && next != "":
		if _, err := parseDay(next); err != nil {
			return "", "", err
		}
		return next, next, nil
	default:
		if _, err := parseDay(start); err != nil {
			return "", "", err
		}
		if _, err := parseDay(next); err != nil {
			return "", "", err
		}
		return start, next, nil
	}
}

// nextAfter advances from by one cycle increment at a time until the
// result is strictly after today.
func nextAfter(from time.Time, cycle Cycle, frequency int, today time.Time) time.Time {
	d := from
	for !d.After(today) {
		d = advance(d, cycle, frequency)
	}
	return d
}

func advance(d time.Time, cycle Cycle, frequency int) time.Time {
	switch cycle {
	case Daily:
		return d.AddDate(0, 0, frequency)
	case Weekly:
		return d.AddDate(0, 0, 7*frequency)
	case Yearly:
		return d.AddDate(frequency, 0, 0)
	default:
		return d.AddDate(0, frequency, 0)
	}
}

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

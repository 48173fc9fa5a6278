package core

import (
	"regexp"
	"strconv"
	"strings"
)

// periodAlias maps a normalized period word to its cycle ordinal and the
// frequency it implies. Aliases that imply a multiplier (quarterly,
// bi-weekly, ...) carry it here; an explicitly supplied multiplier always
// wins over the implied one.
type periodAlias struct {
	Cycle     Cycle
	Frequency int
}

var periodAliases = map[string]periodAlias{
	"daily": {Daily, 1},
	"day":   {Daily, 1},
	"d":     {Daily, 1},

	"weekly": {Weekly, 1},
	"week":   {Weekly, 1},
	"w":      {Weekly, 1},

	"bi-weekly":   {Weekly, 2},
	"biweekly":    {Weekly, 2},
	"fortnightly": {Weekly, 2},

	"monthly": {Monthly, 1},
	"month":   {Monthly, 1},
	"m":       {Monthly, 1},

	"quarterly": {Monthly, 3},
	"quarter":   {Monthly, 3},
	"q":         {Monthly, 3},

	"semi-annually": {Monthly, 6},
	"semiannually":  {Monthly, 6},
	"half-yearly":   {Monthly, 6},
	"halfyearly":    {Monthly, 6},

	"yearly":   {Yearly, 1},
	"annually": {Yearly, 1},
	"annual":   {Yearly, 1},
	"year":     {Yearly, 1},
	"y":        {Yearly, 1},
}

var quantityPattern = regexp.MustCompile(`^(\d+)\s*(day|week|month|year)s?$`)

var quantityCycles = map[string]Cycle{
	"day":   Daily,
	"week":  Weekly,
	"month": Monthly,
	"year":  Yearly,
}

// ParseBillingPeriod maps a free-form billing period description and an
// optional explicit frequency multiplier onto the backend's (cycle,
// frequency) encoding. It never fails: unrecognized input falls back to
// monthly with the supplied (or unit) multiplier, and the third return
// value reports that the lenient fallback fired so the caller can log a
// diagnostic. A multiplier <= 0 means "not supplied".
func ParseBillingPeriod(period string, multiplier int) (Cycle, int, bool) {
	freq := func(implied int) int {
		if multiplier > 0 {
			return multiplier
		}
		return implied
	}

	s := strings.ToLower(strings.TrimSpace(period))
	if s == "" {
		return Monthly, freq(1), false
	}

	// A bare number is accepted as a cycle ordinal if it is in range.
	if n, err := strconv.Atoi(s); err == nil {
		if c := Cycle(n); c.IsValid() {
			return c, freq(1), false
		}
		return Monthly, freq(1), true
	}

	if alias, ok := periodAliases[s]; ok {
		return alias.Cycle, freq(alias.Frequency), false
	}

	if m := quantityPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return quantityCycles[m[2]], freq(n), false
		}
	}

	return Monthly, freq(1), true
}

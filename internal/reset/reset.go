// Package reset computes benefit reset and expiry dates.
//
// All functions are pure projections over calendar dates: nothing here
// mutates stored usage, and nothing fails. Missing or unparsable renewal
// dates fall back to calendar-year boundaries so dashboards always render.
// Dates are normalized to UTC midnight so day arithmetic is deterministic.
package reset

import (
	"time"

	"creditmax/internal/models"
)

// oneTimeHorizonYears pushes non-recurring benefits far enough out that
// they never surface in expiring-soon views.
const oneTimeHorizonYears = 10

// NextReset returns the next date on which a benefit's usable amount is
// expected to reset, given its frequency, reset basis, and the owning
// card's renewal date (ISO YYYY-MM-DD, may be empty).
func NextReset(freq models.Frequency, basis models.ResetType, renewalDate string, now time.Time) time.Time {
	today := dateOf(now)
	renewal, hasRenewal := parseISODate(renewalDate)

	if basis == models.ResetTypeAnniversary {
		if hasRenewal {
			// The renewal day itself already belongs to the next period,
			// so the occurrence must be strictly ahead of today.
			return nextOccurrenceAfter(renewal.Month(), renewal.Day(), today)
		}
		// No anniversary to anchor on: calendar-year boundary.
		return time.Date(today.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	switch freq {
	case models.FrequencyMonthly:
		return time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)

	case models.FrequencyQuarterly:
		// First day of the month after the current fiscal quarter
		// (Jan-Mar, Apr-Jun, Jul-Sep, Oct-Dec).
		month0 := int(today.Month()) - 1
		nextQuarter0 := month0 + (3 - month0%3)
		return time.Date(today.Year(), time.Month(nextQuarter0+1), 1, 0, 0, 0, 0, time.UTC)

	case models.FrequencySemiAnnual:
		if today.Month() <= time.June {
			return time.Date(today.Year(), time.July, 1, 0, 0, 0, 0, time.UTC)
		}
		return time.Date(today.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	case models.FrequencyAnnual:
		if hasRenewal {
			return nextOccurrence(renewal.Month(), renewal.Day(), today)
		}
		return time.Date(today.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	case models.FrequencyOneTime:
		return today.AddDate(oneTimeHorizonYears, 0, 0)
	}

	// Unknown frequency: treat like an annual calendar reset.
	return time.Date(today.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Expiry returns the last day of the benefit's current period. The expiry
// of period N is always the day before the next reset, so the dashboard's
// days-remaining view and the benefits-list next-reset view cannot drift.
func Expiry(freq models.Frequency, basis models.ResetType, renewalDate string, now time.Time) time.Time {
	return NextReset(freq, basis, renewalDate, now).AddDate(0, 0, -1)
}

// NextQuotaReset returns the next reset date for an AI usage quota, which
// has only a renewal day-of-month and a Monthly or Daily frequency.
func NextQuotaReset(freq models.Frequency, renewalDay int, now time.Time) time.Time {
	today := dateOf(now)

	if freq == models.FrequencyDaily {
		return today.AddDate(0, 0, 1)
	}

	year, month := today.Year(), today.Month()
	if today.Day() > renewalDay {
		month++
	}
	return time.Date(year, month, clampDay(year, month, renewalDay), 0, 0, 0, 0, time.UTC)
}

// DaysRemaining returns the whole days from now until target. Both sides
// are truncated to dates, which equals the ceiling of the real difference.
// The result is negative when the target is already past; callers filter.
func DaysRemaining(now, target time.Time) int {
	return int(dateOf(target).Sub(dateOf(now)).Hours() / 24)
}

// nextOccurrence returns the next occurrence of (month, day) on or after
// today: today itself counts when the dates coincide this year.
func nextOccurrence(month time.Month, day int, today time.Time) time.Time {
	year := today.Year()
	occ := time.Date(year, month, clampDay(year, month, day), 0, 0, 0, 0, time.UTC)
	if today.After(occ) {
		year++
		occ = time.Date(year, month, clampDay(year, month, day), 0, 0, 0, 0, time.UTC)
	}
	return occ
}

// nextOccurrenceAfter returns the next occurrence of (month, day)
// strictly after today.
func nextOccurrenceAfter(month time.Month, day int, today time.Time) time.Time {
	occ := nextOccurrence(month, day, today)
	if occ.Equal(today) {
		year := today.Year() + 1
		occ = time.Date(year, month, clampDay(year, month, day), 0, 0, 0, 0, time.UTC)
	}
	return occ
}

// clampDay clamps a day-of-month to the target month's length, so a
// renewal day of 29-31 lands on the last day of shorter months instead of
// rolling over.
func clampDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// dateOf truncates a time to its calendar date at UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseISODate parses a YYYY-MM-DD string. The bool is false for empty or
// malformed input; callers fall back rather than error.
func parseISODate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return dateOf(t), true
}
